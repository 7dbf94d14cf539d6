package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeText trims, collapses internal whitespace and lower-cases.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// stripPunctuation drops punctuation before normalizing; used by short answers.
func stripPunctuation(s string) string {
	return NormalizeText(strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, s))
}

// EncodingKind tags how a correct-answer string was written.
type EncodingKind int

const (
	EncodingEmpty EncodingKind = iota
	// EncodingSingle is one accepted value for blank 0.
	EncodingSingle
	// EncodingVariantSet is "a|b": the same accepted set for every blank.
	EncodingVariantSet
	// EncodingBlankGroupList is "a|b;c": one group per blank.
	EncodingBlankGroupList
	// EncodingPerBlankVariantSets is a JSON array of scalars or arrays.
	EncodingPerBlankVariantSets
)

func (k EncodingKind) String() string {
	switch k {
	case EncodingSingle:
		return "single"
	case EncodingVariantSet:
		return "variant_set"
	case EncodingBlankGroupList:
		return "blank_group_list"
	case EncodingPerBlankVariantSets:
		return "per_blank_variant_sets"
	}
	return "empty"
}

// Expectation is a parsed correct-answer encoding: ordered groups of accepted
// variants, already normalized.
type Expectation struct {
	Kind   EncodingKind
	Groups [][]string
}

// ParseEncoding resolves a raw encoding into variant groups, padded with empty
// groups up to blanks. An empty group can never be satisfied.
func ParseEncoding(raw *string, blanks int) Expectation {
	if blanks < 1 {
		blanks = 1
	}
	exp := parseEncoding(raw)
	if exp.Kind == EncodingVariantSet {
		for len(exp.Groups) < blanks {
			exp.Groups = append(exp.Groups, exp.Groups[0])
		}
		return exp
	}
	for len(exp.Groups) < blanks {
		exp.Groups = append(exp.Groups, nil)
	}
	return exp
}

func parseEncoding(raw *string) Expectation {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Expectation{Kind: EncodingEmpty}
	}
	s := *raw

	var arr []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &arr); err == nil {
		groups := make([][]string, len(arr))
		for i, el := range arr {
			if inner, ok := el.([]any); ok {
				for _, v := range inner {
					if str, ok := scalarString(v); ok {
						groups[i] = appendVariant(groups[i], str)
					}
				}
				continue
			}
			if str, ok := scalarString(el); ok {
				groups[i] = appendVariant(groups[i], str)
			}
		}
		return Expectation{Kind: EncodingPerBlankVariantSets, Groups: groups}
	}

	if strings.Contains(s, ";") {
		parts := strings.Split(s, ";")
		groups := make([][]string, len(parts))
		for i, part := range parts {
			for _, v := range strings.Split(part, "|") {
				groups[i] = appendVariant(groups[i], v)
			}
		}
		return Expectation{Kind: EncodingBlankGroupList, Groups: groups}
	}

	if strings.Contains(s, "|") {
		var variants []string
		for _, v := range strings.Split(s, "|") {
			variants = appendVariant(variants, v)
		}
		return Expectation{Kind: EncodingVariantSet, Groups: [][]string{variants}}
	}

	return Expectation{Kind: EncodingSingle, Groups: [][]string{appendVariant(nil, s)}}
}

func appendVariant(group []string, v string) []string {
	n := NormalizeText(v)
	if n == "" {
		return group
	}
	for _, existing := range group {
		if existing == n {
			return group
		}
	}
	return append(group, n)
}

// Group returns the accepted variants for blank i, or nil if there are none.
func (e Expectation) Group(i int) []string {
	if i < 0 {
		return nil
	}
	if e.Kind == EncodingVariantSet && len(e.Groups) > 0 {
		return e.Groups[0]
	}
	if i < len(e.Groups) {
		return e.Groups[i]
	}
	return nil
}

// BlankCount is the number of blanks the encoding itself implies. A uniform
// variant set implies a single blank.
func (e Expectation) BlankCount() int {
	switch e.Kind {
	case EncodingBlankGroupList, EncodingPerBlankVariantSets:
		if len(e.Groups) > 0 {
			return len(e.Groups)
		}
	}
	return 1
}

// Empty reports whether no blank has any accepted variant.
func (e Expectation) Empty() bool {
	for _, g := range e.Groups {
		if len(g) > 0 {
			return false
		}
	}
	return true
}

// matchVariant compares a submitted value against one blank's variants. When
// every variant is numeric the comparison is numeric.
func matchVariant(group []string, submitted string) bool {
	sub := NormalizeText(submitted)
	if sub == "" || len(group) == 0 {
		return false
	}
	if allNumeric(group) {
		got, ok := parseNumber(sub)
		if !ok {
			return false
		}
		for _, v := range group {
			want, _ := parseNumber(v)
			if math.Abs(got-want) < 1e-9 {
				return true
			}
		}
		return false
	}
	for _, v := range group {
		if v == sub {
			return true
		}
	}
	return false
}

func allNumeric(group []string) bool {
	for _, v := range group {
		if _, ok := parseNumber(v); !ok {
			return false
		}
	}
	return len(group) > 0
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
