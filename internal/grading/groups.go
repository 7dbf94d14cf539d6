package grading

// ResolveGroups copies each anchor's verdict onto its group members, replacing
// any individual result. Anchors without a result are skipped. It returns the
// IDs of the members that were written.
func ResolveGroups(questions []*CompiledQuestion, results map[uint]*GradedAnswer) []uint {
	members := make(map[string][]*CompiledQuestion)
	for _, q := range questions {
		if q.GroupMemberOf != "" {
			members[q.GroupMemberOf] = append(members[q.GroupMemberOf], q)
		}
	}

	var written []uint
	for _, anchor := range questions {
		if !anchor.IsAnchor {
			continue
		}
		group := members[anchor.key()]
		res, ok := results[anchor.ID]
		if len(group) == 0 || !ok {
			continue
		}
		correct := res.IsCorrect != nil && *res.IsCorrect
		for _, m := range group {
			if m.ID == anchor.ID {
				continue
			}
			propagated := &GradedAnswer{
				QuestionID: m.ID,
				Type:       m.Type,
				IsCorrect:  &correct,
				MaxPoints:  m.Points,
				Propagated: true,
			}
			if correct {
				propagated.PointsEarned = m.Points
			}
			results[m.ID] = propagated
			written = append(written, m.ID)
		}
	}
	return written
}
