package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherSendsEnvelope(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), "grading")
	require.NoError(t, err)

	publisher := newPublisher(pubSub, "grading", discardLogger())
	band := 6.5
	event := NewSessionGradedEvent(SessionGradedEvent{SessionID: 3, ExamID: 1, StudentID: "s-1", WritingBand: &band}, false)
	require.NoError(t, publisher.Publish(context.Background(), event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventSessionGraded), msg.Metadata.Get("event_type"))
		assert.Equal(t, eventSource, msg.Metadata.Get("source"))

		var decoded struct {
			Type EventType          `json:"type"`
			Data SessionGradedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventSessionGraded, decoded.Type)
		assert.Equal(t, uint(3), decoded.Data.SessionID)
		assert.Equal(t, 6.5, *decoded.Data.WritingBand)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNewSessionGradedEventRegraded(t *testing.T) {
	e := NewSessionGradedEvent(SessionGradedEvent{SessionID: 1}, true)
	assert.Equal(t, EventSessionRegraded, e.Type)
	assert.NotEmpty(t, e.ID)
	assert.NotEqual(t, e.ID, NewSessionGradedEvent(SessionGradedEvent{}, true).ID)
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, NewManualGradingRequiredEvent(1, 2, "s", []uint{9})))
	require.NoError(t, mock.Publish(ctx, NewSessionGradedEvent(SessionGradedEvent{SessionID: 1}, false)))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	manual := mock.EventsOfType(EventManualGradingRequired)
	require.Len(t, manual, 1)
	assert.Equal(t, []uint{9}, manual[0].Data.(ManualGradingRequiredEvent).QuestionIDs)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
