package events

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillEventPublisher_PublishesWithMetadata(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "notifications", testLogger())
	event := NewGradeReleasedEvent(GradeReleasedEvent{
		SubmissionID: 4,
		QuizID:       2,
		StudentID:    "student-1",
		Score:        8,
		MaxScore:     10,
		Passed:       true,
	})
	require.NoError(t, publisher.PublishNotificationEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventGradeReleased), msg.Metadata.Get("event_type"))
		assert.Equal(t, "classroom-service", msg.Metadata.Get("source"))

		var decoded struct {
			Type EventType          `json:"type"`
			Data GradeReleasedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventGradeReleased, decoded.Type)
		assert.Equal(t, "student-1", decoded.Data.StudentID)
		assert.True(t, decoded.Data.Passed)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestNewSubmissionReceivedEvent_PicksType(t *testing.T) {
	auto := NewSubmissionReceivedEvent(SubmissionReceivedEvent{QuizID: 1})
	manual := NewSubmissionReceivedEvent(SubmissionReceivedEvent{QuizID: 1, GradingRequired: true})

	assert.Equal(t, EventSubmissionReceived, auto.Type)
	assert.Equal(t, EventManualGradingRequired, manual.Type)
	assert.NotEqual(t, auto.ID, manual.ID)
}

func TestLogEventPublisher_LogsWithoutRetaining(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogEventPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := NewCourseJoinedEvent(CourseJoinedEvent{CourseID: 1})
	for i := 0; i < 3; i++ {
		require.NoError(t, p.PublishNotificationEvent(context.Background(), event))
	}
	require.NoError(t, p.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, event.ID, entry["event_id"])
	assert.Equal(t, string(EventCourseJoined), entry["event_type"])
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher(testLogger())
	require.NoError(t, m.PublishNotificationEvent(context.Background(), NewCourseJoinedEvent(CourseJoinedEvent{CourseID: 1})))

	got := m.GetPublishedEvents()
	require.Len(t, got, 1)
	assert.Equal(t, EventCourseJoined, got[0].Type)

	m.ClearEvents()
	assert.Empty(t, m.GetPublishedEvents())
}
