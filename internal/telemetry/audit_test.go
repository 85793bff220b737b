package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupchat-service/internal/mocks"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.groupchat", "groupchat-service", "test", nil)
	emitter.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	var captured AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit.groupchat", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(AuditEnvelope) }).
		Return(nil).Once()

	userID := int64(7)
	emitter.Emit(context.Background(), LevelInfo, "Chat renamed", "req-1", &userID, 3)

	publisher.AssertExpectations(t)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, int64(7), *captured.UserID)
	assert.Equal(t, "audit_log", captured.EventType)
	assert.Equal(t, "2024-03-01T10:00:00Z", captured.OccurredAt)
	assert.Equal(t, 3, captured.Payload.ChatID)
	assert.Equal(t, "req-1", captured.RequestID)
	assert.Empty(t, captured.TraceID)
	assert.Equal(t, 2, captured.SchemaVersion)
}

func TestEmitSurvivesCancelledRequest(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.groupchat", "groupchat-service", "test", nil)
	publisher.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	}), "audit.groupchat", mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	emitter.Emit(ctx, LevelInfo, "Member removed", "req-3", nil, 9)

	publisher.AssertExpectations(t)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.groupchat", "groupchat-service", "test", nil)
	publisher.On("Publish", mock.Anything, "audit.groupchat", mock.Anything).Return(assert.AnError).Once()

	emitter.Emit(context.Background(), LevelError, "boom", "req-2", nil, 0)
	publisher.AssertExpectations(t)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), LevelInfo, "ignored", "", nil, 0)
}
