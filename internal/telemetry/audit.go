// Package telemetry emits audit records for chat mutations to the event broker.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

const (
	auditEventType     = "audit_log"
	auditSchemaVersion = 2
	publishTimeout     = 2 * time.Second
)

// Publisher delivers one JSON event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	TraceID       string       `json:"trace_id,omitempty"`
	UserID        *int64       `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level  string `json:"level"`
	Text   string `json:"text"`
	ChatID int    `json:"chat_id,omitempty"`
}

// AuditEmitter records who changed what in a chat. Publishing is best effort: it outlives
// a cancelled request but is bounded by publishTimeout.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	logger      *zap.Logger
	now         func() time.Time
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, logger *zap.Logger) *AuditEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		logger:      logger,
		now:         time.Now,
	}
}

// Emit publishes an audit record. chatID is omitted from the payload when zero.
func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, userID *int64, chatID int) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: auditSchemaVersion,
		EventType:     auditEventType,
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       AuditPayload{Level: level, Text: text, ChatID: chatID},
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		envelope.TraceID = sc.TraceID().String()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		e.logger.Warn("audit publish failed",
			zap.String("request_id", requestID),
			zap.Int("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}
