package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// EventEnvelope is the broker message for realtime lifecycle events.
type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEventEnvelope(eventType, name string, payload interface{}) EventEnvelope {
	return EventEnvelope{EventType: eventType, EventName: name, OccurredAt: time.Now().UTC(), Payload: payload}
}

// BuildHeaders returns the broker headers for ctx: the request id, the trace id and
// whatever the global propagator injects (traceparent with the default setup).
func BuildHeaders(ctx context.Context, requestID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		headers["trace_id"] = sc.TraceID().String()
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
	return headers
}
