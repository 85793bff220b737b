package ws

import (
	"context"
	"encoding/json"
	"time"

	"groupchat-service/internal/models"
	"groupchat-service/internal/observability"
)

const lifecycleRoutingKey = "ws_events.chats"

func encodeEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.Envelope{Event: event, Data: raw})
}

// publishLifecycle reports connect, disconnect and error events for a connection.
func publishLifecycle(ctx context.Context, event string, info ConnInfo, rooms int, reason string) {
	observability.IncWSEvent(wsKind, event)

	duration := int64(0)
	if event != "ws_connect" {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, lifecycleRoutingKey, observability.NewEventEnvelope("ws_events", event,
		map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        wsKind,
				"rooms":       rooms,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": duration,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	), observability.BuildHeaders(ctx, info.RequestID))
}
