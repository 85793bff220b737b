package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
	"groupchat-service/internal/observability"
	"groupchat-service/internal/telemetry"
)

const eventTimeout = 5 * time.Second

// MessageService stores message mutations after checking the caller's current membership.
type MessageService interface {
	Send(ctx context.Context, userID int, chatID int, text string) (models.MessageView, error)
	Edit(ctx context.Context, userID int, chatID int, messageID int, text string) (models.MessageView, error)
	Delete(ctx context.Context, userID int, chatID int, messageID int) error
}

// RateLimiter bounds how many new messages a user may send.
type RateLimiter interface {
	Allow(ctx context.Context, userID int) (bool, error)
}

// Auditor records successful message mutations.
type Auditor interface {
	Emit(ctx context.Context, level, text, requestID string, userID *int64, chatID int)
}

// Router handles inbound events of one client and fans results out through the hub.
// Failures go back to the originating client only and never close the connection.
type Router struct {
	hub      *Hub
	messages MessageService
	limiter  RateLimiter
	audit    Auditor
	logger   *zap.Logger
}

// NewRouter constructs a Router. limiter and audit may be nil.
func NewRouter(hub *Hub, messages MessageService, limiter RateLimiter, audit Auditor, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{hub: hub, messages: messages, limiter: limiter, audit: audit, logger: logger}
}

// Dispatch decodes one frame from client and applies it.
func (r *Router) Dispatch(ctx context.Context, client *Client, frame []byte) {
	var env models.Envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		r.reply(client, apperrors.Validation("Malformed event"))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	ctx, span := otel.Tracer("groupchat-service/ws").Start(ctx, "ws.event")
	defer span.End()

	// metric labels only carry known event names
	label := "unknown"
	var err error
	switch env.Event {
	case models.EventMessage:
		label = env.Event
		if err = r.allow(ctx, client); err == nil {
			err = r.handle(ctx, client, env)
		}
	case models.EventEditMessage, models.EventDeleteMessage:
		// edits and deletes stay available to a user at the send limit
		label = env.Event
		err = r.handle(ctx, client, env)
	default:
		err = apperrors.Validation("Unknown event " + env.Event)
	}
	span.SetAttributes(
		attribute.String("ws.event", label),
		attribute.Int("user.id", client.info.UserID),
	)
	observability.IncWSEvent(wsKind, label)

	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, "internal")
		}
		code, _ := apperrors.Public(err)
		observability.IncWSOutcome(label, code)
		r.reply(client, err)
		return
	}
	observability.IncWSOutcome(label, "ok")
}

func (r *Router) handle(ctx context.Context, client *Client, env models.Envelope) error {
	userID := client.info.UserID

	switch env.Event {
	case models.EventMessage:
		var req models.SendMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		msg, err := r.messages.Send(ctx, userID, req.ChatID, req.Message)
		if err != nil {
			return err
		}
		r.broadcast(client, msg.ChatID, models.EventChatMessage, models.ChatMessageEvent{
			Username:  msg.Username,
			Message:   msg.Text,
			MessageID: msg.ID,
			CreatedAt: msg.CreatedAt,
			ChatID:    msg.ChatID,
		})
		r.record(ctx, client, "Message sent", msg.ChatID)

	case models.EventEditMessage:
		var req models.EditMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		msg, err := r.messages.Edit(ctx, userID, req.ChatID, req.MessageID, req.Message)
		if err != nil {
			return err
		}
		r.broadcast(client, msg.ChatID, models.EventChatMessageEdited, models.ChatMessageEditedEvent{
			Username:  msg.Username,
			Message:   msg.Text,
			MessageID: msg.ID,
			ChatID:    msg.ChatID,
		})
		r.record(ctx, client, "Message edited", msg.ChatID)

	case models.EventDeleteMessage:
		var req models.DeleteMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		if err := r.messages.Delete(ctx, userID, req.ChatID, req.MessageID); err != nil {
			return err
		}
		r.broadcast(client, req.ChatID, models.EventChatMessageDeleted, models.ChatMessageDeletedEvent{
			MessageID: req.MessageID,
			ChatID:    req.ChatID,
		})
		r.record(ctx, client, "Message deleted", req.ChatID)
	}
	return nil
}

func (r *Router) allow(ctx context.Context, client *Client) error {
	if r.limiter == nil {
		return nil
	}
	ok, err := r.limiter.Allow(ctx, client.info.UserID)
	if err != nil {
		r.logger.Warn("rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		observability.IncRateLimited("ws")
		return apperrors.ErrRateLimited
	}
	return nil
}

func (r *Router) broadcast(sender *Client, chatID int, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		r.logger.Error("encode broadcast", zap.String("event", event), zap.Error(err))
		return
	}
	r.hub.Broadcast(chatID, payload, sender)
}

func (r *Router) record(ctx context.Context, client *Client, text string, chatID int) {
	if r.audit == nil {
		return
	}
	userID := int64(client.info.UserID)
	r.audit.Emit(ctx, telemetry.LevelInfo, text, client.info.RequestID, &userID, chatID)
}

func (r *Router) reply(client *Client, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("ws event failed",
			zap.String("conn_id", client.info.ConnID),
			zap.Int("user_id", client.info.UserID),
			zap.String("trace_id", client.info.TraceID),
			zap.Error(err),
		)
	}
	code, message := apperrors.Public(err)
	payload, encErr := encodeEvent(models.EventError, models.ErrorEvent{Message: message, Code: code})
	if encErr != nil {
		return
	}
	if !client.enqueue(payload) {
		observability.IncWSDropped()
	}
}

func decode(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return apperrors.Validation("Event data is required")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.Validation("Malformed event data")
	}
	return nil
}
