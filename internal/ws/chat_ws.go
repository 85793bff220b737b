package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/auth"
	"groupchat-service/internal/observability"
)

// TokenValidator verifies the handshake credential.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

// RoomSource lists the chats a user belongs to at connect time.
type RoomSource interface {
	ChatIDsForUser(ctx context.Context, userID int) ([]int, error)
}

// ChatWebSocketHandler authenticates, subscribes and serves realtime connections.
type ChatWebSocketHandler struct {
	hub       *Hub
	router    *Router
	rooms     RoomSource
	validator TokenValidator
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, router *Router, rooms RoomSource, validator TokenValidator, logger *zap.Logger) *ChatWebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatWebSocketHandler{
		hub:       hub,
		router:    router,
		rooms:     rooms,
		validator: validator,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle serves GET /ws. The credential is checked before the upgrade, so a rejected
// client never joins a room.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("groupchat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.authenticate(c)
	if err != nil {
		code, message := apperrors.Public(apperrors.ErrUnauthenticated)
		c.JSON(http.StatusUnauthorized, gin.H{"error": message, "code": code})
		return
	}

	chatIDs, err := h.rooms.ChatIDsForUser(ctx, userID)
	if err != nil {
		h.logger.Error("load rooms", zap.Int("user_id", userID), zap.Error(err))
		code, message := apperrors.Public(err)
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": message, "code": code})
		return
	}

	info := newConnInfo(c.Request, userID, span.SpanContext().TraceID().String())
	client := newClient(info)
	// Subscribe before the handshake completes so nothing sent right after connect is missed.
	h.hub.Register(client, chatIDs)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.Unregister(client)
		return
	}
	client.conn = conn

	observability.IncWSActive(wsKind)
	publishLifecycle(ctx, "ws_connect", info, len(chatIDs), "")
	h.logger.Debug("ws connected", zap.String("conn_id", info.ConnID), zap.Int("user_id", userID), zap.Ints("rooms", chatIDs))

	// The request context ends when this handler returns; connection work gets its own.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go client.writePump()
	go h.readPump(connCtx, cancel, client)
}

func (h *ChatWebSocketHandler) readPump(ctx context.Context, cancel context.CancelFunc, client *Client) {
	var closeReason string
	defer func() {
		rooms := len(h.hub.Rooms(client))
		h.hub.Unregister(client)
		observability.DecWSActive(wsKind)
		publishLifecycle(ctx, "ws_disconnect", client.info, rooms, closeReason)
		h.logger.Debug("ws disconnected", zap.String("conn_id", client.info.ConnID), zap.String("reason", closeReason))
		cancel()
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishLifecycle(ctx, "ws_error", client.info, len(h.hub.Rooms(client)), closeReason)
			}
			return
		}
		h.router.Dispatch(ctx, client, frame)
	}
}

func (h *ChatWebSocketHandler) authenticate(c *gin.Context) (int, error) {
	token, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		return 0, apperrors.ErrUnauthenticated
	}
	return h.validator.ValidateToken(c.Request.Context(), token)
}
