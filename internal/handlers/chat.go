package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// ChatService is the authorization-checked chat directory.
type ChatService interface {
	CreateChat(ctx context.Context, callerID int, name string) (models.Chat, error)
	ListChats(ctx context.Context, callerID int, prefix string) ([]models.ChatSummary, error)
	GetChat(ctx context.Context, callerID int, chatID int) (models.Chat, error)
	RenameChat(ctx context.Context, callerID int, chatID int, name string) error
	DeleteChat(ctx context.Context, callerID int, chatID int) error
	ListMembers(ctx context.Context, callerID int, chatID int) ([]models.Member, error)
	AddMember(ctx context.Context, callerID int, chatID int, username string) error
	RemoveMember(ctx context.Context, callerID int, chatID int, username string) (bool, error)
	PromoteAdmin(ctx context.Context, callerID int, chatID int, username string) error
}

// MessageHistory reads a chat's message log for a member.
type MessageHistory interface {
	History(ctx context.Context, userID int, chatID int, limit int) ([]models.MessageView, error)
}

// ChatHandler serves the group chat endpoints.
type ChatHandler struct {
	chats    ChatService
	messages MessageHistory
	audit    Auditor
	logger   *zap.Logger
}

// NewChatHandler builds a ChatHandler. audit may be nil.
func NewChatHandler(chats ChatService, messages MessageHistory, audit Auditor, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{chats: chats, messages: messages, audit: audit, logger: logger}
}

// Register mounts the chat routes on an authenticated group. writes wraps mutating routes.
func (h *ChatHandler) Register(rg gin.IRoutes, writes ...gin.HandlerFunc) {
	wrap := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), handler)
	}
	rg.GET("/chats", h.ListChats)
	rg.POST("/chats", wrap(h.CreateChat)...)
	rg.GET("/chats/:chat_id", h.GetChat)
	rg.PATCH("/chats/:chat_id", wrap(h.RenameChat)...)
	rg.DELETE("/chats/:chat_id", wrap(h.DeleteChat)...)
	rg.GET("/chats/:chat_id/users", h.ListMembers)
	rg.POST("/chats/:chat_id/users", wrap(h.AddMember)...)
	rg.DELETE("/chats/:chat_id/users", wrap(h.RemoveMember)...)
	rg.PATCH("/chats/:chat_id/admins", wrap(h.PromoteAdmin)...)
	rg.GET("/chats/:chat_id/messages", h.ListMessages)
}

type chatNameRequest struct {
	Name string `json:"name"`
}

// ListChats returns the caller's chats, filtered by the startsWith query when present.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context(), c.GetInt("userID"), c.Query("startsWith"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	c.JSON(http.StatusOK, chats)
}

// CreateChat creates a chat administered by the caller.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req chatNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperrors.Validation("Invalid request body"))
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), c.GetInt("userID"), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Chat created", chat.ID)
	c.JSON(http.StatusCreated, gin.H{"id": chat.ID})
}

// GetChat returns the chat name to a member.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	chat, err := h.chats.GetChat(c.Request.Context(), c.GetInt("userID"), chatID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": chat.Name})
}

func (h *ChatHandler) RenameChat(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	var req chatNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperrors.Validation("Invalid request body"))
		return
	}

	if err := h.chats.RenameChat(c.Request.Context(), c.GetInt("userID"), chatID, req.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Chat renamed", chatID)
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	if err := h.chats.DeleteChat(c.Request.Context(), c.GetInt("userID"), chatID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Chat deleted", chatID)
	c.Status(http.StatusNoContent)
}

// ListMembers returns the members of a chat with their admin flag.
func (h *ChatHandler) ListMembers(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	members, err := h.chats.ListMembers(c.Request.Context(), c.GetInt("userID"), chatID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	c.JSON(http.StatusOK, members)
}

// AddMember adds the user named by the username query parameter.
func (h *ChatHandler) AddMember(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	if err := h.chats.AddMember(c.Request.Context(), c.GetInt("userID"), chatID, c.Query("username")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Member added", chatID)
	c.Status(http.StatusCreated)
}

// RemoveMember removes a member or lets the caller leave. The response tells whether the
// chat was deleted because nobody was left in it.
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	deleted, err := h.chats.RemoveMember(c.Request.Context(), c.GetInt("userID"), chatID, c.Query("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Member removed", chatID)
	if deleted {
		emitAudit(c, h.audit, "Chat deleted", chatID)
	}
	c.JSON(http.StatusOK, gin.H{"chatDeleted": deleted})
}

func (h *ChatHandler) PromoteAdmin(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	if err := h.chats.PromoteAdmin(c.Request.Context(), c.GetInt("userID"), chatID, c.Query("username")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	emitAudit(c, h.audit, "Admin promoted", chatID)
	c.Status(http.StatusNoContent)
}

// ListMessages returns the message log oldest first. limit keeps only the most recent entries.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, h.logger, apperrors.Validation("Invalid limit"))
			return
		}
		limit = parsed
	}

	msgs, err := h.messages.History(c.Request.Context(), c.GetInt("userID"), chatID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if msgs == nil {
		msgs = []models.MessageView{}
	}
	c.JSON(http.StatusOK, msgs)
}
