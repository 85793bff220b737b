package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat-service/internal/models"
)

// ContactService manages contact requests between users.
type ContactService interface {
	Request(ctx context.Context, callerID int, username string) error
	Accept(ctx context.Context, callerID int, username string) error
	Reject(ctx context.Context, callerID int, username string) error
	Cancel(ctx context.Context, callerID int, username string) error
	Remove(ctx context.Context, callerID int, username string) error
	ListAccepted(ctx context.Context, callerID int) ([]models.ContactView, error)
	ListReceived(ctx context.Context, callerID int) ([]models.ContactView, error)
	ListSent(ctx context.Context, callerID int) ([]models.ContactView, error)
}

// ContactHandler serves the /contacts endpoints.
type ContactHandler struct {
	contacts ContactService
	audit    Auditor
	logger   *zap.Logger
}

func NewContactHandler(contacts ContactService, audit Auditor, logger *zap.Logger) *ContactHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactHandler{contacts: contacts, audit: audit, logger: logger}
}

// Register mounts the contact routes. writes wraps mutating routes.
func (h *ContactHandler) Register(rg gin.IRoutes, writes ...gin.HandlerFunc) {
	wrap := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), handler)
	}
	rg.GET("/contacts", h.list(h.contacts.ListAccepted))
	rg.GET("/contacts/received", h.list(h.contacts.ListReceived))
	rg.GET("/contacts/sent", h.list(h.contacts.ListSent))
	rg.POST("/contacts/:username", wrap(h.mutate(h.contacts.Request, "Contact requested", http.StatusCreated))...)
	rg.PATCH("/contacts/received/:username", wrap(h.mutate(h.contacts.Accept, "Contact accepted", http.StatusNoContent))...)
	rg.DELETE("/contacts/received/:username", wrap(h.mutate(h.contacts.Reject, "Contact rejected", http.StatusNoContent))...)
	rg.DELETE("/contacts/sent/:username", wrap(h.mutate(h.contacts.Cancel, "Contact request cancelled", http.StatusNoContent))...)
	rg.DELETE("/contacts/:username", wrap(h.mutate(h.contacts.Remove, "Contact removed", http.StatusNoContent))...)
}

func (h *ContactHandler) mutate(op func(context.Context, int, string) error, auditText string, status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := op(c.Request.Context(), c.GetInt("userID"), c.Param("username")); err != nil {
			respondError(c, h.logger, err)
			return
		}
		emitAudit(c, h.audit, auditText, 0)
		c.Status(status)
	}
}

func (h *ContactHandler) list(op func(context.Context, int) ([]models.ContactView, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := op(c.Request.Context(), c.GetInt("userID"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if views == nil {
			views = []models.ContactView{}
		}
		c.JSON(http.StatusOK, views)
	}
}
