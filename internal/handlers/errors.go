package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
)

// respondError writes err as {"error", "code"}. Internal failures are logged with request
// context and reach the client only as an opaque message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal && logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("request_id", requestIDFromContext(c)),
			zap.Int("user_id", c.GetInt("userID")),
			zap.String("chat_id", c.Param("chat_id")),
			zap.Error(err),
		)
	}
	code, message := apperrors.Public(err)
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": message, "code": code})
}

func parseChatID(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil || chatID <= 0 {
		respondError(c, nil, apperrors.Validation("Invalid chat id"))
		return 0, false
	}
	return chatID, true
}
