// Package messaging appends, edits and deletes chat messages after a live membership check.
package messaging

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
	"groupchat-service/internal/repositories"
)

const (
	maxTextLen     = 2000
	defaultHistory = 50
	maxHistory     = 200
)

// MembershipChecker is the authorization gate consulted before every operation.
type MembershipChecker interface {
	CheckMembership(ctx context.Context, chatID int, userID int, adminRequired bool) (models.Membership, error)
}

// ActivityPublisher receives successful mutations.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, activity models.Activity) error
}

type Service struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	access   MembershipChecker
	activity ActivityPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs a Service. activity may be nil.
func NewService(
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	access MembershipChecker,
	activity ActivityPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		messages: messages,
		users:    users,
		access:   access,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Send appends text to the chat and returns it with the author's username.
func (s *Service) Send(ctx context.Context, userID int, chatID int, text string) (models.MessageView, error) {
	if chatID <= 0 {
		return models.MessageView{}, apperrors.Validation("Chat id is required")
	}
	if err := validateText(text); err != nil {
		return models.MessageView{}, err
	}
	if _, err := s.access.CheckMembership(ctx, chatID, userID, false); err != nil {
		return models.MessageView{}, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.MessageView{}, apperrors.Internal(err)
	}
	msg, err := s.messages.CreateMessage(ctx, chatID, userID, text)
	if err != nil {
		return models.MessageView{}, apperrors.Internal(err)
	}

	s.publish(ctx, models.Activity{Kind: models.ActivityMessageSent, ChatID: chatID, ActorID: userID, MessageID: msg.ID})
	return models.MessageView{Message: msg, Username: author.Username}, nil
}

// Edit replaces the text of the caller's own message.
func (s *Service) Edit(ctx context.Context, userID int, chatID int, messageID int, text string) (models.MessageView, error) {
	if chatID <= 0 || messageID <= 0 {
		return models.MessageView{}, apperrors.Validation("Chat id and message id are required")
	}
	if err := validateText(text); err != nil {
		return models.MessageView{}, err
	}
	if err := s.authorize(ctx, userID, chatID, messageID); err != nil {
		return models.MessageView{}, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.MessageView{}, apperrors.Internal(err)
	}
	msg, err := s.messages.UpdateMessage(ctx, chatID, messageID, userID, text)
	if err != nil {
		return models.MessageView{}, apperrors.Internal(err)
	}

	s.publish(ctx, models.Activity{Kind: models.ActivityMessageEdited, ChatID: chatID, ActorID: userID, MessageID: messageID})
	return models.MessageView{Message: msg, Username: author.Username}, nil
}

// Delete removes the caller's own message. Admins get no override.
func (s *Service) Delete(ctx context.Context, userID int, chatID int, messageID int) error {
	if chatID <= 0 || messageID <= 0 {
		return apperrors.Validation("Chat id and message id are required")
	}
	if err := s.authorize(ctx, userID, chatID, messageID); err != nil {
		return err
	}
	if err := s.messages.DeleteMessage(ctx, chatID, messageID, userID); err != nil {
		return apperrors.Internal(err)
	}

	s.publish(ctx, models.Activity{Kind: models.ActivityMessageDeleted, ChatID: chatID, ActorID: userID, MessageID: messageID})
	return nil
}

// History returns up to limit recent messages, oldest first.
func (s *Service) History(ctx context.Context, userID int, chatID int, limit int) ([]models.MessageView, error) {
	if _, err := s.access.CheckMembership(ctx, chatID, userID, false); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	msgs, err := s.messages.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return msgs, nil
}

func (s *Service) authorize(ctx context.Context, userID int, chatID int, messageID int) error {
	if _, err := s.access.CheckMembership(ctx, chatID, userID, false); err != nil {
		return err
	}
	msg, err := s.messages.GetMessage(ctx, chatID, messageID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if msg.UserID != userID {
		return apperrors.ErrNotAuthor
	}
	return nil
}

func (s *Service) publish(ctx context.Context, activity models.Activity) {
	if s.activity == nil {
		return
	}
	activity.OccurredAt = s.now().UTC()
	if err := s.activity.PublishActivity(ctx, activity); err != nil {
		s.logger.Warn("activity publish failed", zap.String("kind", activity.Kind), zap.Int("chat_id", activity.ChatID), zap.Error(err))
	}
}

func validateText(text string) error {
	if text == "" {
		return apperrors.Validation("Message is required")
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return apperrors.Validation("Message must be at most 2000 characters")
	}
	return nil
}
