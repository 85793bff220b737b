// Package chats decides who may change a chat and applies structural changes.
// Every decision re-reads the membership store; nothing is cached between calls.
package chats

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
	"groupchat-service/internal/repositories"
)

const (
	minNameLen = 3
	maxNameLen = 32
)

// ActivityPublisher receives successful mutations. Failures are logged, never returned.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, activity models.Activity) error
}

// Service is the membership authorization engine plus the chat directory operations it guards.
type Service struct {
	chats    repositories.ChatRepository
	members  repositories.MembershipRepository
	users    repositories.UserRepository
	contacts repositories.ContactRepository
	activity ActivityPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs a Service. activity may be nil.
func NewService(
	chats repositories.ChatRepository,
	members repositories.MembershipRepository,
	users repositories.UserRepository,
	contacts repositories.ContactRepository,
	activity ActivityPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chats:    chats,
		members:  members,
		users:    users,
		contacts: contacts,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckMembership returns the caller's membership or fails with ErrNotMember / ErrNotAdmin.
func (s *Service) CheckMembership(ctx context.Context, chatID int, userID int, adminRequired bool) (models.Membership, error) {
	m, err := s.members.GetMembership(ctx, chatID, userID)
	if errors.Is(err, apperrors.ErrMemberNotFound) {
		return models.Membership{}, apperrors.ErrNotMember
	}
	if err != nil {
		return models.Membership{}, apperrors.Internal(err)
	}
	if adminRequired && !m.IsAdmin {
		return models.Membership{}, apperrors.ErrNotAdmin
	}
	return m, nil
}

// ChatIDsForUser lists the chats a user belongs to right now.
func (s *Service) ChatIDsForUser(ctx context.Context, userID int) ([]int, error) {
	ids, err := s.members.ListChatIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return ids, nil
}

// CreateChat creates a chat whose only member is the caller, as admin.
func (s *Service) CreateChat(ctx context.Context, callerID int, name string) (models.Chat, error) {
	if err := validateName(name); err != nil {
		return models.Chat{}, err
	}
	chat, err := s.chats.CreateChat(ctx, callerID, name)
	if err != nil {
		return models.Chat{}, apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityChatCreated, ChatID: chat.ID, ActorID: callerID})
	return chat, nil
}

// ListChats returns the caller's chats, optionally filtered by name prefix.
func (s *Service) ListChats(ctx context.Context, callerID int, prefix string) ([]models.ChatSummary, error) {
	chats, err := s.chats.ListChatsForUser(ctx, callerID, prefix)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return chats, nil
}

// GetChat returns a chat the caller belongs to.
func (s *Service) GetChat(ctx context.Context, callerID int, chatID int) (models.Chat, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, false); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// RenameChat changes the chat name. Admin only.
func (s *Service) RenameChat(ctx context.Context, callerID int, chatID int, name string) error {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, true); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.chats.RenameChat(ctx, chatID, name); err != nil {
		return apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityChatRenamed, ChatID: chatID, ActorID: callerID})
	return nil
}

// DeleteChat removes the chat with its memberships and messages. Admin only.
func (s *Service) DeleteChat(ctx context.Context, callerID int, chatID int) error {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, true); err != nil {
		return err
	}
	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		return apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityChatDeleted, ChatID: chatID, ActorID: callerID})
	return nil
}

// ListMembers returns the chat's members. Any member may read it.
func (s *Service) ListMembers(ctx context.Context, callerID int, chatID int) ([]models.Member, error) {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return nil, err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, false); err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx, chatID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return members, nil
}

// AddMember adds username to the chat. The caller must be an admin and an accepted
// contact of the target.
func (s *Service) AddMember(ctx context.Context, callerID int, chatID int, username string) error {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return err
	}
	target, err := s.loadUser(ctx, username)
	if err != nil {
		return err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, true); err != nil {
		return err
	}
	if target.ID == callerID {
		return apperrors.ErrSelfTarget
	}

	_, err = s.members.GetMembership(ctx, chatID, target.ID)
	switch {
	case err == nil:
		return apperrors.ErrAlreadyMember
	case !errors.Is(err, apperrors.ErrMemberNotFound):
		return apperrors.Internal(err)
	}

	friends, err := s.contacts.AreFriends(ctx, callerID, target.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !friends {
		return apperrors.ErrNotFriends
	}

	if err := s.members.AddMember(ctx, chatID, target.ID); err != nil {
		return apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityMemberAdded, ChatID: chatID, ActorID: callerID, TargetID: target.ID})
	return nil
}

// RemoveMember removes username from the chat. Removing someone else requires admin;
// anyone may leave unless they are the only admin while others remain. It reports
// whether the chat was deleted because its last member left.
func (s *Service) RemoveMember(ctx context.Context, callerID int, chatID int, username string) (bool, error) {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return false, err
	}
	target, err := s.loadUser(ctx, username)
	if err != nil {
		return false, err
	}
	if target.ID != callerID {
		if _, err := s.CheckMembership(ctx, chatID, callerID, true); err != nil {
			return false, err
		}
	}

	chatDeleted, err := s.members.RemoveMember(ctx, chatID, target.ID)
	if errors.Is(err, apperrors.ErrMemberNotFound) && target.ID == callerID {
		return false, apperrors.ErrNotMember
	}
	if err != nil {
		return false, apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityMemberRemoved, ChatID: chatID, ActorID: callerID, TargetID: target.ID})
	if chatDeleted {
		s.publish(ctx, models.Activity{Kind: models.ActivityChatDeleted, ChatID: chatID, ActorID: callerID})
	}
	return chatDeleted, nil
}

// PromoteAdmin makes a plain member an admin. Admin only; self-promotion is rejected.
func (s *Service) PromoteAdmin(ctx context.Context, callerID int, chatID int, username string) error {
	if _, err := s.loadChat(ctx, chatID); err != nil {
		return err
	}
	target, err := s.loadUser(ctx, username)
	if err != nil {
		return err
	}
	if _, err := s.CheckMembership(ctx, chatID, callerID, true); err != nil {
		return err
	}
	if target.ID == callerID {
		return apperrors.ErrSelfTarget
	}

	m, err := s.members.GetMembership(ctx, chatID, target.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if m.IsAdmin {
		return apperrors.ErrAlreadyAdmin
	}

	if err := s.members.PromoteAdmin(ctx, chatID, target.ID); err != nil {
		return apperrors.Internal(err)
	}
	s.publish(ctx, models.Activity{Kind: models.ActivityAdminPromoted, ChatID: chatID, ActorID: callerID, TargetID: target.ID})
	return nil
}

func (s *Service) loadChat(ctx context.Context, chatID int) (models.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return models.Chat{}, apperrors.Internal(err)
	}
	return chat, nil
}

func (s *Service) loadUser(ctx context.Context, username string) (models.User, error) {
	if username == "" {
		return models.User{}, apperrors.Validation("Username is required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	return user, nil
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

func validateName(name string) error {
	if name == "" {
		return apperrors.Validation("Name is required")
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return apperrors.Validation("Name length must be between 3 and 32 characters")
	}
	return nil
}
