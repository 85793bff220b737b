// Package contacts manages contact requests between users. An accepted contact is what
// allows one user to add another to a chat.
package contacts

import (
	"context"
	"errors"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
	"groupchat-service/internal/repositories"
)

type Service struct {
	contacts repositories.ContactRepository
	users    repositories.UserRepository
}

func NewService(contacts repositories.ContactRepository, users repositories.UserRepository) *Service {
	return &Service{contacts: contacts, users: users}
}

// Request sends a contact request from the caller to username.
func (s *Service) Request(ctx context.Context, callerID int, username string) error {
	target, err := s.target(ctx, callerID, username)
	if err != nil {
		return err
	}

	_, err = s.contacts.FindBetween(ctx, callerID, target.ID)
	switch {
	case err == nil:
		return apperrors.ErrContactExists
	case !errors.Is(err, apperrors.ErrContactNotFound):
		return apperrors.Internal(err)
	}

	if _, err := s.contacts.CreateRequest(ctx, callerID, target.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Accept accepts a pending request that username sent to the caller.
func (s *Service) Accept(ctx context.Context, callerID int, username string) error {
	target, err := s.target(ctx, callerID, username)
	if err != nil {
		return err
	}
	return apperrors.Internal(s.contacts.AcceptRequest(ctx, target.ID, callerID))
}

// Reject drops a pending request that username sent to the caller.
func (s *Service) Reject(ctx context.Context, callerID int, username string) error {
	target, err := s.target(ctx, callerID, username)
	if err != nil {
		return err
	}
	return apperrors.Internal(s.contacts.DeleteRequest(ctx, target.ID, callerID))
}

// Cancel withdraws a pending request the caller sent to username.
func (s *Service) Cancel(ctx context.Context, callerID int, username string) error {
	target, err := s.target(ctx, callerID, username)
	if err != nil {
		return err
	}
	return apperrors.Internal(s.contacts.DeleteRequest(ctx, callerID, target.ID))
}

// Remove deletes the contact with username in whatever state it is.
func (s *Service) Remove(ctx context.Context, callerID int, username string) error {
	target, err := s.target(ctx, callerID, username)
	if err != nil {
		return err
	}
	return apperrors.Internal(s.contacts.DeleteBetween(ctx, callerID, target.ID))
}

func (s *Service) ListAccepted(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return wrapList(s.contacts.ListAccepted(ctx, callerID))
}

func (s *Service) ListReceived(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return wrapList(s.contacts.ListReceived(ctx, callerID))
}

func (s *Service) ListSent(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return wrapList(s.contacts.ListSent(ctx, callerID))
}

func (s *Service) target(ctx context.Context, callerID int, username string) (models.User, error) {
	if username == "" {
		return models.User{}, apperrors.Validation("Username is required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	if user.ID == callerID {
		return models.User{}, apperrors.ErrSelfTarget
	}
	return user, nil
}

func wrapList(views []models.ContactView, err error) ([]models.ContactView, error) {
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return views, nil
}
