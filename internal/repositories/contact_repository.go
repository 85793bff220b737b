package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// ContactRepository persists relationships between user pairs.
type ContactRepository interface {
	FindBetween(ctx context.Context, userA int, userB int) (models.Contact, error)
	AreFriends(ctx context.Context, userA int, userB int) (bool, error)
	CreateRequest(ctx context.Context, senderID int, receiverID int) (models.Contact, error)
	AcceptRequest(ctx context.Context, senderID int, receiverID int) error
	DeleteRequest(ctx context.Context, senderID int, receiverID int) error
	DeleteBetween(ctx context.Context, userA int, userB int) error
	ListAccepted(ctx context.Context, userID int) ([]models.ContactView, error)
	ListReceived(ctx context.Context, userID int) ([]models.ContactView, error)
	ListSent(ctx context.Context, userID int) ([]models.ContactView, error)
}

// ContactRepo is a sqlx implementation of ContactRepository.
type ContactRepo struct {
	db *sqlx.DB
}

// NewContactRepo constructs a ContactRepo.
func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

const pairCondition = `((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))`

// FindBetween looks up the contact of an unordered pair.
func (r *ContactRepo) FindBetween(ctx context.Context, userA int, userB int) (models.Contact, error) {
	var contact models.Contact
	err := r.db.GetContext(ctx, &contact, `SELECT id, sender_id, receiver_id, accepted FROM contacts WHERE `+pairCondition, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contact{}, apperrors.ErrContactNotFound
	}
	return contact, err
}

// AreFriends reports whether an accepted contact exists in either direction.
func (r *ContactRepo) AreFriends(ctx context.Context, userA int, userB int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM contacts WHERE `+pairCondition+` AND accepted = TRUE)`, userA, userB)
	return exists, err
}

// CreateRequest stores a pending request from sender to receiver.
func (r *ContactRepo) CreateRequest(ctx context.Context, senderID int, receiverID int) (models.Contact, error) {
	var contact models.Contact
	err := r.db.QueryRowxContext(ctx, `INSERT INTO contacts (sender_id, receiver_id, accepted) VALUES ($1, $2, FALSE)
        RETURNING id, sender_id, receiver_id, accepted`, senderID, receiverID).StructScan(&contact)
	if isUniqueViolation(err) {
		return models.Contact{}, apperrors.ErrContactExists
	}
	return contact, err
}

// AcceptRequest marks a pending request from sender to receiver as accepted.
func (r *ContactRepo) AcceptRequest(ctx context.Context, senderID int, receiverID int) error {
	return r.execExpectingRow(ctx, `UPDATE contacts SET accepted = TRUE WHERE sender_id=$1 AND receiver_id=$2 AND accepted = FALSE`, senderID, receiverID)
}

// DeleteRequest removes a pending request from sender to receiver.
func (r *ContactRepo) DeleteRequest(ctx context.Context, senderID int, receiverID int) error {
	return r.execExpectingRow(ctx, `DELETE FROM contacts WHERE sender_id=$1 AND receiver_id=$2 AND accepted = FALSE`, senderID, receiverID)
}

// DeleteBetween removes the contact of a pair regardless of direction or state.
func (r *ContactRepo) DeleteBetween(ctx context.Context, userA int, userB int) error {
	return r.execExpectingRow(ctx, `DELETE FROM contacts WHERE `+pairCondition, userA, userB)
}

// ListAccepted returns the user's accepted contacts.
func (r *ContactRepo) ListAccepted(ctx context.Context, userID int) ([]models.ContactView, error) {
	return r.list(ctx, `SELECT u.username, u.name FROM contacts c
        INNER JOIN users u ON u.id = CASE WHEN c.sender_id=$1 THEN c.receiver_id ELSE c.sender_id END
        WHERE (c.sender_id=$1 OR c.receiver_id=$1) AND c.accepted = TRUE ORDER BY u.username`, userID)
}

// ListReceived returns pending requests addressed to the user.
func (r *ContactRepo) ListReceived(ctx context.Context, userID int) ([]models.ContactView, error) {
	return r.list(ctx, `SELECT u.username, u.name FROM contacts c
        INNER JOIN users u ON u.id = c.sender_id
        WHERE c.receiver_id=$1 AND c.accepted = FALSE ORDER BY c.id`, userID)
}

// ListSent returns pending requests the user has sent.
func (r *ContactRepo) ListSent(ctx context.Context, userID int) ([]models.ContactView, error) {
	return r.list(ctx, `SELECT u.username, u.name FROM contacts c
        INNER JOIN users u ON u.id = c.receiver_id
        WHERE c.sender_id=$1 AND c.accepted = FALSE ORDER BY c.id`, userID)
}

func (r *ContactRepo) list(ctx context.Context, query string, userID int) ([]models.ContactView, error) {
	views := []models.ContactView{}
	err := r.db.SelectContext(ctx, &views, query, userID)
	return views, err
}

func (r *ContactRepo) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrContactNotFound
	}
	return nil
}
