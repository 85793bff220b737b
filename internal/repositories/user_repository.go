package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// UserRepository is the read-only view of the account subsystem's users.
type UserRepository interface {
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	return r.get(ctx, `SELECT id, username, name, role FROM users WHERE id=$1`, userID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return r.get(ctx, `SELECT id, username, name, role FROM users WHERE username=$1`, username)
}

func (r *UserRepo) get(ctx context.Context, query string, arg interface{}) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}
