package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, userID int, text string) (models.Message, error)
	GetMessage(ctx context.Context, chatID int, messageID int) (models.Message, error)
	ListMessages(ctx context.Context, chatID int, limit int) ([]models.MessageView, error)
	UpdateMessage(ctx context.Context, chatID int, messageID int, authorID int, text string) (models.Message, error)
	DeleteMessage(ctx context.Context, chatID int, messageID int, authorID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_id, user_id, text, created_at, updated_at`

// CreateMessage appends a message to a chat.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, userID int, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, user_id, text) VALUES ($1, $2, $3) RETURNING `+messageColumns, chatID, userID, text).
		StructScan(&msg)
	return msg, err
}

// GetMessage retrieves a message of a chat.
func (r *MessageRepo) GetMessage(ctx context.Context, chatID int, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1 AND chat_id=$2`, messageID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// ListMessages returns the most recent messages of a chat, oldest first. limit <= 0 means all.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int, limit int) ([]models.MessageView, error) {
	msgs := []models.MessageView{}
	query, args := recentMessagesQuery(chatID, limit)
	err := r.db.SelectContext(ctx, &msgs, query, args...)
	return msgs, err
}

// recentMessagesQuery picks the newest limit rows by id and returns them in ascending order,
// so the latest message is always last.
func recentMessagesQuery(chatID int, limit int) (string, []interface{}) {
	query := `SELECT * FROM (
            SELECT m.id, m.chat_id, m.user_id, m.text, m.created_at, m.updated_at, u.username
            FROM messages m INNER JOIN users u ON u.id = m.user_id
            WHERE m.chat_id=$1 ORDER BY m.id DESC`
	args := []interface{}{chatID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return query + `) recent ORDER BY id ASC`, args
}

// UpdateMessage changes the text of a message owned by authorID.
func (r *MessageRepo) UpdateMessage(ctx context.Context, chatID int, messageID int, authorID int, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `UPDATE messages SET text=$4, updated_at=NOW()
        WHERE id=$1 AND chat_id=$2 AND user_id=$3 RETURNING `+messageColumns, messageID, chatID, authorID, text).
		StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage removes a message owned by authorID.
func (r *MessageRepo) DeleteMessage(ctx context.Context, chatID int, messageID int, authorID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1 AND chat_id=$2 AND user_id=$3`, messageID, chatID, authorID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}
