package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// ChatRepository abstracts chat directory persistence.
type ChatRepository interface {
	CreateChat(ctx context.Context, ownerID int, name string) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	ListChatsForUser(ctx context.Context, userID int, prefix string) ([]models.ChatSummary, error)
	RenameChat(ctx context.Context, chatID int, name string) error
	DeleteChat(ctx context.Context, chatID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat creates a chat and its first admin membership atomically.
func (r *ChatRepo) CreateChat(ctx context.Context, ownerID int, name string) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, fmt.Errorf("begin create chat: %w", err)
	}
	defer tx.Rollback()

	var chat models.Chat
	if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&chat.ID, &chat.Name, &chat.CreatedAt); err != nil {
		return models.Chat{}, fmt.Errorf("insert chat: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id, is_admin) VALUES ($1, $2, TRUE)`, chat.ID, ownerID); err != nil {
		return models.Chat{}, fmt.Errorf("insert first admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, fmt.Errorf("commit create chat: %w", err)
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, name, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, apperrors.ErrChatNotFound
	}
	return chat, err
}

// ListChatsForUser returns the chats the user belongs to, optionally filtered by name prefix.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int, prefix string) ([]models.ChatSummary, error) {
	chats := []models.ChatSummary{}
	query := `SELECT c.id, c.name FROM chats c
        INNER JOIN chat_members cm ON cm.chat_id = c.id
        WHERE cm.user_id=$1`
	args := []interface{}{userID}
	if prefix != "" {
		query += ` AND c.name LIKE $2 ESCAPE '\'`
		args = append(args, escapeLike(prefix)+"%")
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	err := r.db.SelectContext(ctx, &chats, query, args...)
	return chats, err
}

// RenameChat updates the chat name.
func (r *ChatRepo) RenameChat(ctx context.Context, chatID int, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chats SET name=$2 WHERE id=$1`, chatID, name)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

// DeleteChat removes the chat with all of its memberships and messages in one transaction.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete chat: %w", err)
	}
	defer tx.Rollback()

	if err := deleteChatTx(ctx, tx, chatID); err != nil {
		return err
	}
	return tx.Commit()
}

// chatDependents are cleared, in order, before the chat row itself.
var chatDependents = []struct {
	what  string
	query string
}{
	{"messages", `DELETE FROM messages WHERE chat_id=$1`},
	{"members", `DELETE FROM chat_members WHERE chat_id=$1`},
}

const deleteChatQuery = `DELETE FROM chats WHERE id=$1`

func deleteChatTx(ctx context.Context, tx *sqlx.Tx, chatID int) error {
	for _, dep := range chatDependents {
		if _, err := tx.ExecContext(ctx, dep.query, chatID); err != nil {
			return fmt.Errorf("delete chat %s: %w", dep.what, err)
		}
	}
	res, err := tx.ExecContext(ctx, deleteChatQuery, chatID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
