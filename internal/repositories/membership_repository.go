package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

// MembershipRepository abstracts the (chat, user, isAdmin) store.
type MembershipRepository interface {
	GetMembership(ctx context.Context, chatID int, userID int) (models.Membership, error)
	ListMembers(ctx context.Context, chatID int) ([]models.Member, error)
	ListChatIDs(ctx context.Context, userID int) ([]int, error)
	AddMember(ctx context.Context, chatID int, userID int) error
	RemoveMember(ctx context.Context, chatID int, userID int) (chatDeleted bool, err error)
	PromoteAdmin(ctx context.Context, chatID int, userID int) error
}

// MembershipRepo is a sqlx implementation of MembershipRepository.
type MembershipRepo struct {
	db *sqlx.DB
}

// NewMembershipRepo constructs a MembershipRepo.
func NewMembershipRepo(db *sqlx.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// GetMembership returns ErrMemberNotFound when the user is not in the chat.
func (r *MembershipRepo) GetMembership(ctx context.Context, chatID int, userID int) (models.Membership, error) {
	var m models.Membership
	err := r.db.GetContext(ctx, &m, `SELECT chat_id, user_id, is_admin FROM chat_members WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Membership{}, apperrors.ErrMemberNotFound
	}
	return m, err
}

// ListMembers returns members with their profile and admin flag.
func (r *MembershipRepo) ListMembers(ctx context.Context, chatID int) ([]models.Member, error) {
	members := []models.Member{}
	err := r.db.SelectContext(ctx, &members, `SELECT u.id, u.username, u.name, cm.is_admin FROM chat_members cm
        INNER JOIN users u ON u.id = cm.user_id
        WHERE cm.chat_id=$1 ORDER BY cm.is_admin DESC, u.username ASC`, chatID)
	return members, err
}

// ListChatIDs returns ids of every chat the user belongs to.
func (r *MembershipRepo) ListChatIDs(ctx context.Context, userID int) ([]int, error) {
	ids := []int{}
	err := r.db.SelectContext(ctx, &ids, `SELECT chat_id FROM chat_members WHERE user_id=$1 ORDER BY chat_id`, userID)
	return ids, err
}

// AddMember inserts a plain membership.
func (r *MembershipRepo) AddMember(ctx context.Context, chatID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id, is_admin) VALUES ($1, $2, FALSE)`, chatID, userID)
	if isUniqueViolation(err) {
		return apperrors.ErrAlreadyMember
	}
	return err
}

const lockMembersQuery = `SELECT chat_id, user_id, is_admin FROM chat_members WHERE chat_id=$1 FOR UPDATE`

// RemoveMember deletes a membership while holding row locks on the chat's members, so
// concurrent removals cannot leave a populated chat without an admin. Removing the last
// member deletes the chat.
func (r *MembershipRepo) RemoveMember(ctx context.Context, chatID int, userID int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin remove member: %w", err)
	}
	defer tx.Rollback()

	var members []models.Membership
	if err := tx.SelectContext(ctx, &members, lockMembersQuery, chatID); err != nil {
		return false, fmt.Errorf("lock members: %w", err)
	}

	lastMember, err := planRemoval(members, userID)
	if err != nil {
		return false, err
	}
	if lastMember {
		if err := deleteChatTx(ctx, tx, chatID); err != nil {
			return false, err
		}
		return true, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_members WHERE chat_id=$1 AND user_id=$2`, chatID, userID); err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return false, tx.Commit()
}

// PromoteAdmin sets the admin flag on an existing plain member.
func (r *MembershipRepo) PromoteAdmin(ctx context.Context, chatID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_members SET is_admin = TRUE WHERE chat_id=$1 AND user_id=$2 AND is_admin = FALSE`, chatID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	m, err := r.GetMembership(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if m.IsAdmin {
		return apperrors.ErrAlreadyAdmin
	}
	return fmt.Errorf("promote admin: no rows updated for chat %d user %d", chatID, userID)
}

// planRemoval applies the sole-admin rule to a locked snapshot of a chat's members.
// It reports whether userID is the last member, in which case the chat goes with them.
func planRemoval(members []models.Membership, userID int) (bool, error) {
	admins := 0
	var target *models.Membership
	for i := range members {
		if members[i].IsAdmin {
			admins++
		}
		if members[i].UserID == userID {
			target = &members[i]
		}
	}
	if target == nil {
		return false, apperrors.ErrMemberNotFound
	}
	if len(members) == 1 {
		return true, nil
	}
	if target.IsAdmin && admins == 1 {
		return false, apperrors.ErrSoleAdmin
	}
	return false, nil
}
