package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/models"
)

func TestPlanRemovalSoleAdminWithOthers(t *testing.T) {
	members := []models.Membership{
		{ChatID: 1, UserID: 1, IsAdmin: true},
		{ChatID: 1, UserID: 2},
	}

	_, err := planRemoval(members, 1)
	require.ErrorIs(t, err, apperrors.ErrSoleAdmin)
}

func TestPlanRemovalSecondAdminAllowsLeaving(t *testing.T) {
	members := []models.Membership{
		{ChatID: 1, UserID: 1, IsAdmin: true},
		{ChatID: 1, UserID: 2, IsAdmin: true},
		{ChatID: 1, UserID: 3},
	}

	last, err := planRemoval(members, 1)
	require.NoError(t, err)
	require.False(t, last)
}

func TestPlanRemovalPlainMember(t *testing.T) {
	members := []models.Membership{
		{ChatID: 1, UserID: 1, IsAdmin: true},
		{ChatID: 1, UserID: 2},
	}

	last, err := planRemoval(members, 2)
	require.NoError(t, err)
	require.False(t, last)
}

func TestPlanRemovalLastMemberDeletesChat(t *testing.T) {
	members := []models.Membership{{ChatID: 1, UserID: 1, IsAdmin: true}}

	last, err := planRemoval(members, 1)
	require.NoError(t, err)
	require.True(t, last)
}

func TestPlanRemovalUnknownMember(t *testing.T) {
	members := []models.Membership{{ChatID: 1, UserID: 1, IsAdmin: true}}

	_, err := planRemoval(members, 9)
	require.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestPlanRemovalKeepsAnAdmin(t *testing.T) {
	// Every accepted removal from a populated chat must leave at least one admin behind.
	members := []models.Membership{
		{ChatID: 1, UserID: 1, IsAdmin: true},
		{ChatID: 1, UserID: 2, IsAdmin: true},
		{ChatID: 1, UserID: 3},
		{ChatID: 1, UserID: 4},
	}

	for len(members) > 1 {
		removed := false
		for i, m := range members {
			last, err := planRemoval(members, m.UserID)
			if err != nil {
				require.ErrorIs(t, err, apperrors.ErrSoleAdmin)
				continue
			}
			require.False(t, last)
			members = append(members[:i:i], members[i+1:]...)
			removed = true
			break
		}
		require.True(t, removed)

		admins := 0
		for _, m := range members {
			if m.IsAdmin {
				admins++
			}
		}
		require.Positive(t, admins)
	}
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
