package repositories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentMessagesQuery(t *testing.T) {
	cases := []struct {
		name      string
		limit     int
		wantLimit bool
		wantArgs  []interface{}
	}{
		{"with limit", 20, true, []interface{}{9, 20}},
		{"zero means all", 0, false, []interface{}{9}},
		{"negative means all", -1, false, []interface{}{9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := recentMessagesQuery(9, tc.limit)

			assert.Equal(t, tc.wantArgs, args)
			assert.Equal(t, tc.wantLimit, strings.Contains(query, "LIMIT $2"))

			// newest rows are picked inside, then flipped so the latest is last
			inner := strings.Index(query, "ORDER BY m.id DESC")
			outer := strings.Index(query, ") recent ORDER BY id ASC")
			require.NotEqual(t, -1, inner)
			require.NotEqual(t, -1, outer)
			assert.Less(t, inner, outer)
			assert.True(t, strings.HasSuffix(query, "ORDER BY id ASC"))
			if tc.wantLimit {
				assert.Less(t, strings.Index(query, "LIMIT $2"), outer)
			}
		})
	}
}

func TestChatDeleteClearsDependentsFirst(t *testing.T) {
	require.Len(t, chatDependents, 2)
	assert.Contains(t, chatDependents[0].query, "FROM messages")
	assert.Contains(t, chatDependents[1].query, "FROM chat_members")
	for _, dep := range chatDependents {
		assert.Contains(t, dep.query, "WHERE chat_id=$1")
	}
	assert.Equal(t, "DELETE FROM chats WHERE id=$1", deleteChatQuery)
}

func TestRemovalLocksMemberRows(t *testing.T) {
	assert.Contains(t, lockMembersQuery, "WHERE chat_id=$1")
	assert.True(t, strings.HasSuffix(lockMembersQuery, "FOR UPDATE"))
}
