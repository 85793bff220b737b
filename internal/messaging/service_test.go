package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/mocks"
	"groupchat-service/internal/models"
)

func newTestService() (*Service, *mocks.MessageRepositoryMock, *mocks.UserRepositoryMock, *mocks.MembershipCheckerMock) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	access := new(mocks.MembershipCheckerMock)
	return NewService(msgs, users, access, nil, nil), msgs, users, access
}

func TestSendSuccess(t *testing.T) {
	svc, msgs, users, access := newTestService()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{ChatID: 3, UserID: 2}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 3, 2, "hi").
		Return(models.Message{ID: 11, ChatID: 3, UserID: 2, Text: "hi", CreatedAt: created}, nil).Once()

	view, err := svc.Send(context.Background(), 2, 3, "hi")
	require.NoError(t, err)
	assert.Equal(t, "bob", view.Username)
	assert.Equal(t, 11, view.ID)
	assert.Equal(t, created, view.CreatedAt)

	msgs.AssertExpectations(t)
	users.AssertExpectations(t)
	access.AssertExpectations(t)
}

func TestSendValidation(t *testing.T) {
	svc, msgs, _, access := newTestService()

	cases := []struct {
		name   string
		chatID int
		text   string
	}{
		{"missing chat", 0, "hi"},
		{"missing text", 3, ""},
		{"too long", 3, strings.Repeat("a", 2001)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), 2, tc.chatID, tc.text)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
	access.AssertNotCalled(t, "CheckMembership", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendAcceptsMaxLength(t *testing.T) {
	svc, msgs, users, access := newTestService()
	text := strings.Repeat("ж", 2000)

	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 3, 2, text).Return(models.Message{ID: 1}, nil).Once()

	_, err := svc.Send(context.Background(), 2, 3, text)
	require.NoError(t, err)
}

func TestSendAcceptsWhitespaceText(t *testing.T) {
	svc, msgs, users, access := newTestService()

	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 3, 2, "   ").Return(models.Message{ID: 1, Text: "   "}, nil).Once()

	view, err := svc.Send(context.Background(), 2, 3, "   ")
	require.NoError(t, err)
	assert.Equal(t, "   ", view.Text)
}

func TestSendRequiresCurrentMembership(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(nil, apperrors.ErrNotMember).Once()

	_, err := svc.Send(context.Background(), 2, 3, "hi")
	require.ErrorIs(t, err, apperrors.ErrNotMember)
	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendStoreFailureIsOpaque(t *testing.T) {
	svc, msgs, users, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 3, 2, "hi").Return(nil, assert.AnError).Once()

	_, err := svc.Send(context.Background(), 2, 3, "hi")
	require.ErrorIs(t, err, assert.AnError)
	code, message := apperrors.Public(err)
	assert.Equal(t, "internal", code)
	assert.NotContains(t, message, assert.AnError.Error())
}

func TestSendPublishesActivity(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	access := new(mocks.MembershipCheckerMock)
	activity := new(mocks.ActivityPublisherMock)
	svc := NewService(msgs, users, access, activity, nil)

	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 3, 2, "hi").Return(models.Message{ID: 7, ChatID: 3}, nil).Once()
	activity.On("PublishActivity", mock.Anything, mock.MatchedBy(func(a models.Activity) bool {
		return a.Kind == models.ActivityMessageSent && a.MessageID == 7 && a.ChatID == 3
	})).Return(nil).Once()

	_, err := svc.Send(context.Background(), 2, 3, "hi")
	require.NoError(t, err)
	activity.AssertExpectations(t)
}

func TestEditByAuthor(t *testing.T) {
	svc, msgs, users, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	msgs.On("GetMessage", mock.Anything, 3, 11).Return(models.Message{ID: 11, ChatID: 3, UserID: 2, Text: "hi"}, nil).Once()
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	msgs.On("UpdateMessage", mock.Anything, 3, 11, 2, "hello").
		Return(models.Message{ID: 11, ChatID: 3, UserID: 2, Text: "hello"}, nil).Once()

	view, err := svc.Edit(context.Background(), 2, 3, 11, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Text)
	assert.Equal(t, "bob", view.Username)
	msgs.AssertExpectations(t)
}

func TestEditByNonAuthorAdminIsForbidden(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 1, false).Return(models.Membership{ChatID: 3, UserID: 1, IsAdmin: true}, nil).Once()
	msgs.On("GetMessage", mock.Anything, 3, 11).Return(models.Message{ID: 11, ChatID: 3, UserID: 2}, nil).Once()

	_, err := svc.Edit(context.Background(), 1, 3, 11, "hijack")
	require.ErrorIs(t, err, apperrors.ErrNotAuthor)
	msgs.AssertNotCalled(t, "UpdateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditMissingMessage(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	msgs.On("GetMessage", mock.Anything, 3, 99).Return(nil, apperrors.ErrMessageNotFound).Once()

	_, err := svc.Edit(context.Background(), 2, 3, 99, "x")
	require.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestEditValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Edit(context.Background(), 2, 3, 0, "x")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Edit(context.Background(), 2, 3, 11, "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeleteByAuthor(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Once()
	msgs.On("GetMessage", mock.Anything, 3, 11).Return(models.Message{ID: 11, ChatID: 3, UserID: 2}, nil).Once()
	msgs.On("DeleteMessage", mock.Anything, 3, 11, 2).Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), 2, 3, 11))
	msgs.AssertExpectations(t)
}

func TestDeleteByNonAuthorIsForbidden(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 1, false).Return(models.Membership{IsAdmin: true}, nil).Once()
	msgs.On("GetMessage", mock.Anything, 3, 11).Return(models.Message{ID: 11, ChatID: 3, UserID: 2}, nil).Once()

	require.ErrorIs(t, svc.Delete(context.Background(), 1, 3, 11), apperrors.ErrNotAuthor)
	msgs.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAfterRemovalIsForbidden(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(nil, apperrors.ErrNotMember).Once()

	require.ErrorIs(t, svc.Delete(context.Background(), 2, 3, 11), apperrors.ErrNotMember)
	msgs.AssertNotCalled(t, "GetMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryClampsLimit(t *testing.T) {
	svc, msgs, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(models.Membership{}, nil).Twice()
	msgs.On("ListMessages", mock.Anything, 3, 50).Return([]models.MessageView{}, nil).Once()
	msgs.On("ListMessages", mock.Anything, 3, 200).Return([]models.MessageView{}, nil).Once()

	_, err := svc.History(context.Background(), 2, 3, 0)
	require.NoError(t, err)
	_, err = svc.History(context.Background(), 2, 3, 5000)
	require.NoError(t, err)
	msgs.AssertExpectations(t)
}

func TestHistoryRequiresMembership(t *testing.T) {
	svc, _, _, access := newTestService()
	access.On("CheckMembership", mock.Anything, 3, 2, false).Return(nil, apperrors.ErrNotMember).Once()

	_, err := svc.History(context.Background(), 2, 3, 10)
	require.ErrorIs(t, err, apperrors.ErrNotMember)
}
