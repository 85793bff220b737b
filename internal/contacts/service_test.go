package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/mocks"
	"groupchat-service/internal/models"
)

func setup() (*Service, *mocks.ContactRepositoryMock, *mocks.UserRepositoryMock) {
	contacts := new(mocks.ContactRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{ID: 1, Username: "alice"}, nil).Maybe()
	users.On("GetByUsername", mock.Anything, "bob").Return(models.User{ID: 2, Username: "bob"}, nil).Maybe()
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrUserNotFound).Maybe()
	return NewService(contacts, users), contacts, users
}

func TestRequestCreatesPendingContact(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("FindBetween", mock.Anything, 1, 2).Return(nil, apperrors.ErrContactNotFound).Once()
	contacts.On("CreateRequest", mock.Anything, 1, 2).Return(models.Contact{ID: 1, SenderID: 1, ReceiverID: 2}, nil).Once()

	require.NoError(t, svc.Request(context.Background(), 1, "bob"))
	contacts.AssertExpectations(t)
}

func TestRequestRejectsExistingPairInEitherDirection(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("FindBetween", mock.Anything, 1, 2).Return(models.Contact{ID: 4, SenderID: 2, ReceiverID: 1}, nil).Once()

	require.ErrorIs(t, svc.Request(context.Background(), 1, "bob"), apperrors.ErrContactExists)
	contacts.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestRaceSurfacesConflict(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("FindBetween", mock.Anything, 1, 2).Return(nil, apperrors.ErrContactNotFound).Once()
	contacts.On("CreateRequest", mock.Anything, 1, 2).Return(nil, apperrors.ErrContactExists).Once()

	require.ErrorIs(t, svc.Request(context.Background(), 1, "bob"), apperrors.ErrContactExists)
}

func TestRequestSelf(t *testing.T) {
	svc, _, _ := setup()
	require.ErrorIs(t, svc.Request(context.Background(), 1, "alice"), apperrors.ErrSelfTarget)
}

func TestRequestUnknownUser(t *testing.T) {
	svc, _, _ := setup()
	require.ErrorIs(t, svc.Request(context.Background(), 1, "ghost"), apperrors.ErrUserNotFound)
}

func TestRequestMissingUsername(t *testing.T) {
	svc, _, _ := setup()
	err := svc.Request(context.Background(), 1, "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAcceptUsesRequestDirection(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("AcceptRequest", mock.Anything, 1, 2).Return(nil).Once()

	// bob accepts alice's request
	require.NoError(t, svc.Accept(context.Background(), 2, "alice"))
	contacts.AssertExpectations(t)
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("AcceptRequest", mock.Anything, 1, 2).Return(apperrors.ErrContactNotFound).Once()

	require.ErrorIs(t, svc.Accept(context.Background(), 2, "alice"), apperrors.ErrContactNotFound)
}

func TestRejectAndCancel(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("DeleteRequest", mock.Anything, 1, 2).Return(nil).Twice()

	require.NoError(t, svc.Reject(context.Background(), 2, "alice"))
	require.NoError(t, svc.Cancel(context.Background(), 1, "bob"))
	contacts.AssertExpectations(t)
}

func TestRemove(t *testing.T) {
	svc, contacts, _ := setup()
	contacts.On("DeleteBetween", mock.Anything, 1, 2).Return(nil).Once()

	require.NoError(t, svc.Remove(context.Background(), 1, "bob"))
	contacts.AssertExpectations(t)
}

func TestListsWrapStoreErrors(t *testing.T) {
	svc, contacts, _ := setup()
	name := "Bob"
	contacts.On("ListAccepted", mock.Anything, 1).Return([]models.ContactView{{Username: "bob", Name: &name}}, nil).Once()
	contacts.On("ListReceived", mock.Anything, 1).Return(nil, assert.AnError).Once()
	contacts.On("ListSent", mock.Anything, 1).Return([]models.ContactView{}, nil).Once()

	accepted, err := svc.ListAccepted(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "bob", accepted[0].Username)

	_, err = svc.ListReceived(context.Background(), 1)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	sent, err := svc.ListSent(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, sent)
}
