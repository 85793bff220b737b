package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"groupchat-service/internal/models"
	"groupchat-service/internal/repositories"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateChat(ctx context.Context, ownerID int, name string) (models.Chat, error) {
	args := m.Called(ctx, ownerID, name)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int, prefix string) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID, prefix)
	var list []models.ChatSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatSummary)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) RenameChat(ctx context.Context, chatID int, name string) error {
	args := m.Called(ctx, chatID, name)
	return args.Error(0)
}

func (m *ChatRepositoryMock) DeleteChat(ctx context.Context, chatID int) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

type MembershipRepositoryMock struct {
	mock.Mock
}

func (m *MembershipRepositoryMock) GetMembership(ctx context.Context, chatID int, userID int) (models.Membership, error) {
	args := m.Called(ctx, chatID, userID)
	var membership models.Membership
	if val := args.Get(0); val != nil {
		membership = val.(models.Membership)
	}
	return membership, args.Error(1)
}

func (m *MembershipRepositoryMock) ListMembers(ctx context.Context, chatID int) ([]models.Member, error) {
	args := m.Called(ctx, chatID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *MembershipRepositoryMock) ListChatIDs(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *MembershipRepositoryMock) AddMember(ctx context.Context, chatID int, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *MembershipRepositoryMock) RemoveMember(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipRepositoryMock) PromoteAdmin(ctx context.Context, chatID int, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID int, userID int, text string) (models.Message, error) {
	args := m.Called(ctx, chatID, userID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, chatID int, messageID int) (models.Message, error) {
	args := m.Called(ctx, chatID, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int, limit int) ([]models.MessageView, error) {
	args := m.Called(ctx, chatID, limit)
	var msgs []models.MessageView
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MessageView)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, chatID int, messageID int, authorID int, text string) (models.Message, error) {
	args := m.Called(ctx, chatID, messageID, authorID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, chatID int, messageID int, authorID int) error {
	args := m.Called(ctx, chatID, messageID, authorID)
	return args.Error(0)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) FindBetween(ctx context.Context, userA int, userB int) (models.Contact, error) {
	args := m.Called(ctx, userA, userB)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) AreFriends(ctx context.Context, userA int, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *ContactRepositoryMock) CreateRequest(ctx context.Context, senderID int, receiverID int) (models.Contact, error) {
	args := m.Called(ctx, senderID, receiverID)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) AcceptRequest(ctx context.Context, senderID int, receiverID int) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

func (m *ContactRepositoryMock) DeleteRequest(ctx context.Context, senderID int, receiverID int) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

func (m *ContactRepositoryMock) DeleteBetween(ctx context.Context, userA int, userB int) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *ContactRepositoryMock) ListAccepted(ctx context.Context, userID int) ([]models.ContactView, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *ContactRepositoryMock) ListReceived(ctx context.Context, userID int) ([]models.ContactView, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *ContactRepositoryMock) ListSent(ctx context.Context, userID int) ([]models.ContactView, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *ContactRepositoryMock) list(args mock.Arguments) ([]models.ContactView, error) {
	var views []models.ContactView
	if val := args.Get(0); val != nil {
		views = val.([]models.ContactView)
	}
	return views, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MembershipRepository = (*MembershipRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ContactRepository = (*ContactRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)

type MembershipCheckerMock struct {
	mock.Mock
}

func (m *MembershipCheckerMock) CheckMembership(ctx context.Context, chatID int, userID int, adminRequired bool) (models.Membership, error) {
	args := m.Called(ctx, chatID, userID, adminRequired)
	var membership models.Membership
	if val := args.Get(0); val != nil {
		membership = val.(models.Membership)
	}
	return membership, args.Error(1)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) Send(ctx context.Context, userID int, chatID int, text string) (models.MessageView, error) {
	args := m.Called(ctx, userID, chatID, text)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessageServiceMock) Edit(ctx context.Context, userID int, chatID int, messageID int, text string) (models.MessageView, error) {
	args := m.Called(ctx, userID, chatID, messageID, text)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessageServiceMock) Delete(ctx context.Context, userID int, chatID int, messageID int) error {
	args := m.Called(ctx, userID, chatID, messageID)
	return args.Error(0)
}
