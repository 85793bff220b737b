package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"groupchat-service/internal/models"
)

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) CreateChat(ctx context.Context, callerID int, name string) (models.Chat, error) {
	args := m.Called(ctx, callerID, name)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatServiceMock) ListChats(ctx context.Context, callerID int, prefix string) ([]models.ChatSummary, error) {
	args := m.Called(ctx, callerID, prefix)
	var chats []models.ChatSummary
	if val := args.Get(0); val != nil {
		chats = val.([]models.ChatSummary)
	}
	return chats, args.Error(1)
}

func (m *ChatServiceMock) GetChat(ctx context.Context, callerID int, chatID int) (models.Chat, error) {
	args := m.Called(ctx, callerID, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatServiceMock) RenameChat(ctx context.Context, callerID int, chatID int, name string) error {
	args := m.Called(ctx, callerID, chatID, name)
	return args.Error(0)
}

func (m *ChatServiceMock) DeleteChat(ctx context.Context, callerID int, chatID int) error {
	args := m.Called(ctx, callerID, chatID)
	return args.Error(0)
}

func (m *ChatServiceMock) ListMembers(ctx context.Context, callerID int, chatID int) ([]models.Member, error) {
	args := m.Called(ctx, callerID, chatID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *ChatServiceMock) AddMember(ctx context.Context, callerID int, chatID int, username string) error {
	args := m.Called(ctx, callerID, chatID, username)
	return args.Error(0)
}

func (m *ChatServiceMock) RemoveMember(ctx context.Context, callerID int, chatID int, username string) (bool, error) {
	args := m.Called(ctx, callerID, chatID, username)
	return args.Bool(0), args.Error(1)
}

func (m *ChatServiceMock) PromoteAdmin(ctx context.Context, callerID int, chatID int, username string) error {
	args := m.Called(ctx, callerID, chatID, username)
	return args.Error(0)
}

type MessageHistoryMock struct {
	mock.Mock
}

func (m *MessageHistoryMock) History(ctx context.Context, userID int, chatID int, limit int) ([]models.MessageView, error) {
	args := m.Called(ctx, userID, chatID, limit)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

type ContactServiceMock struct {
	mock.Mock
}

func (m *ContactServiceMock) Request(ctx context.Context, callerID int, username string) error {
	return m.Called(ctx, callerID, username).Error(0)
}

func (m *ContactServiceMock) Accept(ctx context.Context, callerID int, username string) error {
	return m.Called(ctx, callerID, username).Error(0)
}

func (m *ContactServiceMock) Reject(ctx context.Context, callerID int, username string) error {
	return m.Called(ctx, callerID, username).Error(0)
}

func (m *ContactServiceMock) Cancel(ctx context.Context, callerID int, username string) error {
	return m.Called(ctx, callerID, username).Error(0)
}

func (m *ContactServiceMock) Remove(ctx context.Context, callerID int, username string) error {
	return m.Called(ctx, callerID, username).Error(0)
}

func (m *ContactServiceMock) ListAccepted(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return m.views(m.Called(ctx, callerID))
}

func (m *ContactServiceMock) ListReceived(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return m.views(m.Called(ctx, callerID))
}

func (m *ContactServiceMock) ListSent(ctx context.Context, callerID int) ([]models.ContactView, error) {
	return m.views(m.Called(ctx, callerID))
}

func (m *ContactServiceMock) views(args mock.Arguments) ([]models.ContactView, error) {
	var views []models.ContactView
	if val := args.Get(0); val != nil {
		views = val.([]models.ContactView)
	}
	return views, args.Error(1)
}
