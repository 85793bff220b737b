package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"groupchat-service/internal/models"
)

// PublisherMock stands in for the AMQP publisher used by audit and lifecycle events.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func (m *PublisherMock) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	return m.Called(ctx, routingKey, message, headers).Error(0)
}

func (m *PublisherMock) Close() error {
	return m.Called().Error(0)
}

// ActivityPublisherMock stands in for the Kafka chat activity writer.
type ActivityPublisherMock struct {
	mock.Mock
}

func (m *ActivityPublisherMock) PublishActivity(ctx context.Context, activity models.Activity) error {
	return m.Called(ctx, activity).Error(0)
}

type AuditorMock struct {
	mock.Mock
}

func (m *AuditorMock) Emit(ctx context.Context, level, text, requestID string, userID *int64, chatID int) {
	m.Called(ctx, level, text, requestID, userID, chatID)
}
