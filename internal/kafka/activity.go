// Package kafka streams chat activity records to downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	k "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"groupchat-service/internal/models"
	"groupchat-service/internal/observability"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...k.Message) error
	Close() error
}

// ActivityWriter publishes models.Activity records keyed by chat id, so all records of
// one chat land on the same partition in order.
type ActivityWriter struct {
	w      messageWriter
	logger *zap.Logger
}

// NewActivityWriter returns a writer for topic, or a noop writer when brokers is empty.
func NewActivityWriter(brokers []string, topic string, logger *zap.Logger) *ActivityWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(brokers) == 0 {
		logger.Info("kafka activity stream disabled", zap.String("reason", "no brokers"))
		return &ActivityWriter{logger: logger}
	}
	w := &k.Writer{
		Addr:         k.TCP(brokers...),
		Topic:        topic,
		Balancer:     &k.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: k.RequireOne,
		Async:        true,
		Completion: func(messages []k.Message, err error) {
			if err != nil {
				observability.IncKafkaPublishError()
				logger.Warn("kafka activity write failed", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	logger.Info("kafka activity stream enabled", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &ActivityWriter{w: w, logger: logger}
}

// PublishActivity enqueues activity. The writer is async; delivery failures surface in
// the completion callback, not here.
func (a *ActivityWriter) PublishActivity(ctx context.Context, activity models.Activity) error {
	if a == nil || a.w == nil {
		return nil
	}
	value, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return a.w.WriteMessages(ctx, k.Message{
		Key:   []byte(strconv.Itoa(activity.ChatID)),
		Value: value,
		Time:  activity.OccurredAt,
		Headers: []k.Header{
			{Key: "kind", Value: []byte(activity.Kind)},
		},
	})
}

func (a *ActivityWriter) Close() error {
	if a == nil || a.w == nil {
		return nil
	}
	return a.w.Close()
}
