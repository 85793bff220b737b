package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"groupchat-service/internal/observability"
)

const (
	queueSize      = 1024
	dialTimeout    = 2 * time.Second
	publishTimeout = 2 * time.Second
	heartbeat      = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

var (
	// ErrQueueFull is returned when the outbound queue cannot take another event.
	ErrQueueFull = errors.New("rabbitmq: outbound queue full")
	// ErrPublisherClosed is returned for events submitted after Close.
	ErrPublisherClosed = errors.New("rabbitmq: publisher closed")
)

// Publisher publishes audit and realtime lifecycle events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher or a noop publisher when AMQP is disabled
// or unreachable at startup. The service keeps running without a broker.
func NewPublisher(amqpURL, exchange string, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if amqpURL == "" {
		logger.Info("rabbitmq disabled, using noop", zap.String("reason", "empty amqp url"))
		return noopPublisher{reason: "empty amqp url", logger: logger}
	}

	open := func() (channel, io.Closer, error) { return connect(amqpURL, exchange) }
	ch, conn, err := open()
	if err != nil {
		logger.Warn("rabbitmq unreachable, using noop", zap.Error(err))
		return noopPublisher{reason: err.Error(), logger: logger}
	}

	logger.Info("rabbitmq connected", zap.String("exchange", exchange))
	return startPublisher(exchange, open, ch, conn, queueSize, logger)
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type opener func() (channel, io.Closer, error)

// connect dials the broker, opens a channel and declares the durable topic exchange.
func connect(amqpURL, exchange string) (channel, io.Closer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return ch, conn, nil
}

type outbound struct {
	routingKey string
	msg        amqp.Publishing
}

// amqpPublisher hands events to a single worker through a bounded queue. Callers never
// wait on the broker: a full queue drops the event and counts it.
type amqpPublisher struct {
	exchange string
	open     opener
	logger   *zap.Logger
	queue    chan outbound
	done     sync.WaitGroup

	// guards closed and the send side of queue
	mu     sync.RWMutex
	closed bool

	// owned by the worker
	ch         channel
	conn       io.Closer
	retryAfter time.Time
	now        func() time.Time
}

func startPublisher(exchange string, open opener, ch channel, conn io.Closer, size int, logger *zap.Logger) *amqpPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &amqpPublisher{
		exchange: exchange,
		open:     open,
		logger:   logger,
		queue:    make(chan outbound, size),
		ch:       ch,
		conn:     conn,
		now:      time.Now,
	}
	p.done.Add(1)
	go p.run()
	return p
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return p.PublishJSON(ctx, routingKey, event, nil)
}

// PublishJSON encodes message and queues it for delivery. It returns without waiting
// for the broker.
func (p *amqpPublisher) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode %s: %w", routingKey, err)
	}
	item := outbound{routingKey: routingKey, msg: amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      toTable(headers),
		Body:         body,
	}}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- item:
		return nil
	default:
		observability.IncAMQPDropped()
		return ErrQueueFull
	}
}

func (p *amqpPublisher) run() {
	defer p.done.Done()
	for item := range p.queue {
		if err := p.deliver(item); err != nil {
			observability.IncAMQPPublishError()
			p.logger.Warn("rabbitmq publish failed", zap.String("routing_key", item.routingKey), zap.Error(err))
		}
	}
	p.release()
}

// deliver publishes one event, reopening the connection once when it is gone.
func (p *amqpPublisher) deliver(item outbound) error {
	if p.ch == nil {
		if err := p.reopen(); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := p.ch.PublishWithContext(ctx, p.exchange, item.routingKey, false, false, item.msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	if err := p.reopen(); err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, item.routingKey, false, false, item.msg)
}

// reopen replaces the connection. After a failed dial it waits reconnectDelay before
// dialing again, so a dead broker costs one dial per delay rather than one per event.
func (p *amqpPublisher) reopen() error {
	p.release()
	if p.now().Before(p.retryAfter) {
		return errors.New("reconnect: broker unavailable")
	}
	ch, conn, err := p.open()
	if err != nil {
		p.retryAfter = p.now().Add(reconnectDelay)
		return fmt.Errorf("reconnect: %w", err)
	}
	p.ch, p.conn = ch, conn
	p.logger.Info("rabbitmq reconnected", zap.String("exchange", p.exchange))
	return nil
}

func (p *amqpPublisher) release() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close stops accepting events, delivers what is queued and closes the connection.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.done.Wait()
	return nil
}

func toTable(headers map[string]string) amqp.Table {
	if len(headers) == 0 {
		return nil
	}
	table := make(amqp.Table, len(headers))
	for key, value := range headers {
		table[key] = value
	}
	return table
}

type noopPublisher struct {
	reason string
	logger *zap.Logger
}

func (p noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return p.PublishJSON(ctx, routingKey, event, nil)
}

func (p noopPublisher) PublishJSON(_ context.Context, routingKey string, _ interface{}, _ map[string]string) error {
	p.logger.Debug("rabbitmq noop publish", zap.String("routing_key", routingKey))
	return nil
}

func (noopPublisher) Close() error { return nil }

// PublisherMode reports "amqp" or "noop" for startup logging.
func PublisherMode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case noopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}

// PublisherNoopReason explains why p is a noop publisher, or returns "".
func PublisherNoopReason(p Publisher) string {
	if publisher, ok := p.(noopPublisher); ok {
		return publisher.reason
	}
	return ""
}
