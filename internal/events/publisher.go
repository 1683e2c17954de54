package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const publishTimeout = 3 * time.Second

// Publisher announces storefront events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, meta Metadata, o clients.Order) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, Metadata, clients.Order) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// RabbitPublisher publishes persistent JSON envelopes to the events
// exchange. A channel is not safe for concurrent publishing, hence mu.
type RabbitPublisher struct {
	mu     sync.Mutex
	ch     channel
	conn   *amqp.Connection
	logger *zap.Logger
	now    func() time.Time
}

// Dial connects to the broker at url and declares the events exchange.
func Dial(url string, logger *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newRabbitPublisher(ch channel, logger *zap.Logger) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, logger: logger.Named("events"), now: time.Now}, nil
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, meta Metadata, o clients.Order) error {
	ev := NewOrderPlaced(meta, o, p.now())
	if err := ev.Validate(EventTypeOrderPlaced, 1); err != nil {
		return fmt.Errorf("invalid OrderPlaced: %w", err)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced envelope: %w", err)
	}
	if err := p.publishJSON(ctx, OrderPlacedRoutingKey, ev.ID, ev.CorrelationID, body); err != nil {
		return fmt.Errorf("publish OrderPlaced: %w", err)
	}
	p.logger.Info("published",
		zap.String("event", EventTypeOrderPlaced),
		zap.String("event_id", ev.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     p.now().UTC(),
			Body:          body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
