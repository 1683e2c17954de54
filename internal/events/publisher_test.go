package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleOrder() clients.Order {
	return clients.Order{
		ID:            7,
		OrderNumber:   "ORD-000007",
		Total:         clients.AmountFromInt(140000),
		PaymentMethod: "COD",
		Items: []clients.OrderItem{
			{ProductID: 1, ProductName: "A", ProductPrice: clients.AmountFromInt(50000), Quantity: 1},
			{ProductID: 2, ProductName: "B", ProductPrice: clients.AmountFromInt(30000), Quantity: 3},
		},
	}
}

func TestOrderPlacedEnvelope(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	meta := Metadata{CorrelationID: "c0a8e2b6-3c6a-4d7e-9c8f-1f2e3d4c5b6a"}

	ev := NewOrderPlaced(meta, sampleOrder(), now)

	require.NoError(t, ev.Validate(EventTypeOrderPlaced, 1))
	assert.Equal(t, "ORD-000007", ev.PartitionKey)
	assert.Equal(t, ProducerName, ev.Producer)
	assert.Equal(t, meta.CorrelationID, ev.CorrelationID)
	assert.Equal(t, now, ev.OccurredAt)
	require.Len(t, ev.Payload.Items, 2)
	assert.Equal(t, "B", ev.Payload.Items[1].Name)

	ev.Name = "WrongName"
	assert.ErrorIs(t, ev.Validate(EventTypeOrderPlaced, 1), ErrInvalidEnvelope)
}

func TestRabbitPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"ecommerce.events:topic"}, ch.declared)

	err = p.PublishOrderPlaced(context.Background(), Metadata{CorrelationID: "cid"}, sampleOrder())
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, OrderPlacedRoutingKey, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "cid", got.msg.CorrelationId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "OrderPlaced", body["eventName"])
	assert.Equal(t, got.msg.MessageId, body["eventId"])
	payload := body["payload"].(map[string]any)
	assert.Equal(t, float64(140000), payload["total"])
	assert.Equal(t, "ORD-000007", payload["orderNumber"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisherErrors(t *testing.T) {
	_, err := newRabbitPublisher(&fakeChannel{declareErr: errors.New("access refused")}, zap.NewNop())
	require.Error(t, err)

	boom := errors.New("channel closed")
	p, err := newRabbitPublisher(&fakeChannel{publishErr: boom}, zap.NewNop())
	require.NoError(t, err)
	err = p.PublishOrderPlaced(context.Background(), Metadata{}, sampleOrder())
	require.ErrorIs(t, err, boom)

	err = p.PublishOrderPlaced(context.Background(), Metadata{}, clients.Order{})
	assert.ErrorContains(t, err, "partitionKey")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), Metadata{}, sampleOrder()))
	assert.NoError(t, p.Close())
}
