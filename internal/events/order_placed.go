package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const (
	EventTypeOrderPlaced = "OrderPlaced"
	orderPlacedSchema    = "ecommerce.storefront.order-placed.v1"
)

type OrderPlacedItem struct {
	ProductID int64          `json:"productId"`
	Name      string         `json:"name"`
	Price     clients.Amount `json:"price"`
	Quantity  int            `json:"quantity"`
}

type OrderPlacedPayload struct {
	OrderID       int64             `json:"orderId"`
	OrderNumber   string            `json:"orderNumber"`
	Items         []OrderPlacedItem `json:"items"`
	Total         clients.Amount    `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
}

type OrderPlacedEvent = Envelope[OrderPlacedPayload]

// NewOrderPlaced builds the event for an order the API accepted. The order
// number is the partition key.
func NewOrderPlaced(meta Metadata, o clients.Order, occurredAt time.Time) OrderPlacedEvent {
	payload := OrderPlacedPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.ProductPrice,
			Quantity:  it.Quantity,
		})
	}

	return OrderPlacedEvent{
		Name:          EventTypeOrderPlaced,
		Version:       1,
		ID:            uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      ProducerName,
		PartitionKey:  o.OrderNumber,
		OccurredAt:    occurredAt.UTC(),
		Schema:        orderPlacedSchema,
		Payload:       payload,
	}
}
