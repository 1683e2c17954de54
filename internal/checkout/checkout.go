// Package checkout turns a cart and the customer's delivery details into an
// order on the remote API.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	PaymentCOD  = "COD"
	PaymentBank = "bank"
)

type Form struct {
	FullName      string `json:"fullName" validate:"required"`
	Phone         string `json:"phone" validate:"required,phone10"`
	Email         string `json:"email" validate:"required,email"`
	Address       string `json:"address" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"oneof=COD bank"`
	Note          string `json:"note"`
}

// Normalize trims the fields and defaults the payment method to COD.
func (f *Form) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.Note = strings.TrimSpace(f.Note)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCOD
	}
}

type OrderCreator interface {
	Create(ctx context.Context, in clients.CreateOrderRequest) (*clients.Response[clients.Order], error)
}

type Service struct {
	orders    OrderCreator
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(orders OrderCreator, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{orders: orders, publisher: publisher, logger: logger.Named("checkout")}
}

// PlaceOrder submits the cart. On success the ordered lines are taken out
// of the cart, leaving anything added while the order was in flight, and an
// OrderPlaced event is published. On any failure the cart is left as is.
func (s *Service) PlaceOrder(ctx context.Context, form Form, c *cart.Manager) (*clients.Order, error) {
	form.Normalize()
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	resp, err := s.orders.Create(ctx, BuildRequest(form, lines))
	if err != nil {
		s.logger.Warn("order rejected", zap.Error(err), zap.Int("lines", len(lines)))
		return nil, fmt.Errorf("place order: %w", err)
	}
	order := resp.Data

	c.Subtract(lines)
	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_method", form.PaymentMethod),
	)

	meta := events.Metadata{CorrelationID: middleware.GetCorrelationID(ctx)}
	if err := s.publisher.PublishOrderPlaced(context.WithoutCancel(ctx), meta, order); err != nil {
		s.logger.Error("publish OrderPlaced", zap.Error(err), zap.String("order_number", order.OrderNumber))
	}
	return &order, nil
}

// BuildRequest maps the form and cart lines to the API's order request.
func BuildRequest(form Form, lines []cart.Line) clients.CreateOrderRequest {
	req := clients.CreateOrderRequest{
		CustomerName:    form.FullName,
		CustomerPhone:   form.Phone,
		CustomerEmail:   form.Email,
		CustomerAddress: form.Address,
		PaymentMethod:   form.PaymentMethod,
		Note:            form.Note,
		Items:           make([]clients.CreateOrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		req.Items = append(req.Items, clients.CreateOrderItem{
			ProductID:    l.ID,
			ProductName:  l.Name,
			ProductPrice: clients.NewAmount(l.Price),
			Quantity:     l.Quantity,
		})
	}
	return req
}
