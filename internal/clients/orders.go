package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

type OrderClient struct{ api *API }

func NewOrderClient(api *API) *OrderClient { return &OrderClient{api: api} }

func (oc *OrderClient) List(ctx context.Context, q query.Orders) (Page[Order], error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return Page[Order]{}, err
	}
	return fetch[Page[Order]](ctx, oc.api, request{method: http.MethodGet, path: "/orders", query: q.Values(), auth: true})
}

func (oc *OrderClient) Get(ctx context.Context, id int64) (Order, error) {
	return fetch[Order](ctx, oc.api, request{method: http.MethodGet, path: orderPath(id), auth: true})
}

// Create places an order. It is the only order call open to guests.
func (oc *OrderClient) Create(ctx context.Context, in CreateOrderRequest) (*Response[Order], error) {
	return call[Order](ctx, oc.api, request{method: http.MethodPost, path: "/orders", body: in})
}

func (oc *OrderClient) UpdateStatus(ctx context.Context, id int64, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unknown order status %q", query.ErrInvalid, status)
	}
	body := struct {
		Status Status `json:"status"`
	}{Status: status}
	return fetch[Order](ctx, oc.api, request{method: http.MethodPatch, path: orderPath(id) + "/status", body: body, auth: true})
}

func (oc *OrderClient) Delete(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, oc.api, request{method: http.MethodDelete, path: orderPath(id), auth: true})
	return err
}

func orderPath(id int64) string { return "/orders/" + strconv.FormatInt(id, 10) }
