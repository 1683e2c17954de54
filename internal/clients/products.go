package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

// relatedScanSize is how many products of the category are scanned when
// picking related products.
const relatedScanSize = 100

type ProductClient struct{ api *API }

func NewProductClient(api *API) *ProductClient { return &ProductClient{api: api} }

func (pc *ProductClient) List(ctx context.Context, q query.Products) (Page[Product], error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return Page[Product]{}, err
	}
	return fetch[Page[Product]](ctx, pc.api, request{method: http.MethodGet, path: "/products", query: q.Values()})
}

func (pc *ProductClient) Get(ctx context.Context, id int64) (Product, error) {
	return fetch[Product](ctx, pc.api, request{method: http.MethodGet, path: "/products/" + strconv.FormatInt(id, 10)})
}

func (pc *ProductClient) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return fetch[Product](ctx, pc.api, request{method: http.MethodGet, path: "/products/slug/" + pathSegment(slug)})
}

func (pc *ProductClient) Create(ctx context.Context, in ProductInput) (Product, error) {
	return fetch[Product](ctx, pc.api, request{method: http.MethodPost, path: "/products", body: in, auth: true})
}

func (pc *ProductClient) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	return fetch[Product](ctx, pc.api, request{method: http.MethodPut, path: "/products/" + strconv.FormatInt(id, 10), body: in, auth: true})
}

func (pc *ProductClient) Delete(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, pc.api, request{method: http.MethodDelete, path: "/products/" + strconv.FormatInt(id, 10), auth: true})
	return err
}

// Related returns up to n other products of p's category, in API order.
// A product without a category has no related products.
func (pc *ProductClient) Related(ctx context.Context, p Product, n int) ([]Product, error) {
	if p.CategoryID == nil || n <= 0 {
		return nil, nil
	}

	page, err := pc.List(ctx, query.Products{
		CategoryID: p.CategoryID,
		Page:       1,
		PageSize:   relatedScanSize,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, n)
	for _, other := range page.Data {
		if other.ID == p.ID {
			continue
		}
		out = append(out, other)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
