package clients

import (
	"context"
	"net/http"
	"strconv"
)

type CategoryClient struct{ api *API }

func NewCategoryClient(api *API) *CategoryClient { return &CategoryClient{api: api} }

func (cc *CategoryClient) List(ctx context.Context) ([]Category, error) {
	return fetch[[]Category](ctx, cc.api, request{method: http.MethodGet, path: "/categories"})
}

func (cc *CategoryClient) Get(ctx context.Context, id int64) (Category, error) {
	return fetch[Category](ctx, cc.api, request{method: http.MethodGet, path: "/categories/" + strconv.FormatInt(id, 10)})
}

func (cc *CategoryClient) GetBySlug(ctx context.Context, slug string) (Category, error) {
	return fetch[Category](ctx, cc.api, request{method: http.MethodGet, path: "/categories/slug/" + pathSegment(slug)})
}

func (cc *CategoryClient) Create(ctx context.Context, in CategoryInput) (Category, error) {
	return fetch[Category](ctx, cc.api, request{method: http.MethodPost, path: "/categories", body: in, auth: true})
}

func (cc *CategoryClient) Update(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	return fetch[Category](ctx, cc.api, request{method: http.MethodPut, path: "/categories/" + strconv.FormatInt(id, 10), body: in, auth: true})
}

func (cc *CategoryClient) Delete(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, cc.api, request{method: http.MethodDelete, path: "/categories/" + strconv.FormatInt(id, 10), auth: true})
	return err
}
