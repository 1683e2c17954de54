// Package query holds the typed list parameters sent to the remote API.
// Optional filters are pointers; nil means "not sent".
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

var ErrInvalid = errors.New("invalid query")

type Products struct {
	CategoryID *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Status     *string `json:"status" validate:"omitempty,oneof=active out_of_stock inactive"`
	Search     *string `json:"search"`
	Page       int     `json:"page" validate:"gte=1"`
	PageSize   int     `json:"pageSize" validate:"gte=1,lte=100"`
	SortBy     *string `json:"sortBy" validate:"omitempty,oneof=ASC DESC"`
}

// Normalize applies the defaults for page and page size.
func (q *Products) Normalize() {
	q.Page, q.PageSize = normalizePaging(q.Page, q.PageSize)
	if q.Search != nil && strings.TrimSpace(*q.Search) == "" {
		q.Search = nil
	}
	if q.SortBy != nil {
		s := strings.ToUpper(*q.SortBy)
		q.SortBy = &s
	}
}

func (q Products) Validate() error {
	return check(q)
}

// Values encodes the query. page and pageSize are always present.
func (q Products) Values() url.Values {
	v := url.Values{}
	if q.CategoryID != nil {
		v.Set("category_id", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.Status != nil {
		v.Set("status", *q.Status)
	}
	if q.Search != nil {
		v.Set("search", *q.Search)
	}
	setPaging(v, q.Page, q.PageSize)
	if q.SortBy != nil {
		v.Set("sortBy", *q.SortBy)
	}
	return v
}

// ParseProducts reads a product query from v, normalizes and validates it.
func ParseProducts(v url.Values) (Products, error) {
	var q Products
	var err error

	if q.CategoryID, err = optionalInt64(v, "category_id"); err != nil {
		return q, err
	}
	q.Status = optionalString(v, "status")
	q.Search = optionalString(v, "search")
	q.SortBy = optionalString(v, "sortBy")
	if q.Page, q.PageSize, err = parsePaging(v); err != nil {
		return q, err
	}

	q.Normalize()
	return q, q.Validate()
}

type Orders struct {
	Page     int     `json:"page" validate:"gte=1"`
	PageSize int     `json:"pageSize" validate:"gte=1,lte=100"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending processing shipping completed cancelled"`
}

func (q *Orders) Normalize() {
	q.Page, q.PageSize = normalizePaging(q.Page, q.PageSize)
}

func (q Orders) Validate() error {
	return check(q)
}

func (q Orders) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.PageSize)
	if q.Status != nil {
		v.Set("status", *q.Status)
	}
	return v
}

func ParseOrders(v url.Values) (Orders, error) {
	var q Orders
	var err error

	q.Status = optionalString(v, "status")
	if q.Page, q.PageSize, err = parsePaging(v); err != nil {
		return q, err
	}

	q.Normalize()
	return q, q.Validate()
}

// String and Int64 build optional fields inline.
func String(s string) *string { return &s }
func Int64(n int64) *int64    { return &n }

func check(q any) error {
	if err := validation.Struct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func normalizePaging(page, size int) (int, int) {
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	return page, size
}

func setPaging(v url.Values, page, size int) {
	page, size = normalizePaging(page, size)
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(size))
}

func parsePaging(v url.Values) (page, size int, err error) {
	if page, err = optionalInt(v, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = optionalInt(v, "pageSize"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func optionalString(v url.Values, key string) *string {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(v url.Values, key string) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalid, key)
	}
	return n, nil
}

func optionalInt64(v url.Values, key string) (*int64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalid, key)
	}
	return &n, nil
}
