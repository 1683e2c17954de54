// Package search backs the product autocomplete: identical concurrent
// lookups share one API call, and typing is debounced so superseded
// lookups are cancelled.
package search

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

// PageSize is the number of suggestions per page.
const PageSize = 10

type ProductLister interface {
	List(ctx context.Context, q query.Products) (clients.Page[clients.Product], error)
}

type Result struct {
	Query    string            `json:"query"`
	Page     int               `json:"page"`
	Products []clients.Product `json:"products"`
	HasMore  bool              `json:"has_more"`
}

// flight is one shared API call and the callers still waiting for it. Its
// context outlives any single caller and is cancelled when the last one
// leaves.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

type Searcher struct {
	products ProductLister
	group    singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
	seq     uint64
}

func NewSearcher(products ProductLister) *Searcher {
	return &Searcher{products: products, flights: make(map[string]*flight)}
}

// Normalize trims text and composes it to NFC, so decomposed Vietnamese
// input matches the catalog.
func Normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Search returns one page of products matching text. Blank text matches
// nothing and makes no call.
func (s *Searcher) Search(ctx context.Context, text string, page int) (Result, error) {
	text = Normalize(text)
	if page < 1 {
		page = 1
	}
	if text == "" {
		return Result{Page: page}, nil
	}

	key := strconv.Itoa(page) + ":" + text
	f := s.join(ctx, key)
	defer s.leave(key, f)

	ch := s.group.DoChan(f.key, func() (any, error) {
		return s.products.List(f.ctx, query.Products{
			Search:   &text,
			Page:     page,
			PageSize: PageSize,
		})
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		p := res.Val.(clients.Page[clients.Product])
		return Result{
			Query:    text,
			Page:     page,
			Products: p.Data,
			HasMore:  p.Pagination.HasNext,
		}, nil
	}
}

func (s *Searcher) join(ctx context.Context, key string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[key]
	if !ok {
		s.seq++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		// a fresh singleflight key per flight, so a late caller never joins
		// a call that was already cancelled
		f = &flight{key: key + "#" + strconv.FormatUint(s.seq, 10), ctx: fctx, cancel: cancel}
		s.flights[key] = f
	}
	f.waiters++
	return f
}

func (s *Searcher) leave(key string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if s.flights[key] == f {
		delete(s.flights, key)
	}
}
