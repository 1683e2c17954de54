package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// DefaultIdleTTL is how long a session's cart stays loaded without access.
const DefaultIdleTTL = 30 * time.Minute

type ProviderOption func(*Provider)

// WithIdleTTL sets how long an unused cart stays in memory. A non-positive
// ttl keeps carts loaded for the life of the Provider.
func WithIdleTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) { p.idleTTL = ttl }
}

type loaded struct {
	m        *Manager
	lastUsed time.Time
}

// Provider hands out one Manager per session. The first access restores the
// cart from the session's storage namespace and attaches a Persister; later
// accesses return the same instance until the cart sits idle for the idle
// ttl. An evicted cart is restored from storage on its next access.
type Provider struct {
	store   storage.Store
	logger  *zap.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	carts     map[string]*loaded
	nextSweep time.Time
}

func NewProvider(store storage.Store, logger *zap.Logger, opts ...ProviderOption) *Provider {
	p := &Provider{
		store:   store,
		logger:  logger.Named("cart"),
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		carts:   make(map[string]*loaded),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Get(ctx context.Context, sessionID string) *Manager {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweepLocked(now)

	if l, ok := p.carts[sessionID]; ok {
		l.lastUsed = now
		return l.m
	}

	sessionStore := storage.ForSession(p.store, sessionID)
	logger := p.logger.With(zap.String("session_id", sessionID))
	m := Restore(ctx, sessionStore, logger)
	NewPersister(sessionStore, logger).Attach(m)
	p.carts[sessionID] = &loaded{m: m, lastUsed: now}
	return m
}

// sweepLocked drops carts idle for at least the idle ttl. It runs at most
// every quarter ttl so Get stays cheap with many sessions loaded.
func (p *Provider) sweepLocked(now time.Time) {
	if p.idleTTL <= 0 || now.Before(p.nextSweep) {
		return
	}
	p.nextSweep = now.Add(p.idleTTL / 4)

	evicted := 0
	for id, l := range p.carts {
		if now.Sub(l.lastUsed) >= p.idleTTL {
			delete(p.carts, id)
			evicted++
		}
	}
	if evicted > 0 {
		p.logger.Debug("evicted idle carts", zap.Int("count", evicted), zap.Int("loaded", len(p.carts)))
	}
}

// Len reports how many carts are loaded.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.carts)
}
