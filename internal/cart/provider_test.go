package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

func TestProviderReturnsSameInstancePerSession(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(storage.NewMemory(), zap.NewNop())

	a := p.Get(ctx, "s1")
	assert.Same(t, a, p.Get(ctx, "s1"))
	assert.NotSame(t, a, p.Get(ctx, "s2"))
	assert.Equal(t, 2, p.Len())
}

func TestProviderRestoresFromSessionNamespace(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	first := NewProvider(store, zap.NewNop())
	first.Get(ctx, "s1").Add(line(1, 10, 2))

	_, err := store.Get(ctx, "session:s1:cart")
	require.NoError(t, err)

	// a fresh provider, as after a restart
	second := NewProvider(store, zap.NewNop())
	assert.Equal(t, 2, second.Get(ctx, "s1").TotalItems())
	assert.True(t, second.Get(ctx, "s2").IsEmpty())
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProviderEvictsIdleCartsAndRestoresThem(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	p := NewProvider(storage.NewMemory(), zap.NewNop(), WithIdleTTL(time.Minute))
	p.now = clock.now

	idle := p.Get(ctx, "idle")
	idle.Add(line(1, 10, 2))
	idle.Add(line(2, 5, 1))
	p.Get(ctx, "busy")

	clock.advance(40 * time.Second)
	p.Get(ctx, "busy")
	clock.advance(30 * time.Second)
	p.Get(ctx, "busy")

	assert.Equal(t, 1, p.Len())

	restored := p.Get(ctx, "idle")
	assert.NotSame(t, idle, restored)
	require.Len(t, restored.Lines(), 2)
	assert.Equal(t, 3, restored.TotalItems())
	assert.True(t, idle.TotalPrice().Equal(restored.TotalPrice()))
	assert.Equal(t, 2, p.Len())
}

func TestProviderStaysBoundedUnderSessionChurn(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	p := NewProvider(storage.NewMemory(), zap.NewNop(), WithIdleTTL(time.Minute))
	p.now = clock.now

	for i := 0; i < 10000; i++ {
		p.Get(ctx, uuid.NewString())
		clock.advance(10 * time.Millisecond)
	}

	// 10000 gets span 100s, so only the last ttl plus one sweep interval can be loaded
	assert.LessOrEqual(t, p.Len(), 7500)
	assert.Greater(t, p.Len(), 0)
}
