package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// StorageKey is where the cart mirror lives in a session's store.
const StorageKey = "cart"

const saveTimeout = 3 * time.Second

// Restore builds a Manager from the mirror in store. A missing or corrupt
// mirror yields an empty cart; the problem is logged, not returned.
func Restore(ctx context.Context, store storage.Store, logger *zap.Logger) *Manager {
	raw, err := store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("cart restore failed, starting empty", zap.Error(err))
		}
		return NewManager()
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		logger.Warn("cart mirror is corrupt, starting empty", zap.Error(err))
		return NewManager()
	}
	return NewManager(WithLines(lines...))
}

// Persister mirrors a cart to storage after every change.
type Persister struct {
	store  storage.Store
	logger *zap.Logger
}

func NewPersister(store storage.Store, logger *zap.Logger) *Persister {
	return &Persister{store: store, logger: logger}
}

// Attach subscribes the persister to m. The returned func detaches it.
func (p *Persister) Attach(m *Manager) (detach func()) {
	return m.Subscribe(func(s Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := p.Save(ctx, s); err != nil {
			p.logger.Error("persist cart", zap.Error(err), zap.Int("lines", len(s.Lines)))
		}
	})
}

// Save writes the snapshot. An empty cart removes the mirror.
func (p *Persister) Save(ctx context.Context, s Snapshot) error {
	if len(s.Lines) == 0 {
		return p.store.Delete(ctx, StorageKey)
	}
	b, err := json.Marshal(s.Lines)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, StorageKey, string(b))
}
