// Package cart is the client-local shopping cart: an ordered set of lines
// keyed by product id, mirrored to storage and observed by subscribers.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

type Option func(*Manager)

// WithLines seeds the cart, e.g. from a persisted mirror. Duplicate ids are
// merged and quantities below 1 are raised to 1.
func WithLines(lines ...Line) Option {
	return func(m *Manager) {
		for _, l := range lines {
			m.add(l)
		}
	}
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Manager owns one cart. It is safe for concurrent use.
//
// Subscribers run synchronously after each mutation that changed the cart,
// in subscription order. They may read the Manager but must not mutate it.
type Manager struct {
	mu     sync.Mutex
	lines  []Line
	subs   []subscriber
	nextID int

	// notifyMu serializes mutate+notify so subscribers observe changes in
	// the order they were applied.
	notifyMu sync.Mutex
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add puts a line into the cart. If a line with the same id exists its
// quantity is incremented instead. A zero quantity counts as 1.
func (m *Manager) Add(line Line) {
	m.mutate(func() bool {
		m.add(line)
		return true
	})
}

func (m *Manager) add(line Line) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if i := m.indexOf(line.ID); i >= 0 {
		m.lines[i].Quantity += line.Quantity
		return
	}
	m.lines = append(m.lines, line)
}

// Remove deletes the line with the given id. Removing an absent id is a no-op.
func (m *Manager) Remove(id int64) {
	m.mutate(func() bool {
		i := m.indexOf(id)
		if i < 0 {
			return false
		}
		m.lines = append(m.lines[:i], m.lines[i+1:]...)
		return true
	})
}

// UpdateQuantity sets the quantity of a line. Values below 1 are clamped
// to 1; lines are only dropped through Remove.
func (m *Manager) UpdateQuantity(id int64, q int) {
	if q < 1 {
		q = 1
	}
	m.mutate(func() bool {
		i := m.indexOf(id)
		if i < 0 || m.lines[i].Quantity == q {
			return false
		}
		m.lines[i].Quantity = q
		return true
	})
}

// Subtract takes the given lines out of the cart by id and quantity, as
// after they were ordered. A line whose quantity drops to zero is removed.
// Lines added or raised since the given lines were read survive.
func (m *Manager) Subtract(lines []Line) {
	m.mutate(func() bool {
		changed := false
		for _, l := range lines {
			i := m.indexOf(l.ID)
			if i < 0 || l.Quantity < 1 {
				continue
			}
			changed = true
			if m.lines[i].Quantity > l.Quantity {
				m.lines[i].Quantity -= l.Quantity
				continue
			}
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
		}
		return changed
	})
}

func (m *Manager) Clear() {
	m.mutate(func() bool {
		if len(m.lines) == 0 {
			return false
		}
		m.lines = nil
		return true
	})
}

func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalItemsLocked()
}

func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPriceLocked()
}

// Lines returns a copy of the lines in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLinesLocked()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

func (m *Manager) IsEmpty() bool { return m.Len() == 0 }

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Manager) mutate(fn func() bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if !fn() {
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}

func (m *Manager) indexOf(id int64) int {
	for i, l := range m.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) totalItemsLocked() int {
	n := 0
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n
}

func (m *Manager) totalPriceLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range m.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (m *Manager) copyLinesLocked() []Line {
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      m.copyLinesLocked(),
		TotalItems: m.totalItemsLocked(),
		TotalPrice: m.totalPriceLocked(),
	}
}
