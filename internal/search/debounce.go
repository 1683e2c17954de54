package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay matches the autocomplete's typing pause.
const DefaultDelay = 300 * time.Millisecond

// Debouncer runs a search once input has been quiet for delay. New input
// cancels both the pending timer and any lookup still in flight, and
// results of superseded lookups are dropped.
type Debouncer struct {
	parent   context.Context
	delay    time.Duration
	searcher *Searcher
	onResult func(Result, error)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(ctx context.Context, delay time.Duration, s *Searcher, onResult func(Result, error)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{parent: ctx, delay: delay, searcher: s, onResult: onResult}
}

// Input records the latest text. Blank text clears the suggestions at once.
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	d.stopLocked()
	d.gen++
	gen := d.gen

	if Normalize(text) == "" {
		d.mu.Unlock()
		d.onResult(Result{Page: 1}, nil)
		return
	}
	d.timer = time.AfterFunc(d.delay, func() { d.run(gen, text) })
	d.mu.Unlock()
}

// Stop cancels pending and in-flight lookups.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

func (d *Debouncer) run(gen uint64, text string) {
	ctx, cancel := context.WithCancel(d.parent)
	defer cancel()

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.cancel = cancel
	d.mu.Unlock()

	res, err := d.searcher.Search(ctx, text, 1)

	d.mu.Lock()
	current := gen == d.gen
	if current {
		d.cancel = nil
	}
	d.mu.Unlock()

	if current && ctx.Err() == nil {
		d.onResult(res, err)
	}
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
