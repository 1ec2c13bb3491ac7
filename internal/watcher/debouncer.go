package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path. Within one window:
//   - CREATED + MODIFIED = CREATED (note is still new)
//   - CREATED + DELETED = nothing (note never really existed)
//   - MODIFIED + DELETED = DELETED
//   - DELETED + CREATED = MODIFIED (note was replaced)
//
// Batches are emitted once no event arrived for a whole window.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]Event
	timer   *time.Timer
	output  chan []Event
	stopCh  chan struct{}
	stopped bool
	sending sync.WaitGroup
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]Event),
		output:  make(chan []Event, 4),
		stopCh:  make(chan struct{}),
	}
}

// Add queues ev, merging it with any pending event for the same path.
func (d *Debouncer) Add(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[ev.Path]; ok {
		merged, keep := coalesce(prev, ev)
		if keep {
			d.pending[ev.Path] = merged
		} else {
			delete(d.pending, ev.Path)
		}
	} else {
		d.pending[ev.Path] = ev
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func coalesce(prev, next Event) (Event, bool) {
	switch {
	case prev.Op == OpCreated && next.Op == OpModified:
		return prev, true
	case prev.Op == OpCreated && next.Op == OpDeleted && !next.Dir:
		return Event{}, false
	case prev.Op == OpDeleted && next.Op == OpCreated && !prev.Dir:
		next.Op = OpModified
		return next, true
	default:
		return next, true
	}
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]Event, 0, len(d.pending))
	for _, ev := range d.pending {
		batch = append(batch, ev)
	}
	d.pending = make(map[string]Event)
	d.sending.Add(1)
	d.mu.Unlock()
	defer d.sending.Done()

	slices.SortFunc(batch, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })
	select {
	case d.output <- batch:
	case <-d.stopCh:
	}
}

// Output returns the channel of coalesced batches. It is closed by Stop.
func (d *Debouncer) Output() <-chan []Event {
	return d.output
}

// Stop discards pending events and closes Output. Safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.stopCh)
	d.mu.Unlock()

	d.sending.Wait()
	close(d.output)
}
