package indexer

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
)

// ChangeKind is the engine operation a change maps to.
type ChangeKind int

const (
	// ChangeUpsert covers created and modified documents.
	ChangeUpsert ChangeKind = iota
	// ChangeRemove covers deleted documents.
	ChangeRemove
)

func (k ChangeKind) String() string {
	if k == ChangeRemove {
		return "remove"
	}
	return "upsert"
}

// Change is one document event for the Dispatcher. Source is required for
// ChangeUpsert and ignored for ChangeRemove.
type Change struct {
	Kind       ChangeKind
	DocumentID string
	Source     Source
}

// ResultFunc observes the outcome of every dispatched change.
type ResultFunc func(c Change, outcome Outcome, err error)

const workerQueueSize = 64

// Dispatcher feeds changes from one channel to a fixed set of workers.
// All changes for a document go to the same worker, so they are applied in
// arrival order while different documents proceed in parallel.
type Dispatcher struct {
	engine   *Engine
	workers  int
	logger   *slog.Logger
	onResult ResultFunc
}

// NewDispatcher creates a Dispatcher with the given number of workers.
func NewDispatcher(engine *Engine, workers int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{engine: engine, workers: workers, logger: logger}
}

// OnResult registers fn to be called after each change is applied.
func (d *Dispatcher) OnResult(fn ResultFunc) {
	d.onResult = fn
}

// Run consumes changes until the channel is closed or ctx is done, then
// waits for in-flight work. Queued changes are dropped on cancellation.
func (d *Dispatcher) Run(ctx context.Context, changes <-chan Change) error {
	queues := make([]chan Change, d.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan Change, workerQueueSize)
		wg.Add(1)
		go func(q <-chan Change) {
			defer wg.Done()
			for c := range q {
				if ctx.Err() != nil {
					continue
				}
				d.apply(ctx, c)
			}
		}(queues[i])
	}

	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			q := queues[d.shard(c.DocumentID)]
			select {
			case q <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (d *Dispatcher) shard(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(d.workers))
}

func (d *Dispatcher) apply(ctx context.Context, c Change) {
	var (
		outcome Outcome
		err     error
	)
	switch c.Kind {
	case ChangeRemove:
		outcome, err = d.engine.RemoveDocument(ctx, c.DocumentID)
	default:
		outcome, err = d.engine.SyncDocument(ctx, c.Source)
	}

	if err == nil {
		level := slog.LevelInfo
		if outcome == OutcomeUnchanged {
			level = slog.LevelDebug
		}
		d.logger.Log(ctx, level, "change applied", "doc", c.DocumentID, "kind", c.Kind.String(), "outcome", outcome.String())
	}
	if d.onResult != nil {
		d.onResult(c, outcome, err)
	}
}
