package indexer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
	"github.com/ziadkadry99/vaultsearch/internal/vectordb"
)

const defaultWorkers = 4

// Engine keeps the index's chunk set for each document in line with the
// document's current content.
type Engine struct {
	chunker *Chunker
	state   *StateStore
	index   vectordb.Index
	locks   *keyedMutex
	logger  *slog.Logger
	workers int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithWorkers bounds the number of documents synced in parallel by FullScan.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates an Engine. The state store is owned by the engine for
// its whole lifetime.
func NewEngine(chunker *Chunker, state *StateStore, index vectordb.Index, opts ...EngineOption) *Engine {
	e := &Engine{
		chunker: chunker,
		state:   state,
		index:   index,
		locks:   newKeyedMutex(),
		logger:  slog.Default(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State exposes the engine's sync-state store for status reporting.
func (e *Engine) State() *StateStore { return e.state }

// SyncDocument re-indexes src if its fingerprint changed since the last
// successful sync. A failed sync never records the new fingerprint.
func (e *Engine) SyncDocument(ctx context.Context, src Source) (Outcome, error) {
	id := src.ID()
	unlock := e.locks.Lock(id)
	defer unlock()

	fp, err := src.Fingerprint()
	if err != nil {
		return e.fail("fingerprint", id, err, false)
	}
	if prev, ok := e.state.Get(id); ok && prev == fp {
		e.logger.Debug("document unchanged", "doc", id)
		return OutcomeUnchanged, nil
	}

	content, err := src.Content()
	if err != nil {
		return e.fail("read", id, err, false)
	}
	chunks := e.buildChunks(src, content)

	// Chunks are looked up even without a stored fingerprint so records left
	// by a sync interrupted between upsert and persist are replaced too.
	existing, err := e.index.GetByFilter(ctx, vectordb.FieldDocumentID, id)
	if err != nil {
		return e.fail("lookup", id, err, false)
	}
	if len(existing) > 0 {
		ids := make([]string, len(existing))
		for i, c := range existing {
			ids[i] = c.ID
		}
		if err := e.index.Delete(ctx, ids...); err != nil {
			return e.fail("delete", id, err, true)
		}
	}
	if err := e.index.Upsert(ctx, chunks); err != nil {
		return e.fail("upsert", id, err, true)
	}

	e.state.Set(id, fp)
	if err := e.state.Persist(); err != nil {
		return e.fail("persist", id, err, true)
	}

	e.logger.Debug("document indexed", "doc", id, "chunks", len(chunks), "replaced", len(existing))
	return OutcomeIndexed, nil
}

// RemoveDocument deletes every chunk of id and forgets its fingerprint.
// Removing an unknown document is not an error.
func (e *Engine) RemoveDocument(ctx context.Context, id string) (Outcome, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	existing, err := e.index.GetByFilter(ctx, vectordb.FieldDocumentID, id)
	if err != nil {
		return e.fail("lookup", id, err, false)
	}
	if len(existing) > 0 {
		ids := make([]string, len(existing))
		for i, c := range existing {
			ids[i] = c.ID
		}
		if err := e.index.Delete(ctx, ids...); err != nil {
			return e.fail("delete", id, err, false)
		}
	}

	tracked := e.state.Delete(id)
	if tracked {
		if err := e.state.Persist(); err != nil {
			return e.fail("persist", id, err, false)
		}
	}

	if !tracked && len(existing) == 0 {
		e.logger.Debug("remove of unknown document", "doc", id)
		return OutcomeNotFound, nil
	}
	e.logger.Debug("document removed", "doc", id, "chunks", len(existing))
	return OutcomeRemoved, nil
}

// FullScan syncs every source with bounded parallelism. Failures are
// collected per document and never stop the scan. Documents missing from
// sources are left in the index.
func (e *Engine) FullScan(ctx context.Context, sources []Source, onProgress ProgressFunc) ScanReport {
	start := time.Now()
	report := ScanReport{Total: len(sources)}

	var (
		mu        sync.Mutex
		processed atomic.Int64
		g         errgroup.Group
	)
	g.SetLimit(e.workers)

	for _, src := range sources {
		g.Go(func() error {
			var (
				outcome Outcome
				err     error
			)
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				outcome, err = e.SyncDocument(ctx, src)
			}

			mu.Lock()
			switch {
			case err != nil:
				report.Failed++
				report.Errors = append(report.Errors, err)
			case outcome == OutcomeIndexed:
				report.Indexed++
			default:
				report.Unchanged++
			}
			mu.Unlock()

			n := processed.Add(1)
			if onProgress != nil {
				onProgress(int(n), report.Total, src.ID())
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	e.logger.Info("scan complete",
		"total", report.Total,
		"indexed", report.Indexed,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"duration", report.Duration.Round(time.Millisecond))
	return report
}

func (e *Engine) buildChunks(src Source, content string) []vectordb.Chunk {
	id := src.ID()
	title := src.Title()
	if title == "" {
		title = id
	}

	windows := e.chunker.Chunk(title, content)
	chunks := make([]vectordb.Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = vectordb.Chunk{
			ID:   vectordb.ChunkID(id, i),
			Text: w.Text,
			Metadata: vectordb.ChunkMetadata{
				DocumentID:   id,
				Title:        title,
				FullPath:     src.FullPath(),
				ChunkIndex:   i,
				StartOffset:  w.Start,
				EndOffset:    w.End,
				IsTitleChunk: i == 0,
			},
		}
	}
	return chunks
}

// fail logs a sync failure and returns it as a transient error. When the
// index was already mutated the stored fingerprint is dropped so the next
// event or scan rebuilds the document from scratch.
func (e *Engine) fail(step, id string, err error, indexMutated bool) (Outcome, error) {
	if indexMutated && e.state.Delete(id) {
		if perr := e.state.Persist(); perr != nil {
			e.logger.Warn("persist after failed sync", "doc", id, "err", perr)
		}
	}
	e.logger.Warn("sync failed", "doc", id, "step", step, "err", err)

	if vserrors.KindOf(err) != vserrors.KindUnknown {
		return OutcomeFailed, err
	}
	return OutcomeFailed, vserrors.Transient("indexer."+step, id, err)
}
