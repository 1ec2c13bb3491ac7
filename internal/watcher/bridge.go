package watcher

import (
	"context"
	"slices"
	"strings"

	"github.com/ziadkadry99/vaultsearch/internal/indexer"
	"github.com/ziadkadry99/vaultsearch/internal/walker"
)

// TrackedFunc lists the document ids currently known to the sync state.
type TrackedFunc func() map[string]string

// Bridge maps watcher events onto engine changes. A created or modified note
// that can no longer be read as a note becomes a removal. A removed
// directory becomes one removal per tracked document below it. The returned
// channel is closed when events is closed or ctx is done.
func Bridge(ctx context.Context, events <-chan Event, vault *walker.Vault, tracked TrackedFunc) <-chan indexer.Change {
	out := make(chan indexer.Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				for _, c := range changesFor(ev, vault, tracked) {
					select {
					case out <- c:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}

func changesFor(ev Event, vault *walker.Vault, tracked TrackedFunc) []indexer.Change {
	if ev.Dir {
		rel, ok := vault.RelPath(ev.Path)
		if !ok || tracked == nil {
			return nil
		}
		prefix := rel + "/"
		var ids []string
		for id := range tracked() {
			if strings.HasPrefix(id, prefix) {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		changes := make([]indexer.Change, len(ids))
		for i, id := range ids {
			changes[i] = indexer.Change{Kind: indexer.ChangeRemove, DocumentID: id}
		}
		return changes
	}

	id, ok := vault.Eligible(ev.Path)
	if !ok {
		return nil
	}
	if ev.Op != OpDeleted {
		if _, ok := vault.Indexable(ev.Path); ok {
			return []indexer.Change{{Kind: indexer.ChangeUpsert, DocumentID: id, Source: vault.Source(id)}}
		}
	}
	return []indexer.Change{{Kind: indexer.ChangeRemove, DocumentID: id}}
}
