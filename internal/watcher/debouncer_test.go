package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) []Event {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_SingleEventPassesThrough(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Op: OpCreated, Path: "/v/a.md"})

	batch := receiveBatch(t, d, time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, "/v/a.md", batch[0].Path)
	assert.Equal(t, OpCreated, batch[0].Op)
}

func TestDebouncer_Coalescing(t *testing.T) {
	tests := []struct {
		name string
		ops  []Op
		want []Op // empty means the events cancel out
	}{
		{"modify burst", []Op{OpModified, OpModified, OpModified}, []Op{OpModified}},
		{"create then modify", []Op{OpCreated, OpModified}, []Op{OpCreated}},
		{"create then delete", []Op{OpCreated, OpDeleted}, nil},
		{"modify then delete", []Op{OpModified, OpDeleted}, []Op{OpDeleted}},
		{"delete then create", []Op{OpDeleted, OpCreated}, []Op{OpModified}},
		{"create delete create", []Op{OpCreated, OpDeleted, OpCreated}, []Op{OpCreated}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(30 * time.Millisecond)
			defer d.Stop()

			for _, op := range tt.ops {
				d.Add(Event{Op: op, Path: "/v/note.md"})
			}
			// A second path guarantees a batch is emitted even when the
			// note's events cancel out.
			d.Add(Event{Op: OpModified, Path: "/v/zz.md"})

			batch := receiveBatch(t, d, time.Second)
			var got []Op
			for _, ev := range batch {
				if ev.Path == "/v/note.md" {
					got = append(got, ev.Op)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDebouncer_BatchIsSortedByPath(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	for _, p := range []string{"/v/c.md", "/v/a.md", "/v/b.md"} {
		d.Add(Event{Op: OpModified, Path: p})
	}

	batch := receiveBatch(t, d, time.Second)
	require.Len(t, batch, 3)
	assert.Equal(t, "/v/a.md", batch[0].Path)
	assert.Equal(t, "/v/b.md", batch[1].Path)
	assert.Equal(t, "/v/c.md", batch[2].Path)
}

func TestDebouncer_StopClosesOutput(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Add(Event{Op: OpCreated, Path: "/v/a.md"})
	d.Stop()
	d.Stop()

	_, ok := <-d.Output()
	assert.False(t, ok)

	// Adds after Stop are ignored.
	d.Add(Event{Op: OpCreated, Path: "/v/b.md"})
}
