package indexer

import (
	"strings"
	"unicode/utf8"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
)

// Default chunk geometry in bytes.
const (
	DefaultChunkSize   = 1024
	DefaultOverlapSize = 256
)

// Window is one chunk of a document: its text and its byte span in the
// UTF-8 encoded content. The title window has the empty span [0,0).
type Window struct {
	Text  string
	Start int
	End   int
}

// Chunker splits document content into overlapping byte windows.
// A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker returns a Chunker producing windows of at most size bytes that
// overlap by overlap bytes.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size < utf8.UTFMax {
		return nil, vserrors.Invalid("indexer.NewChunker", "chunk size %d is smaller than %d bytes", size, utf8.UTFMax)
	}
	if overlap < 0 || overlap >= size {
		return nil, vserrors.Invalid("indexer.NewChunker", "overlap %d must be in [0, %d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// DefaultChunker returns a Chunker with the default 1024/256 geometry.
func DefaultChunker() *Chunker {
	return &Chunker{size: DefaultChunkSize, overlap: DefaultOverlapSize}
}

// Size returns the maximum window length in bytes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of bytes shared by consecutive windows.
func (c *Chunker) Overlap() int { return c.overlap }

// Step returns how far the window start advances each iteration.
func (c *Chunker) Step() int { return c.size - c.overlap }

// Chunk returns the title window followed by the content windows.
//
// Windows never split a UTF-8 sequence: a window end falling inside a
// character is trimmed back to that character's first byte, and a start
// falling inside one moves back to it. A start never passes the end of the
// previous window, so no byte is skipped. Iteration stops once a window
// reaches the end of the content; content no longer than the chunk size
// yields exactly one window. Invalid UTF-8 is replaced with U+FFFD first and
// offsets refer to the repaired text.
func (c *Chunker) Chunk(title, content string) []Window {
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}
	n := len(content)
	windows := make([]Window, 1, 2+n/c.Step())
	windows[0] = Window{Text: title}

	lastStart, lastEnd := -1, 0
	for start := 0; ; start += c.Step() {
		s := min(runeStartAtOrBefore(content, start), lastEnd)
		if s >= n {
			break
		}
		if s <= lastStart {
			continue
		}

		e := min(s+c.size, n)
		for e < n && !utf8.RuneStart(content[e]) {
			e--
		}
		if e <= s {
			break
		}

		windows = append(windows, Window{Text: content[s:e], Start: s, End: e})
		lastStart, lastEnd = s, e
		if e == n {
			break
		}
	}
	return windows
}

func runeStartAtOrBefore(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
