package indexer

import "time"

// Source is a document as seen by the Engine. Fingerprint must be cheaper
// than Content; it is computed first so unchanged documents are never read.
type Source interface {
	ID() string
	FullPath() string
	Title() string
	Fingerprint() (string, error)
	Content() (string, error)
}

// Outcome describes what a sync or remove did.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeUnchanged
	OutcomeIndexed
	OutcomeRemoved
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeIndexed:
		return "indexed"
	case OutcomeRemoved:
		return "removed"
	case OutcomeNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// ScanReport summarizes a FullScan.
type ScanReport struct {
	Total     int
	Indexed   int
	Unchanged int
	Failed    int
	Errors    []error
	Duration  time.Duration
}

// ProgressFunc is called during a scan to report progress.
type ProgressFunc func(processed int, total int, currentDoc string)
