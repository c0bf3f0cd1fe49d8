package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Package ledger records pages created during an import run for post-run
// diagnostics. The ledger is append-only and never consulted to skip work:
// re-running an import creates duplicate pages by design.

// Entry is one recorded page creation.
type Entry struct {
	URL        string    `json:"url"`
	PageID     string    `json:"page_id"`
	ImportedAt time.Time `json:"imported_at"`
}

// Ledger persists created-page records.
type Ledger interface {
	Close() error
	Record(entry Entry) error
	Count() (int, error)
}

// New creates the configured ledger backend.
func New(typ, path string) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopLedger{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt ledger requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported ledger type %q", typ)
	}
}

type noopLedger struct{}

func (noopLedger) Close() error        { return nil }
func (noopLedger) Record(Entry) error  { return nil }
func (noopLedger) Count() (int, error) { return 0, nil }
