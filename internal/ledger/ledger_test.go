package ledger

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewNoop(t *testing.T) {
	for _, typ := range []string{"", "none", "disabled", " NONE "} {
		l, err := New(typ, "")
		if err != nil {
			t.Fatalf("New(%q): %v", typ, err)
		}
		if err := l.Record(Entry{PageID: "p-1"}); err != nil {
			t.Fatalf("noop Record: %v", err)
		}
		n, err := l.Count()
		if err != nil || n != 0 {
			t.Fatalf("noop Count = %d, %v", n, err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("noop Close: %v", err)
		}
	}
}

func TestNewUnsupportedType(t *testing.T) {
	if _, err := New("redis", ""); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestNewBoltRequiresPath(t *testing.T) {
	if _, err := New("bbolt", "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestBoltRecordAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "pages.db")

	l, err := New("bbolt", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	entries := []Entry{
		{URL: "https://example.com/a", PageID: "page-1", ImportedAt: time.Now().UTC()},
		{URL: "https://example.com/b", PageID: "page-2"},
	}
	for _, e := range entries {
		if err := l.Record(e); err != nil {
			t.Fatalf("Record(%s): %v", e.PageID, err)
		}
	}

	n, err := l.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestBoltRecordSameURLTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.db")

	l, err := New("bbolt", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	// Two runs over the same export create two remote pages, so the ledger
	// keeps both records.
	if err := l.Record(Entry{URL: "https://example.com/a", PageID: "page-1"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(Entry{URL: "https://example.com/a", PageID: "page-2"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	n, err := l.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestBoltRecordRequiresPageID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.db")

	l, err := New("bbolt", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	if err := l.Record(Entry{URL: "https://example.com/a"}); err == nil {
		t.Fatalf("expected error for entry without page id")
	}
}
