package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const pagesBucket = "pages"

// boltLedger implements Ledger backed by BoltDB.
type boltLedger struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Ledger.
func openBolt(path string) (Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(pagesBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltLedger{db: db}, nil
}

// Close closes the BoltDB ledger.
func (b *boltLedger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record appends one created-page entry. The page id keys the entry, so a
// duplicate import of the same URL yields two records, matching the two
// remote pages it produced.
func (b *boltLedger) Record(entry Entry) error {
	if b == nil || b.db == nil {
		return nil
	}
	if entry.PageID == "" {
		return fmt.Errorf("ledger entry requires a page id")
	}
	if entry.ImportedAt.IsZero() {
		entry.ImportedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(pagesBucket))
		if bucket == nil {
			return fmt.Errorf("pages bucket missing")
		}
		return bucket.Put([]byte(entry.PageID), payload)
	})
}

// Count returns the number of recorded page creations.
func (b *boltLedger) Count() (int, error) {
	if b == nil || b.db == nil {
		return 0, nil
	}

	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(pagesBucket))
		if bucket == nil {
			return fmt.Errorf("pages bucket missing")
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
