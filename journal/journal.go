// Package journal persists leak reports in a Pebble store so they survive
// process exit for post-mortem inspection.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/guileen/leakdetect/leak"
)

// ErrClosed is returned for operations on a closed journal.
var ErrClosed = errors.New("journal is closed")

// journalCacheSize is the Pebble block cache size; the journal is tiny, keep
// it small.
const journalCacheSize = 8 << 20

// Journal is an append-mostly store of leak reports, ordered by report time.
type Journal struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) a journal at path.
func Open(path string) (*Journal, error) {
	cache := pebble.NewCache(journalCacheSize)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: cache})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

// reportKey orders entries by report time, with the report id breaking ties.
func reportKey(r leak.Report) []byte {
	key := make([]byte, 8+len(r.ID))
	binary.BigEndian.PutUint64(key, uint64(r.Time.UnixNano()))
	copy(key[8:], r.ID[:])
	return key
}

// Append persists one report. Safe for concurrent use.
func (j *Journal) Append(r leak.Report) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}

	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.ID, err)
	}
	if err := j.db.Set(reportKey(r), val, pebble.Sync); err != nil {
		return fmt.Errorf("append report %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to n reports, newest first.
func (j *Journal) Recent(n int) ([]leak.Report, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}

	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	defer iter.Close()

	reports := make([]leak.Report, 0, n)
	for ok := iter.Last(); ok && len(reports) < n; ok = iter.Prev() {
		var r leak.Report
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, fmt.Errorf("decode report at %x: %w", iter.Key(), err)
		}
		reports = append(reports, r)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return reports, nil
}

// Close closes the journal. Further operations return ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}
