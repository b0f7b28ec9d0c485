package archive

import (
	"context"
	"sync"

	"wardcore/internal/census"
)

// MemoryArchive keeps entries in process memory. Intended for tests.
type MemoryArchive struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

// NewMemory returns an empty in-memory archive.
func NewMemory() *MemoryArchive {
	return &MemoryArchive{nextID: 1}
}

func (a *MemoryArchive) Save(_ context.Context, report census.Report) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.entries = append(a.entries, Entry{ID: id, TakenAt: report.TakenAt, Report: report})
	return id, nil
}

func (a *MemoryArchive) Latest(_ context.Context) (Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	return a.entries[len(a.entries)-1], nil
}

func (a *MemoryArchive) List(_ context.Context, limit int) ([]Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := len(a.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

func (a *MemoryArchive) Close() error { return nil }
