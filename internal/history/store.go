// Package history keeps recent scan results in memory.
package history

import (
	"sync"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

const defaultCapacity = 50

// Store is a bounded in-memory ring of scan results, newest first. There is
// deliberately no persistence behind it.
type Store struct {
	mu      sync.RWMutex
	results []domain.ScanResult
	cap     int
}

// NewStore creates a store holding at most capacity results.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{cap: capacity}
}

// Add records a scan result, evicting the oldest when full.
func (s *Store) Add(result domain.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append([]domain.ScanResult{result}, s.results...)
	if len(s.results) > s.cap {
		s.results = s.results[:s.cap]
	}
}

// Recent returns up to limit results, newest first. limit <= 0 returns all.
func (s *Store) Recent(limit int) []domain.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.results) {
		limit = len(s.results)
	}
	out := make([]domain.ScanResult, limit)
	copy(out, s.results[:limit])
	return out
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
