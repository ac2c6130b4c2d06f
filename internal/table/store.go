package table

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"findingboard/internal/domain"
)

// Store loads the table from its source on first use and serves the same
// records for the rest of the process. Concurrent first callers share one
// load; a failed load is retried on the next call.
type Store struct {
	source Source

	mu      sync.Mutex
	records atomic.Pointer[[]domain.Record]
}

func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Records returns the cached table. The returned slice is shared and must
// not be modified.
func (s *Store) Records(ctx context.Context) ([]domain.Record, error) {
	if p := s.records.Load(); p != nil {
		return *p, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.records.Load(); p != nil {
		return *p, nil
	}

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.source.Describe(), err)
	}
	s.records.Store(&records)
	log.Printf("Loaded %d finding rows from %s", len(records), s.source.Describe())
	return records, nil
}

// Loaded reports whether the table has been loaded.
func (s *Store) Loaded() bool {
	return s.records.Load() != nil
}
