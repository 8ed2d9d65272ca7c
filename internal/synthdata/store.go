package synthdata

import (
	"sync"

	"github.com/trialbench/trialbench/internal/models"
)

// Store owns the record cache. Entries are created lazily on first request,
// are immutable once written, and live for the lifetime of the Store. The
// only mutation is the coarse-grained Clear, which empties the whole map.
type Store struct {
	mu      sync.RWMutex
	records map[string]*models.TrialDataRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		records: make(map[string]*models.TrialDataRecord),
	}
}

// Get returns the record for entityID, generating and caching it on first
// request. Repeated calls for the same entity return the identical record.
// An empty entityID is a programming error at the call site.
func (s *Store) Get(entityID, displayName string, recordCount int) *models.TrialDataRecord {
	if entityID == "" {
		panic("synthdata: empty entity id")
	}

	s.mu.RLock()
	rec, ok := s.records[entityID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have generated the record while we waited.
	if rec, ok := s.records[entityID]; ok {
		return rec
	}

	rec = generate(entityID, displayName, recordCount)
	s.records[entityID] = rec
	return rec
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear empties the cache. There is no partial invalidation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*models.TrialDataRecord)
}
