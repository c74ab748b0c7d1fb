package storage

import (
	"context"
	"sort"
	"sync"

	"minorityScope/internal/model"
)

// MemoryStore keeps every entity in process. Used by the index command and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[model.Key]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[model.Key]Record)}
}

func (s *MemoryStore) Get(_ context.Context, key model.Key) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *MemoryStore) List(_ context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range s.records {
		if q.Matches(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	s.mu.RUnlock()

	SortRecords(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Commit(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.Key] = cloneRecord(rec)
	}
	return nil
}

// Snapshot returns every record ordered by key.
func (s *MemoryStore) Snapshot() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	s.mu.RUnlock()
	SortRecords(out)
	return out
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SortRecords orders records by kind, chain and id.
func SortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Key, records[j].Key
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		return a.ID < b.ID
	})
}

func cloneRecord(rec Record) Record {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	return Record{Key: rec.Key, Data: data, Indexes: copyIndexes(rec.Indexes)}
}
