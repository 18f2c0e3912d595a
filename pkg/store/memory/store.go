package memory

import (
	"context"
	"sync"

	"github.com/bonial-oss/change-monitor/pkg/models"
)

// Store is a thread-safe in-memory record store.
type Store struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// New creates a new empty *Store.
func New() *Store {
	return &Store{
		records: make(map[string]models.Record),
	}
}

// Get implements store.Interface.
func (s *Store) Get(_ context.Context, name string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[name]
	if !ok {
		return nil, models.ErrRecordNotFound
	}

	return &record, nil
}

// Put implements store.Interface.
func (s *Store) Put(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Name] = *record

	return nil
}

// Delete implements store.Interface.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, name)

	return nil
}

// Close implements store.Interface.
func (s *Store) Close() error {
	return nil
}
