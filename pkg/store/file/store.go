package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

// Store persists records as a JSON object keyed by monitor name. Every
// operation reads the whole file; writes replace it atomically.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a *Store backed by the file at path. The file is created on
// the first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Get implements store.Interface.
func (s *Store) Get(_ context.Context, name string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	record, ok := records[name]
	if !ok {
		return nil, models.ErrRecordNotFound
	}

	return &record, nil
}

// Put implements store.Interface.
func (s *Store) Put(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	records[record.Name] = *record

	return s.save(records)
}

// Delete implements store.Interface.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := records[name]; !ok {
		return nil
	}

	delete(records, name)

	return s.save(records)
}

// Close implements store.Interface.
func (s *Store) Close() error {
	return nil
}

func (s *Store) load() (map[string]models.Record, error) {
	records := make(map[string]models.Record)

	buf, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return records, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read state file")
	}

	if len(buf) == 0 {
		return records, nil
	}

	if err := json.Unmarshal(buf, &records); err != nil {
		return nil, errors.Wrapf(err, "failed to parse state file %s", s.path)
	}

	return records, nil
}

func (s *Store) save(records map[string]models.Record) error {
	buf, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary state file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write temporary state file")
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "failed to replace state file %s", s.path)
	}

	return nil
}
