package fake

import (
	"context"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/stretchr/testify/mock"
)

// Store is a fake state store that can be used in unit tests.
type Store struct {
	mock.Mock
}

// Get implements store.Interface.
func (s *Store) Get(_ context.Context, name string) (*models.Record, error) {
	args := s.Called(name)
	if obj, ok := args.Get(0).(*models.Record); ok {
		return obj, args.Error(1)
	}

	return nil, args.Error(1)
}

// Put implements store.Interface.
func (s *Store) Put(_ context.Context, record *models.Record) error {
	args := s.Called(record)

	return args.Error(0)
}

// Delete implements store.Interface.
func (s *Store) Delete(_ context.Context, name string) error {
	args := s.Called(name)

	return args.Error(0)
}

// Close implements store.Interface.
func (s *Store) Close() error {
	args := s.Called()

	return args.Error(0)
}
