package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/bonial-oss/change-monitor/pkg/store/file"
	"github.com/bonial-oss/change-monitor/pkg/store/memory"
	"github.com/bonial-oss/change-monitor/pkg/store/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "memory", url: "memory://"},
		{name: "file", url: "file:///tmp/state.json"},
		{name: "sqlite", url: "sqlite:///tmp/state.db"},
		{name: "sqlite in memory", url: "sqlite::memory:"},
		{name: "libsql", url: "libsql://db.example.org?authToken=secret"},
		{name: "dynamodb", url: "dynamodb://my-table"},
		{name: "scheme is case insensitive", url: "DynamoDB://my-table"},
		{name: "unsupported", url: "redis://localhost:6379", expected: `unsupported store "redis"`},
		{name: "invalid url", url: "::", expected: `parse "::": missing protocol scheme`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Supported(test.url)
			if test.expected != "" {
				require.Error(t, err)
				assert.Equal(t, test.expected, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name     string
		url      string
		validate func(*testing.T, Interface)
	}{
		{
			name: "memory",
			url:  "memory://",
			validate: func(t *testing.T, s Interface) {
				assert.IsType(t, &memory.Store{}, s)
			},
		},
		{
			name: "file",
			url:  "file://" + filepath.Join(dir, "state.json"),
			validate: func(t *testing.T, s Interface) {
				assert.IsType(t, &file.Store{}, s)
			},
		},
		{
			name: "sqlite",
			url:  "sqlite://" + filepath.Join(dir, "state.db"),
			validate: func(t *testing.T, s Interface) {
				assert.IsType(t, &sqldb.Store{}, s)
			},
		},
		{
			name: "sqlite in memory",
			url:  "sqlite::memory:",
			validate: func(t *testing.T, s Interface) {
				assert.IsType(t, &sqldb.Store{}, s)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := Open(ctx, test.url)
			require.NoError(t, err)
			defer s.Close()

			test.validate(t, s)
			testStoreContract(t, s)
		})
	}

	_, err := Open(ctx, "redis://localhost")
	require.Error(t, err)
}

func TestFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	url := "file://" + filepath.Join(t.TempDir(), "state.json")

	s, err := Open(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &models.Record{Name: "site-a", Value: "Hello World"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	record, err := s.Get(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, &models.Record{Name: "site-a", Value: "Hello World"}, record)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &models.Record{Name: "site-a", Value: "Hello World"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	record, err := s.Get(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", record.Value)
}

func testStoreContract(t *testing.T, s Interface) {
	ctx := context.Background()

	_, err := s.Get(ctx, "site-a")
	require.Equal(t, models.ErrRecordNotFound, err)

	require.NoError(t, s.Put(ctx, &models.Record{Name: "site-a", Value: ""}))

	record, err := s.Get(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, &models.Record{Name: "site-a", Value: ""}, record)

	require.NoError(t, s.Put(ctx, &models.Record{Name: "site-a", Value: "Hello World"}))
	require.NoError(t, s.Put(ctx, &models.Record{Name: "site-b", Value: "other"}))

	record, err = s.Get(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", record.Value)

	require.NoError(t, s.Delete(ctx, "site-a"))
	require.NoError(t, s.Delete(ctx, "site-a"))

	_, err = s.Get(ctx, "site-a")
	require.Equal(t, models.ErrRecordNotFound, err)

	record, err = s.Get(ctx, "site-b")
	require.NoError(t, err)
	assert.Equal(t, "other", record.Value)
}
