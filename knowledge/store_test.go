package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/logging"
)

func testStore() *Store {
	return NewStore(func(o *StoreOptions) {
		o.Dir = "testdata"
		o.Files = map[string]string{
			"office":   "office_kb.csv",
			"windows":  "windows_kb.csv",
			"hardware": "hardware_kb.csv", // intentionally missing on disk
		}
	})
}

func TestNewStore_LoadsCollections(t *testing.T) {
	s := testStore()

	// hardware has no source file and must simply be absent.
	assert.Equal(t, []string{"office", "windows"}, s.Collections())
	assert.Equal(t, map[string]int{"office": 4, "windows": 3}, s.Sizes())

	office, ok := s.Collection("office")
	require.True(t, ok)
	assert.Equal(t, []string{"application", "issue", "solution", "category"}, office.Fields)
	assert.Equal(t, "Excel", office.Records[1].Field("application"))
}

func TestNewStore_SkipsMalformedRows(t *testing.T) {
	s := NewStore(func(o *StoreOptions) {
		o.Dir = "testdata"
		o.Files = map[string]string{"hardware": "malformed_kb.csv"}
	})

	coll, ok := s.Collection("hardware")
	require.True(t, ok)
	// The short row is skipped; its neighbours load.
	require.Equal(t, 2, coll.Size())
	assert.Equal(t, "Printer", coll.Records[0].Field("component"))
	assert.Equal(t, "RAM", coll.Records[1].Field("component"))
}

func TestStore_Search(t *testing.T) {
	s := testStore()

	results, err := s.Search(context.Background(), "office", "Excel crashes when opening large files", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Excel crashes when opening large files", results[0].Field("issue"))
}

func TestStore_SearchUnknownCollection(t *testing.T) {
	s := testStore()

	results, err := s.Search(context.Background(), "nonexistent", "anything", 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_SearchMissingCollection(t *testing.T) {
	s := testStore()

	// hardware failed to load; searching it degrades to empty, not error.
	results, err := s.Search(context.Background(), "hardware", "printer", 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_SearchCancelledContext(t *testing.T) {
	s := testStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "office", "excel", 5)
	assert.Error(t, err)
}

func TestStore_SearchEmitsStructuredLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelInfo,
		Format: "json",
		Output: &buf,
	})
	s := NewStore(func(o *StoreOptions) {
		o.Dir = "testdata"
		o.Files = map[string]string{"office": "office_kb.csv"}
		o.Logger = logger
	})
	buf.Reset()

	_, err := s.Search(context.Background(), "office", "Excel crashes when opening large files", 5)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Knowledge search completed", entry["msg"])
	assert.Equal(t, "office", entry["collection"])
	assert.Equal(t, "exact", entry["stage"])
	assert.Equal(t, float64(1), entry["hits"])
}
