// Package knowledge implements the knowledge service: named read-only
// record collections loaded once at startup from CSV files, a lexical
// search over them, and the HTTP surface (server and client) other services
// talk to.
package knowledge

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/search"
)

// DefaultSearchLimit applies when a search request does not specify a
// limit.
const DefaultSearchLimit = 5

// Collection is a named, ordered, read-only sequence of records sharing a
// field schema.
type Collection struct {
	Name    string
	Fields  []string
	Records []core.Record
}

// Size returns the number of records in the collection.
func (c *Collection) Size() int { return len(c.Records) }

// DefaultFiles maps the built-in collection names to their CSV sources.
func DefaultFiles() map[string]string {
	return map[string]string{
		"windows":  "windows_kb.csv",
		"office":   "office_kb.csv",
		"hardware": "hardware_kb.csv",
	}
}

// StoreOptions configures collection loading.
type StoreOptions struct {
	// Dir is the directory holding the CSV sources.
	Dir string
	// Files maps collection names to CSV filenames within Dir.
	Files map[string]string
	// Logger receives load warnings and search records.
	Logger logging.Logger
}

// Store owns all collections. Loading happens exactly once during
// construction; afterwards the store is immutable and safe for concurrent
// searches without locking. A collection whose source file is missing or
// unreadable is simply absent: searching it yields empty results, never an
// error.
type Store struct {
	collections map[string]*Collection
	logger      logging.Logger
}

// NewStore loads every configured collection and returns the store. Load
// problems degrade per collection (missing file) or per row (malformed
// row); NewStore itself never fails.
func NewStore(optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{
		Dir:    "kb",
		Files:  DefaultFiles(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{collections: make(map[string]*Collection), logger: opts.Logger}

	names := make([]string, 0, len(opts.Files))
	for name := range opts.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(opts.Dir, opts.Files[name])
		coll, err := loadCollection(name, path, s.logger)
		if err != nil {
			s.logger.Warn("Knowledge base file not loaded", "collection", name, "path", path, "error", err)
			continue
		}
		s.collections[name] = coll
		s.logger.Info("Loaded knowledge base", "collection", name, "entries", coll.Size())
	}
	s.logger.Info("Knowledge bases loaded", "collections", s.Collections())

	return s
}

// loadCollection reads one CSV source. The first row is the field schema;
// every following row becomes a record. Rows whose field count does not
// match the schema are skipped with a warning instead of aborting the load.
func loadCollection(name, path string, logger logging.Logger) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, errors.New("missing header row")
	}
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = strings.TrimSpace(h)
	}

	coll := &Collection{Name: name, Fields: fields}
	for row := 1; ; row++ {
		values, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Skipping malformed knowledge row", "collection", name, "row", row, "error", err)
			continue
		}
		if len(values) != len(fields) {
			logger.Warn("Skipping malformed knowledge row", "collection", name, "row", row, "error", "field count mismatch")
			continue
		}
		rec := make(core.Record, len(fields))
		for i, field := range fields {
			rec[field] = values[i]
		}
		coll.Records = append(coll.Records, rec)
	}
	return coll, nil
}

// Search implements core.KnowledgeSearcher. An unknown collection returns
// an empty result, not an error.
func (s *Store) Search(ctx context.Context, collection, query string, limit int) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coll, ok := s.collections[collection]
	if !ok {
		s.logger.Warn("Knowledge base not found", "collection", collection)
		return nil, nil
	}
	start := time.Now()
	results, stage := search.Ranked(coll.Records, query, limit)
	if sl, ok := s.logger.(searchLogger); ok {
		sl.LogSearch(collection, string(stage), len(results), time.Since(start))
	} else {
		s.logger.Info("Knowledge search completed", "collection", collection, "stage", string(stage), "hits", len(results))
	}
	return results, nil
}

// searchLogger is the richer logging surface used when the configured
// logger provides it (DeskmeshLogger does).
type searchLogger interface {
	LogSearch(collection, stage string, hits int, dur time.Duration)
}

// Collection returns the named collection, if loaded.
func (s *Store) Collection(name string) (*Collection, bool) {
	coll, ok := s.collections[name]
	return coll, ok
}

// Collections lists the loaded collection names in sorted order.
func (s *Store) Collections() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes reports the record count per loaded collection.
func (s *Store) Sizes() map[string]int {
	sizes := make(map[string]int, len(s.collections))
	for name, coll := range s.collections {
		sizes[name] = coll.Size()
	}
	return sizes
}
