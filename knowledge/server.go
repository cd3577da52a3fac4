package knowledge

import (
	"fmt"
	"net/http"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/internal/httputil"
	"github.com/deskmesh/deskmesh/logging"
)

// healthBody is the readiness payload of the knowledge service.
type healthBody struct {
	Status         string         `json:"status"`
	KnowledgeBases []string       `json:"knowledge_bases"`
	KBSizes        map[string]int `json:"kb_sizes"`
}

// inspectBody describes one collection for the inspection endpoint.
type inspectBody struct {
	Name   string        `json:"kb_name"`
	Size   int           `json:"size"`
	Fields []string      `json:"columns"`
	Sample []core.Record `json:"sample_data"`
}

// HandlerOptions configures the knowledge HTTP surface.
type HandlerOptions struct {
	Logger logging.Logger
	// SampleSize bounds the rows returned by the inspection endpoint.
	SampleSize int
}

// NewHandler exposes a Store over HTTP:
//
//	POST /search/{collection}   body {query, limit} -> {success, results, count}
//	GET  /health                -> service readiness with collection sizes
//	GET  /collections/{collection} -> schema and sample rows
func NewHandler(store *Store, optFns ...func(o *HandlerOptions)) http.Handler {
	opts := HandlerOptions{Logger: logging.NoOpLogger{}, SampleSize: 3}
	for _, fn := range optFns {
		fn(&opts)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /search/{collection}", func(w http.ResponseWriter, r *http.Request) {
		collection := r.PathValue("collection")
		var req core.SearchRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err)
			return
		}
		limit := req.Limit
		if limit == 0 {
			limit = DefaultSearchLimit
		}
		results, err := store.Search(r.Context(), collection, req.Query, limit)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		if results == nil {
			results = []core.Record{}
		}
		httputil.WriteJSON(w, http.StatusOK, core.SearchResponse{
			Success: true,
			Results: results,
			Count:   len(results),
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, healthBody{
			Status:         "healthy",
			KnowledgeBases: store.Collections(),
			KBSizes:        store.Sizes(),
		})
	})

	mux.HandleFunc("GET /collections/{collection}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("collection")
		coll, ok := store.Collection(name)
		if !ok {
			httputil.WriteError(w, http.StatusNotFound, fmt.Errorf("knowledge base %s not found", name))
			return
		}
		sample := coll.Records
		if len(sample) > opts.SampleSize {
			sample = sample[:opts.SampleSize]
		}
		httputil.WriteJSON(w, http.StatusOK, inspectBody{
			Name:   name,
			Size:   coll.Size(),
			Fields: coll.Fields,
			Sample: sample,
		})
	})

	return logRequests(mux, opts.Logger)
}

// logRequests wraps the mux with a minimal access log.
func logRequests(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
