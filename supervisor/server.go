package supervisor

import (
	"net/http"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/internal/httputil"
)

type supervisorHealth struct {
	Status string `json:"status"`
	Agent  string `json:"agent"`
}

// NewHandler exposes a Supervisor over HTTP:
//
//	POST /process  body {query} -> FinalAnswer
//	GET  /health   -> {status, agent}
func NewHandler(s *Supervisor) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		var pr core.ProcessRequest
		if err := httputil.DecodeJSON(r, &pr); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Process(r.Context(), pr.Query))
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, supervisorHealth{Status: "healthy", Agent: s.Name()})
	})

	return mux
}
