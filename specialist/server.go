package specialist

import (
	"net/http"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/internal/httputil"
)

// agentHealth is the readiness payload of a specialist service.
type agentHealth struct {
	Status string `json:"status"`
	Agent  string `json:"agent"`
}

// NewHandler exposes a responder over HTTP:
//
//	POST /process  body {query} -> SpecialistResult
//	GET  /health   -> {status, agent}
func NewHandler(r *Responder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", func(w http.ResponseWriter, req *http.Request) {
		var pr core.ProcessRequest
		if err := httputil.DecodeJSON(req, &pr); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err)
			return
		}
		result, _ := r.Process(req.Context(), pr.Query)
		httputil.WriteJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, agentHealth{Status: "healthy", Agent: r.Profile().Name})
	})

	return mux
}
