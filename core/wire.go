package core

// Wire DTOs shared by the HTTP servers and clients. Field names are part
// of the service contract and must not change.

// SearchRequest is the body of POST /search/{collection}.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse is the success body of POST /search/{collection}.
type SearchResponse struct {
	Success bool     `json:"success"`
	Results []Record `json:"results"`
	Count   int      `json:"count"`
}

// ProcessRequest is the body of POST /process on specialist and
// supervisor services.
type ProcessRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the body of any non-2xx service response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
