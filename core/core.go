// Package core defines the shared domain types and service contracts used
// across deskmesh: knowledge records, routing decisions, specialist results
// and the final synthesized answer. All other packages depend on core; core
// depends on nothing but the standard library.
package core

import "context"

// Record is a single knowledge entry: a mapping of field name to string
// value. Field names vary per collection (e.g. issue/solution/category for
// windows, application/issue/solution for office). Records are immutable
// once loaded and identified by their row position within a collection.
type Record map[string]string

// Field returns the value of the named field, or "" if absent.
func (r Record) Field(name string) string { return r[name] }

// Confidence is the coarse tier reflecting whether supporting knowledge
// was found for an answer.
type Confidence string

const (
	// ConfidenceHigh indicates at least one supporting record was found.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium indicates the answer was generated without
	// supporting records.
	ConfidenceMedium Confidence = "medium"
)

// ConfidenceFor maps a supporting-record count to its tier. The invariant
// is strict: high iff count > 0.
func ConfidenceFor(count int) Confidence {
	if count > 0 {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// RoutingDecision is the outcome of the supervisor's classification phase.
// Agents is non-empty and ordered by priority; Priority names the primary
// agent and is always a member of Agents.
type RoutingDecision struct {
	Agents    []string `json:"agents"`
	Reasoning string   `json:"reasoning"`
	Priority  string   `json:"priority"`
}

// SpecialistResult is the shaped outcome of one specialist consultation.
// Err is a marker, not a failure signal: a result carrying Err was still
// produced and is still merged.
type SpecialistResult struct {
	Agent          string     `json:"agent"`
	Response       string     `json:"response"`
	KBResultsCount int        `json:"kb_results_count"`
	Confidence     Confidence `json:"confidence"`
	Err            string     `json:"error,omitempty"`
}

// FinalAnswer is the supervisor's complete response to one query.
type FinalAnswer struct {
	RunID           string             `json:"run_id,omitempty"`
	Analysis        RoutingDecision    `json:"analysis"`
	AgentResponses  []SpecialistResult `json:"agent_responses"`
	FinalResponse   string             `json:"final_response"`
	AgentsConsulted []string           `json:"agents_consulted"`
	Err             string             `json:"error,omitempty"`
}

// KnowledgeSearcher searches a named collection. Implementations include
// the in-process knowledge store and its HTTP client; both return an empty
// slice (not an error) for unknown collections. Transport-level failures
// surface as errors and are degraded to zero results by callers.
type KnowledgeSearcher interface {
	Search(ctx context.Context, collection, query string, limit int) ([]Record, error)
}

// Specialist is a domain responder. Process never fails for in-process
// implementations; remote implementations return an error only on
// transport failure, which dispatchers convert into an unavailable result.
type Specialist interface {
	Name() string
	Process(ctx context.Context, query string) (SpecialistResult, error)
}
