// Package supervisor implements the routing supervisor: classify a query
// into candidate specialists, dispatch each with a bounded timeout, and
// merge their answers into one synthesized response. Process is the
// outermost pipeline boundary and always returns a structured answer,
// never an error or panic.
package supervisor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
)

// DefaultDomain receives queries no other domain claims.
const DefaultDomain = "windows"

const (
	// emptyResultsApology is returned when no specialist produced a
	// result; no generation call is made in that case.
	emptyResultsApology = "I apologize, but I was unable to process your request. Please contact the IT Support Service Hotline for assistance."
	// synthesizeApology is returned when the synthesis generation call
	// fails.
	synthesizeApology = "I apologize, but I encountered an error processing the responses. Please contact the IT Support Service Hotline for assistance."
	// processApology is the text of the minimal answer produced when the
	// pipeline fails unexpectedly.
	processApology = "I apologize, but I encountered an error. Please contact the IT Support Service Hotline for assistance."
)

const classifyInstructions = `Analyze the following IT support query and determine which specialized agents should handle it.

Available agents:
- windows: Windows 11 operating system issues
- office: Microsoft Office applications and Office 365
- hardware: Computer hardware and peripheral devices

Return a JSON response with:
- agents: list of agent names that should handle this query
- reasoning: explanation of why these agents were selected
- priority: primary agent if multiple agents are needed`

const synthesizeInstructions = `Synthesize a comprehensive response based on the inputs from specialized IT support agents. Create a unified, helpful response that addresses the user's query. If the agents couldn't resolve the issue, recommend contacting the IT Support Service Hotline.`

// Options tune a Supervisor.
type Options struct {
	// Name is the identity reported by the supervisor service.
	Name string
	// DispatchTimeout bounds each specialist consultation independently.
	DispatchTimeout time.Duration
	Logger          logging.Logger
}

// Supervisor routes queries to registered specialists and merges their
// answers.
type Supervisor struct {
	model       model.Model
	specialists map[string]core.Specialist
	opts        Options
}

// New creates a Supervisor over the given generation model and
// specialists. Specialists are addressed by their Name().
func New(m model.Model, specialists []core.Specialist, optFns ...func(o *Options)) *Supervisor {
	opts := Options{
		Name:            "Support Supervisor",
		DispatchTimeout: 30 * time.Second,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	byName := make(map[string]core.Specialist, len(specialists))
	for _, sp := range specialists {
		byName[sp.Name()] = sp
	}
	return &Supervisor{model: m, specialists: byName, opts: opts}
}

// Name returns the supervisor's reported identity.
func (s *Supervisor) Name() string { return s.opts.Name }

// Classify determines which specialists should see the query. The model is
// asked first (high deliberation); if its output yields no parseable JSON
// object the deterministic keyword classifier takes over, and if the model
// call itself fails the decision falls back to the default domain alone.
func (s *Supervisor) Classify(ctx context.Context, query string) core.RoutingDecision {
	text, err := s.model.Generate(ctx, model.Request{
		Instructions: classifyInstructions,
		Input:        "Query: " + query,
		Effort:       model.EffortHigh,
	})
	if err != nil {
		s.opts.Logger.Error("Classification call failed", "error", err)
		return core.RoutingDecision{
			Agents:    []string{DefaultDomain},
			Reasoning: "Error in analysis, defaulting to Windows agent",
			Priority:  DefaultDomain,
		}
	}

	if decision, ok := parseDecision(text); ok {
		return normalize(decision)
	}
	s.opts.Logger.Warn("No JSON decision in classification output, using keyword fallback")
	return fallbackClassify(query)
}

// normalize enforces the RoutingDecision invariants: agents non-empty
// (defaulting to the fallback domain) and priority a member of agents.
func normalize(d core.RoutingDecision) core.RoutingDecision {
	if len(d.Agents) == 0 {
		d.Agents = []string{DefaultDomain}
	}
	member := false
	for _, a := range d.Agents {
		if a == d.Priority {
			member = true
			break
		}
	}
	if !member {
		d.Priority = d.Agents[0]
	}
	return d
}

// Dispatch consults every candidate specialist concurrently. The returned
// sequence follows the candidate order in decision.Agents, not completion
// order. Unknown names are skipped silently; duplicates are invoked again.
// A failed consultation yields an unavailable placeholder result instead
// of omitting the specialist.
func (s *Supervisor) Dispatch(ctx context.Context, query string, decision core.RoutingDecision) []core.SpecialistResult {
	type slot struct {
		name string
		sp   core.Specialist
	}
	var slots []slot
	for _, name := range decision.Agents {
		if sp, ok := s.specialists[name]; ok {
			slots = append(slots, slot{name: name, sp: sp})
		}
	}

	results := make([]core.SpecialistResult, len(slots))
	var wg sync.WaitGroup
	for i, sl := range slots {
		wg.Add(1)
		go func(i int, sl slot) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = s.unavailable(sl.name, fmt.Errorf("panic: %v", r))
				}
			}()

			cctx, cancel := context.WithTimeout(ctx, s.opts.DispatchTimeout)
			defer cancel()

			start := time.Now()
			result, err := sl.sp.Process(cctx, query)
			s.logDispatch(sl.name, time.Since(start), err)
			if err != nil {
				results[i] = s.unavailable(sl.name, err)
				return
			}
			results[i] = result
		}(i, sl)
	}
	wg.Wait()

	return results
}

// dispatchLogger is the richer logging surface used when the configured
// logger provides it (DeskmeshLogger does).
type dispatchLogger interface {
	LogDispatch(agent string, dur time.Duration, success bool, err error)
}

func (s *Supervisor) logDispatch(agent string, dur time.Duration, err error) {
	if dl, ok := s.opts.Logger.(dispatchLogger); ok {
		dl.LogDispatch(agent, dur, err == nil, err)
		return
	}
	if err != nil {
		s.opts.Logger.Warn("Specialist unavailable", "agent", agent, "duration", dur, "error", err)
		return
	}
	s.opts.Logger.Info("Specialist consulted", "agent", agent, "duration", dur)
}

// unavailable shapes the placeholder result for a failed consultation.
func (s *Supervisor) unavailable(name string, err error) core.SpecialistResult {
	return core.SpecialistResult{
		Agent:      name,
		Response:   fmt.Sprintf("Agent %s is currently unavailable.", name),
		Confidence: core.ConfidenceMedium,
		Err:        err.Error(),
	}
}

// Synthesize merges specialist results into one answer. An empty result
// set returns the fixed escalation apology without a generation call; a
// failed generation call returns a distinct fixed apology.
func (s *Supervisor) Synthesize(ctx context.Context, query string, results []core.SpecialistResult) string {
	if len(results) == 0 {
		return emptyResultsApology
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		response := r.Response
		if response == "" {
			response = "No response available"
		}
		lines = append(lines, fmt.Sprintf("%s Response: %s", r.Agent, response))
	}

	input := fmt.Sprintf("Original User Query: %s\n\nAgent Responses:\n%s\n\nPlease provide a synthesized response that best addresses the user's needs.",
		query, strings.Join(lines, "\n\n"))

	text, err := s.model.Generate(ctx, model.Request{
		Instructions: synthesizeInstructions,
		Input:        input,
		Effort:       model.EffortHigh,
	})
	if err != nil {
		s.opts.Logger.Error("Synthesis call failed", "error", err)
		return synthesizeApology
	}
	return text
}

// Process runs the full pipeline: classify, dispatch, synthesize. It
// always returns a structured FinalAnswer; any unexpected failure is
// converted into a minimal answer carrying an error marker.
func (s *Supervisor) Process(ctx context.Context, query string) (answer core.FinalAnswer) {
	runID := uuid.NewString()
	logger := s.opts.Logger

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Pipeline failure", "run_id", runID, "panic", r)
			answer = core.FinalAnswer{
				RunID:         runID,
				FinalResponse: processApology,
				Err:           fmt.Sprintf("%v", r),
			}
		}
	}()

	decision := s.Classify(ctx, query)
	logger.Info("Query classified", "run_id", runID, "agents", decision.Agents, "priority", decision.Priority)

	results := s.Dispatch(ctx, query, decision)
	final := s.Synthesize(ctx, query, results)

	consulted := make([]string, len(results))
	for i, r := range results {
		consulted[i] = r.Agent
	}
	if results == nil {
		results = []core.SpecialistResult{}
	}

	return core.FinalAnswer{
		RunID:           runID,
		Analysis:        decision,
		AgentResponses:  results,
		FinalResponse:   final,
		AgentsConsulted: consulted,
	}
}
