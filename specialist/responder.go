// Package specialist implements the domain responders: retrieve supporting
// knowledge, compose a prompt, call the generation capability and shape a
// structured result. A responder is stateless across calls and never
// returns an error to its caller; every failure mode degrades into the
// returned result.
package specialist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
)

// generateApology is substituted for the generated text when the model
// call fails.
const generateApology = "I apologize, but I encountered an error processing your request. Please contact the IT Support Service Hotline for assistance."

// noKBContext replaces the knowledge context block when retrieval found
// nothing.
const noKBContext = "No specific knowledge base entries found."

// Options tune a responder.
type Options struct {
	// KnowledgeLimit is the retrieval limit per query.
	KnowledgeLimit int
	// ContextRecords caps how many retrieved records are embedded in the
	// prompt.
	ContextRecords int
	// RetrieveTimeout bounds the knowledge service call.
	RetrieveTimeout time.Duration
	// Effort is the deliberation setting for generation.
	Effort model.Effort
	Logger logging.Logger
}

// Responder is one specialist. It satisfies core.Specialist.
type Responder struct {
	profile Profile
	kb      core.KnowledgeSearcher
	model   model.Model
	opts    Options
}

// New builds a responder for the given profile.
func New(profile Profile, kb core.KnowledgeSearcher, m model.Model, optFns ...func(o *Options)) *Responder {
	opts := Options{
		KnowledgeLimit:  5,
		ContextRecords:  3,
		RetrieveTimeout: 10 * time.Second,
		Effort:          model.EffortMedium,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Responder{profile: profile, kb: kb, model: m, opts: opts}
}

// Name returns the routing key.
func (r *Responder) Name() string { return r.profile.Key }

// Profile returns the responder's domain profile.
func (r *Responder) Profile() Profile { return r.profile }

// Process implements core.Specialist: RETRIEVE, COMPOSE, GENERATE, SHAPE.
// Retrieval failures are swallowed as zero results; generation failures are
// substituted with a fixed apology and marked on the result. The returned
// error is always nil.
func (r *Responder) Process(ctx context.Context, query string) (core.SpecialistResult, error) {
	records := r.retrieve(ctx, query)
	prompt := r.compose(query, records)

	start := time.Now()
	text, err := r.model.Generate(ctx, model.Request{
		Instructions: r.profile.SystemPrompt,
		Input:        prompt,
		Effort:       r.opts.Effort,
	})
	r.logModelCall(time.Since(start), err)
	result := core.SpecialistResult{
		Agent:          r.profile.Name,
		KBResultsCount: len(records),
		Confidence:     core.ConfidenceFor(len(records)),
	}
	if err != nil {
		result.Response = generateApology
		result.Err = err.Error()
		return result, nil
	}
	result.Response = text
	return result, nil
}

// modelCallLogger is the richer logging surface used when the configured
// logger provides it (DeskmeshLogger does).
type modelCallLogger interface {
	LogModelCall(model string, dur time.Duration, success bool, err error)
}

func (r *Responder) logModelCall(dur time.Duration, err error) {
	if ml, ok := r.opts.Logger.(modelCallLogger); ok {
		ml.LogModelCall(r.model.Info().Name, dur, err == nil, err)
		return
	}
	if err != nil {
		r.opts.Logger.Error("Generation failed", "agent", r.profile.Key, "error", err)
	}
}

// retrieve searches the specialist's collection, degrading any failure to
// zero results.
func (r *Responder) retrieve(ctx context.Context, query string) []core.Record {
	rctx, cancel := context.WithTimeout(ctx, r.opts.RetrieveTimeout)
	defer cancel()

	records, err := r.kb.Search(rctx, r.profile.Collection, query, r.opts.KnowledgeLimit)
	if err != nil {
		r.opts.Logger.Warn("Knowledge retrieval failed", "agent", r.profile.Key, "error", err)
		return nil
	}
	r.opts.Logger.Info("Knowledge retrieval completed", "agent", r.profile.Key, "hits", len(records))
	return records
}

// compose builds the user instruction embedding up to ContextRecords
// retrieved records' key fields.
func (r *Responder) compose(query string, records []core.Record) string {
	kbContext := noKBContext
	if len(records) > 0 {
		n := r.opts.ContextRecords
		if len(records) < n {
			n = len(records)
		}
		lines := make([]string, 0, n)
		for _, rec := range records[:n] {
			lines = append(lines, r.contextLine(rec))
		}
		kbContext = strings.Join(lines, "\n")
	}
	return fmt.Sprintf("User Query: %s\n\nKnowledge Base Context:\n%s\n\nPlease provide a helpful response for this %s issue.",
		query, kbContext, r.profile.Topic)
}

// contextLine renders one record as "KB Entry: <fields...> - Solution: <solution>".
func (r *Responder) contextLine(rec core.Record) string {
	parts := make([]string, 0, len(r.profile.ContextFields))
	for _, field := range r.profile.ContextFields {
		parts = append(parts, rec.Field(field))
	}
	return fmt.Sprintf("KB Entry: %s - Solution: %s", strings.Join(parts, " - "), rec.Field("solution"))
}
