package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Effort selects how much deliberation a generation call should request
// from the backing provider. Providers without an equivalent control are
// free to ignore it.
type Effort string

const (
	// EffortLow requests minimal deliberation.
	EffortLow Effort = "low"
	// EffortMedium is the default deliberation level.
	EffortMedium Effort = "medium"
	// EffortHigh requests maximum deliberation; used for routing and
	// synthesis decisions.
	EffortHigh Effort = "high"
)

// Request captures a normalized generation input: a role-defining
// instruction, the user instruction and a deliberation setting.
type Request struct {
	Instructions string `json:"instructions"` // role-defining system instruction
	Input        string `json:"input"`        // composed user instruction
	Effort       Effort `json:"effort,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive text generation.
// Generate blocks until the full completion is available or the context is
// done; callers are expected to catch errors and degrade per their own
// contracts rather than propagate them.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by the request input; unmatched inputs yield a
// deterministic echo. A forced error, once set, overrides all responses.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	contains  []containsRule
	err       error
	calls     int
}

type containsRule struct {
	substr   string
	response string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an exact input.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// AddContainsResponse registers a canned completion returned whenever the
// request input contains substr. Exact matches take precedence.
func (m *MockModel) AddContainsResponse(substr, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contains = append(m.contains, containsRule{substr: substr, response: response})
}

// FailWith forces every subsequent Generate call to return err. Pass nil
// to clear.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.responses[req.Input]; ok {
		return resp, nil
	}
	for _, rule := range m.contains {
		if rule.substr != "" && strings.Contains(req.Input, rule.substr) {
			return rule.response, nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", req.Input), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
