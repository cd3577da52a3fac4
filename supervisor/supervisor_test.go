package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
)

// fakeSpecialist is a scriptable core.Specialist: fixed result, optional
// error, optional delay (context-aware) and optional panic.
type fakeSpecialist struct {
	name   string
	result core.SpecialistResult
	err    error
	delay  time.Duration
	panics bool
	calls  atomic.Int32
}

func (f *fakeSpecialist) Name() string { return f.name }

func (f *fakeSpecialist) Process(ctx context.Context, _ string) (core.SpecialistResult, error) {
	f.calls.Add(1)
	if f.panics {
		panic("specialist blew up")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return core.SpecialistResult{}, ctx.Err()
		}
	}
	if f.err != nil {
		return core.SpecialistResult{}, f.err
	}
	return f.result, nil
}

func okSpecialist(name, agent string) *fakeSpecialist {
	return &fakeSpecialist{
		name: name,
		result: core.SpecialistResult{
			Agent:          agent,
			Response:       fmt.Sprintf("%s answer", agent),
			KBResultsCount: 1,
			Confidence:     core.ConfidenceHigh,
		},
	}
}

// panicModel panics on every call; used to exercise the Process boundary.
type panicModel struct{}

func (panicModel) Generate(context.Context, model.Request) (string, error) { panic("model exploded") }
func (panicModel) Info() model.Info                                        { return model.Info{Name: "panic", Provider: "mock"} }

// capturingModel records the last request.
type capturingModel struct {
	last model.Request
	text string
	err  error
}

func (m *capturingModel) Generate(_ context.Context, req model.Request) (string, error) {
	m.last = req
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *capturingModel) Info() model.Info { return model.Info{Name: "capturing", Provider: "mock"} }

func TestClassify_ParsesModelJSON(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: excel and my printer are broken",
		`Here is my decision: {"agents": ["office", "hardware"], "reasoning": "office app plus peripheral", "priority": "office"} Hope it helps.`)
	s := New(m, nil)

	d := s.Classify(context.Background(), "excel and my printer are broken")
	assert.Equal(t, []string{"office", "hardware"}, d.Agents)
	assert.Equal(t, "office", d.Priority)
	assert.Equal(t, "office app plus peripheral", d.Reasoning)
}

func TestClassify_NormalizesPriorityOutsideAgents(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: q", `{"agents": ["hardware"], "reasoning": "r", "priority": "office"}`)
	s := New(m, nil)

	d := s.Classify(context.Background(), "q")
	assert.Equal(t, []string{"hardware"}, d.Agents)
	assert.Equal(t, "hardware", d.Priority)
}

func TestClassify_EmptyAgentsDefaultsToFallbackDomain(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: q", `{"agents": [], "reasoning": "unsure", "priority": ""}`)
	s := New(m, nil)

	d := s.Classify(context.Background(), "q")
	assert.Equal(t, []string{DefaultDomain}, d.Agents)
	assert.Equal(t, DefaultDomain, d.Priority)
}

func TestClassify_KeywordFallbackWhenNoJSON(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: my printer is slow", "I think the hardware team should look at this.")
	s := New(m, nil)

	d := s.Classify(context.Background(), "my printer is slow")
	assert.Equal(t, []string{"hardware"}, d.Agents)
	assert.Equal(t, "hardware", d.Priority)
	assert.Contains(t, d.Reasoning, "printer")
}

func TestClassify_ModelErrorDefaultsToWindows(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.FailWith(errors.New("backend unreachable"))
	s := New(m, nil)

	d := s.Classify(context.Background(), "excel is broken")
	assert.Equal(t, []string{DefaultDomain}, d.Agents)
	assert.Equal(t, DefaultDomain, d.Priority)
	assert.Contains(t, d.Reasoning, "Error in analysis")
}

func TestFallbackClassify(t *testing.T) {
	cases := []struct {
		query    string
		agents   []string
		priority string
	}{
		{"my system won't boot", []string{"windows"}, "windows"},
		{"outlook formatting issues", []string{"office"}, "office"},
		{"printer and monitor are dead", []string{"hardware"}, "hardware"},
		{"windows update broke my keyboard", []string{"windows", "hardware"}, "windows"},
		{"hello there", []string{"windows"}, "windows"},
		{"", []string{"windows"}, "windows"},
	}
	for _, tc := range cases {
		d := fallbackClassify(tc.query)
		assert.Equalf(t, tc.agents, d.Agents, "query %q", tc.query)
		assert.Equalf(t, tc.priority, d.Priority, "query %q", tc.query)
	}
}

func TestFallbackClassify_FlagshipOverride(t *testing.T) {
	// windows matches first, but the flagship keyword forces office to
	// the priority slot.
	d := fallbackClassify("windows update breaks excel")
	assert.Equal(t, []string{"windows", "office"}, d.Agents)
	assert.Equal(t, "office", d.Priority)

	d = fallbackClassify("Excel crashes when opening large files")
	assert.Contains(t, d.Agents, "office")
	assert.Equal(t, "office", d.Priority)
}

func TestExtractJSONObject(t *testing.T) {
	raw, ok := extractJSONObject(`prose {"a": {"b": 1}} trailing {"c": 2}`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, raw)

	raw, ok = extractJSONObject(`{"s": "braces } inside \" string {"}`)
	require.True(t, ok)
	assert.Equal(t, `{"s": "braces } inside \" string {"}`, raw)

	_, ok = extractJSONObject("no json here")
	assert.False(t, ok)

	_, ok = extractJSONObject(`{"unterminated": true`)
	assert.False(t, ok)
}

func TestDispatch_PreservesCandidateOrder(t *testing.T) {
	office := okSpecialist("office", "Office Support")
	office.delay = 50 * time.Millisecond
	hardware := okSpecialist("hardware", "Hardware Support")

	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{office, hardware})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office", "hardware"}})
	require.Len(t, results, 2)
	// hardware finishes first but office stays at index 0.
	assert.Equal(t, "Office Support", results[0].Agent)
	assert.Equal(t, "Hardware Support", results[1].Agent)
}

func TestDispatch_SkipsUnknownNames(t *testing.T) {
	office := okSpecialist("office", "Office Support")
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{office})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"networking", "office", "printing"}})
	require.Len(t, results, 1)
	assert.Equal(t, "Office Support", results[0].Agent)
}

func TestDispatch_DuplicatesInvokedAgain(t *testing.T) {
	office := okSpecialist("office", "Office Support")
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{office})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office", "office"}})
	require.Len(t, results, 2)
	assert.Equal(t, int32(2), office.calls.Load())
}

func TestDispatch_FailureYieldsUnavailablePlaceholder(t *testing.T) {
	broken := &fakeSpecialist{name: "office", err: errors.New("connection refused")}
	hardware := okSpecialist("hardware", "Hardware Support")
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{broken, hardware})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office", "hardware"}})
	require.Len(t, results, 2)
	assert.Equal(t, "office", results[0].Agent)
	assert.Equal(t, "Agent office is currently unavailable.", results[0].Response)
	assert.NotEmpty(t, results[0].Err)
	assert.Equal(t, core.ConfidenceMedium, results[0].Confidence)
	assert.Empty(t, results[1].Err)
}

func TestDispatch_TimeoutDegrades(t *testing.T) {
	slow := &fakeSpecialist{name: "office", delay: time.Second}
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{slow}, func(o *Options) {
		o.DispatchTimeout = 20 * time.Millisecond
	})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office"}})
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Err)
	assert.Equal(t, "Agent office is currently unavailable.", results[0].Response)
}

func TestDispatch_SpecialistPanicContained(t *testing.T) {
	unstable := &fakeSpecialist{name: "office", panics: true}
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{unstable})

	results := s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office"}})
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Err, "panic")
}

func TestDispatch_EmitsStructuredLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelInfo,
		Format: "json",
		Output: &buf,
	})
	broken := &fakeSpecialist{name: "office", err: errors.New("connection refused")}
	s := New(model.NewMockModel("mock", "mock"), []core.Specialist{broken}, func(o *Options) {
		o.Logger = logger
	})

	s.Dispatch(context.Background(), "q", core.RoutingDecision{Agents: []string{"office"}})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Specialist unavailable", entry["msg"])
	assert.Equal(t, "office", entry["agent"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "connection refused", entry["error"])
}

func TestSynthesize_EmptyResultsSkipsGeneration(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	s := New(m, nil)

	got := s.Synthesize(context.Background(), "q", nil)
	assert.Equal(t, emptyResultsApology, got)
	assert.Zero(t, m.Calls())
}

func TestSynthesize_BuildsContextFromResults(t *testing.T) {
	m := &capturingModel{text: "Unified answer."}
	s := New(m, nil)

	results := []core.SpecialistResult{
		{Agent: "Office Support", Response: "Disable add-ins."},
		{Agent: "Hardware Support", Response: ""},
	}
	got := s.Synthesize(context.Background(), "excel crashes", results)

	assert.Equal(t, "Unified answer.", got)
	assert.Equal(t, model.EffortHigh, m.last.Effort)
	assert.Contains(t, m.last.Input, "Original User Query: excel crashes")
	assert.Contains(t, m.last.Input, "Office Support Response: Disable add-ins.")
	assert.Contains(t, m.last.Input, "Hardware Support Response: No response available")
}

func TestSynthesize_GenerationFailure(t *testing.T) {
	m := &capturingModel{err: errors.New("backend down")}
	s := New(m, nil)

	got := s.Synthesize(context.Background(), "q", []core.SpecialistResult{{Agent: "Office Support", Response: "x"}})
	assert.Equal(t, synthesizeApology, got)
}

func TestProcess_EndToEnd(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: excel crashes", `{"agents": ["office"], "reasoning": "office app", "priority": "office"}`)
	m.AddContainsResponse("Original User Query: excel crashes", "Here is a unified answer.")

	office := okSpecialist("office", "Office Support")
	s := New(m, []core.Specialist{office})

	answer := s.Process(context.Background(), "excel crashes")

	assert.NotEmpty(t, answer.RunID)
	assert.Empty(t, answer.Err)
	assert.Equal(t, []string{"office"}, answer.Analysis.Agents)
	require.Len(t, answer.AgentResponses, 1)
	assert.Equal(t, "Office Support", answer.AgentResponses[0].Agent)
	assert.Equal(t, []string{"Office Support"}, answer.AgentsConsulted)
	assert.Equal(t, "Here is a unified answer.", answer.FinalResponse)
}

func TestProcess_NoRegisteredSpecialists(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Query: anything", `{"agents": ["office"], "reasoning": "r", "priority": "office"}`)
	s := New(m, nil)

	answer := s.Process(context.Background(), "anything")
	assert.Empty(t, answer.AgentsConsulted)
	assert.Equal(t, emptyResultsApology, answer.FinalResponse)
	assert.NotEmpty(t, answer.FinalResponse)
}

func TestProcess_NeverPanics(t *testing.T) {
	s := New(panicModel{}, nil)

	answer := s.Process(context.Background(), "anything")
	assert.Equal(t, processApology, answer.FinalResponse)
	assert.Contains(t, answer.Err, "model exploded")
	assert.NotEmpty(t, answer.RunID)
}

func TestProcess_AlwaysReturnsNonEmptySynthesis(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	office := okSpecialist("office", "Office Support")
	windows := okSpecialist("windows", "Windows Support")
	hardware := okSpecialist("hardware", "Hardware Support")
	s := New(m, []core.Specialist{office, windows, hardware})

	for _, query := range []string{"", "excel crashes", "printer jammed", "total nonsense", "windows update stuck"} {
		answer := s.Process(context.Background(), query)
		assert.NotEmptyf(t, answer.FinalResponse, "query %q", query)
	}
}
