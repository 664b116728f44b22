package workers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"aegis/internal/llm"
	"aegis/internal/logging"
	"aegis/internal/reasoning"
)

// Strategy selects the generation path for one GenerateProposals call.
type Strategy string

const (
	// StrategyReasoning drives the full plan/reflect/validate loop. On loop
	// failure the worker falls back to StrategyDirect automatically.
	StrategyReasoning Strategy = "reasoning"
	// StrategyDirect makes a single collaborator call with no reflection.
	// On failure it degrades to the worker's static fallback artifacts.
	StrategyDirect Strategy = "direct"
)

// Specialist is the contract every worker satisfies. ShouldActivate must be a
// pure function of the context; GenerateProposals must return a well-formed
// envelope even when the worker elects not to activate.
type Specialist interface {
	ID() string
	Type() string
	Priority() int
	ShouldActivate(ec *Context) bool
	GenerateProposals(ctx context.Context, ec *Context) (*Proposal, error)
}

// Worker is the shared machinery behind every specialist. Domain behavior is
// supplied through the hook functions; the generation pipeline, candidate
// filtering, and fallback chain are common.
type Worker struct {
	id             string
	domain         string
	priority       int
	strategy       Strategy
	inactiveReason string

	client llm.Client
	engine *reasoning.Engine

	activate       func(ec *Context) bool
	goal           func(ec *Context) string
	prompt         func(ec *Context) string
	fallbackSuites func(ec *Context) []TestSuite
	fallbackGuards func(ec *Context) []Guardrail
	insightsFn     func(ec *Context) []string
	concernsFn     func(ec *Context) []string
	recommendFn    func(ec *Context) []string
	confidenceFn   func(ec *Context) float64
}

func (w *Worker) ID() string    { return w.id }
func (w *Worker) Type() string  { return w.domain }
func (w *Worker) Priority() int { return w.priority }

// ShouldActivate evaluates the worker's activation rule against the context.
func (w *Worker) ShouldActivate(ec *Context) bool {
	if w.activate == nil {
		return true
	}
	return w.activate(ec)
}

// GenerateProposals runs the worker's generation pipeline. The returned
// envelope is always well formed; the error is reserved for programming
// failures, not collaborator unavailability (that triggers fallbacks).
func (w *Worker) GenerateProposals(ctx context.Context, ec *Context) (*Proposal, error) {
	if !w.ShouldActivate(ec) {
		return &Proposal{
			WorkerID:   w.id,
			WorkerType: w.domain,
			Confidence: 0,
			Reasoning:  fmt.Sprintf("not applicable: %s", w.inactiveReason),
		}, nil
	}

	suites, guardrails, confidence, rationale := w.generate(ctx, ec)

	proposal := &Proposal{
		WorkerID:        w.id,
		WorkerType:      w.domain,
		Suites:          suites,
		Guardrails:      guardrails,
		Confidence:      confidence,
		Reasoning:       rationale,
		Insights:        w.runHook(w.insightsFn, ec),
		Concerns:        w.runHook(w.concernsFn, ec),
		Recommendations: w.runHook(w.recommendFn, ec),
	}
	logging.Workers("%s: proposal with %d scenarios, %d guardrails (confidence %.2f)",
		w.id, proposal.ScenarioCount(), len(proposal.Guardrails), proposal.Confidence)
	return proposal, nil
}

// generate walks the strategy chain: reasoning, then direct, then static
// fallback artifacts. It never fails; the worst case is the fallback set.
func (w *Worker) generate(ctx context.Context, ec *Context) (suites []TestSuite, guardrails []Guardrail, confidence float64, rationale string) {
	if w.strategy == StrategyReasoning && w.engine != nil {
		result, err := w.engine.Reason(ctx, w.goal(ec), ec, w.executeStep(ec))
		if err == nil {
			suites, guardrails = w.artifactsFrom(result.Output, ec)
			if len(suites) > 0 || len(guardrails) > 0 {
				return suites, guardrails, result.Confidence, "reasoning-driven generation"
			}
		} else {
			logging.WorkersWarn("%s: reasoning path failed, falling back to direct: %v", w.id, err)
		}
	}

	payload, err := w.completeDirect(ctx, ec)
	if err == nil {
		suites, guardrails = w.artifactsFrom(payload, ec)
		if len(suites) > 0 || len(guardrails) > 0 {
			return suites, guardrails, w.heuristicConfidence(ec), "direct generation"
		}
	} else {
		logging.WorkersWarn("%s: direct path failed, using fallback artifacts: %v", w.id, err)
	}

	if w.fallbackSuites != nil {
		suites = w.fallbackSuites(ec)
	}
	if w.fallbackGuards != nil {
		guardrails = w.fallbackGuards(ec)
	}
	// Fixed artifacts are trustworthy but narrow; confidence reflects that.
	return suites, guardrails, 0.5, "deterministic fallback artifacts"
}

// executeStep is the callback the reasoning loop invokes during its
// generation phase: one more collaborator call with plan- and
// insight-augmented framing, parsed into candidate artifacts.
func (w *Worker) executeStep(ec *Context) reasoning.ExecuteFn {
	return func(ctx context.Context, plan *reasoning.Plan, _ interface{}, mem *reasoning.Memory) (interface{}, error) {
		prompt := w.prompt(ec)
		if summary := mem.Summary(); summary != "" {
			prompt = fmt.Sprintf("%s\n\nAccumulated findings:\n%s", prompt, summary)
		}
		if plan != nil && plan.Approach != "" {
			prompt = fmt.Sprintf("%s\n\nApproach: %s", prompt, plan.Approach)
		}

		resp, err := w.client.CompleteStructured(ctx, llm.Request{UserPrompt: prompt})
		if err != nil {
			return nil, fmt.Errorf("%s generation call: %w", w.domain, err)
		}

		var payload artifactPayload
		llm.DecodeInto(resp.Text, &payload)
		return &payload, nil
	}
}

func (w *Worker) completeDirect(ctx context.Context, ec *Context) (*artifactPayload, error) {
	resp, err := w.client.CompleteStructured(ctx, llm.Request{UserPrompt: w.prompt(ec)})
	if err != nil {
		return nil, err
	}
	var payload artifactPayload
	llm.DecodeInto(resp.Text, &payload)
	return &payload, nil
}

// artifactPayload is the shape workers ask the collaborator to produce.
// Scenarios may arrive bare or already grouped into suites.
type artifactPayload struct {
	Suites     []TestSuite    `json:"suites"`
	Scenarios  []TestScenario `json:"scenarios"`
	Guardrails []Guardrail    `json:"guardrails"`
}

// artifactsFrom normalizes a generation output into filtered suites and
// guardrails. Candidates missing required fields are dropped.
func (w *Worker) artifactsFrom(output interface{}, ec *Context) ([]TestSuite, []Guardrail) {
	payload, ok := output.(*artifactPayload)
	if !ok || payload == nil {
		return nil, nil
	}

	suites := make([]TestSuite, 0, len(payload.Suites)+1)
	for _, suite := range payload.Suites {
		suite.Scenarios = w.filterScenarios(suite.Scenarios)
		if len(suite.Scenarios) == 0 {
			continue
		}
		if suite.ID == "" {
			suite.ID = fmt.Sprintf("suite_%s", uuid.New().String()[:8])
		}
		if suite.Type == "" {
			suite.Type = w.domain
		}
		if suite.Priority == "" {
			suite.Priority = SeverityMedium
		}
		suites = append(suites, suite)
	}

	// Bare scenarios get wrapped into one suite for the worker's domain.
	if loose := w.filterScenarios(payload.Scenarios); len(loose) > 0 {
		suites = append(suites, TestSuite{
			ID:        fmt.Sprintf("suite_%s", uuid.New().String()[:8]),
			Name:      fmt.Sprintf("%s scenarios for %s", w.domain, ec.UseCase.Name),
			Type:      w.domain,
			Priority:  SeverityMedium,
			Scenarios: loose,
		})
	}

	return suites, w.filterGuardrails(payload.Guardrails)
}

// filterScenarios drops candidates missing a name or description and fills
// in generated ids.
func (w *Worker) filterScenarios(candidates []TestScenario) []TestScenario {
	kept := make([]TestScenario, 0, len(candidates))
	for _, s := range candidates {
		if s.Name == "" || s.Description == "" {
			logging.WorkersDebug("%s: dropping scenario candidate missing required fields", w.id)
			continue
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("scn_%s", uuid.New().String()[:8])
		}
		if s.Weight == 0 {
			s.Weight = 1
		}
		kept = append(kept, s)
	}
	return kept
}

// filterGuardrails drops candidates missing a rule or description.
func (w *Worker) filterGuardrails(candidates []Guardrail) []Guardrail {
	kept := make([]Guardrail, 0, len(candidates))
	for _, g := range candidates {
		if g.Rule == "" || g.Description == "" {
			logging.WorkersDebug("%s: dropping guardrail candidate missing required fields", w.id)
			continue
		}
		if g.ID == "" {
			g.ID = fmt.Sprintf("gr_%s", uuid.New().String()[:8])
		}
		if g.Type == "" {
			g.Type = w.domain
		}
		if g.Severity == "" {
			g.Severity = SeverityMedium
		}
		kept = append(kept, g)
	}
	return kept
}

func (w *Worker) heuristicConfidence(ec *Context) float64 {
	if w.confidenceFn == nil {
		return 0.5
	}
	return clamp01(w.confidenceFn(ec))
}

func (w *Worker) runHook(fn func(ec *Context) []string, ec *Context) []string {
	if fn == nil {
		return nil
	}
	return fn(ec)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
