package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// Orchestrator drives one generation run end to end: worker selection,
// concurrent gathering, conflict handling, synthesis, coverage, and
// execution ordering.
type Orchestrator struct {
	registry *workers.Registry
}

// New creates an orchestrator over the given worker registry.
func New(registry *workers.Registry) *Orchestrator {
	return &Orchestrator{registry: registry}
}

// Run executes the full pipeline against one context snapshot. Individual
// worker failures are absorbed during gathering and surface only as reduced
// coverage and confidence; Run itself fails only on structural errors.
func (o *Orchestrator) Run(ctx context.Context, ec *workers.Context) (*Result, error) {
	if ec == nil {
		return nil, fmt.Errorf("orchestrator: nil evaluation context")
	}
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryOrchestrator, fmt.Sprintf("run %s", ec.UseCase.ID))

	candidates := o.registry.ForMode(ec.Mode)
	active := SelectActiveWorkers(candidates, ec)
	logging.Orchestrator("selected %d of %d worker(s): %s", len(active), len(candidates), workerIDs(active))

	priorities := make(map[string]int, len(active))
	for _, w := range active {
		priorities[w.ID()] = w.Priority()
	}

	proposals := GatherProposals(ctx, active, ec)

	conflicts := identifyConflicts(proposals, priorities)
	resolved := resolveConflicts(conflicts)

	suites, guardrails := synthesize(proposals, priorities)
	ordered := optimizeExecutionOrder(suites)
	coverage := calculateCoverage(ordered, ec)

	result := &Result{
		Suites:         ordered,
		Guardrails:     guardrails,
		TotalScenarios: countScenarios(ordered),
		Coverage:       coverage,
		Conflicts:      resolved,
		Resolutions:    resolutionStrings(resolved),
		Confidence:     overallConfidence(proposals),
		Metadata: Metadata{
			Workers:     contributingWorkers(proposals),
			Duration:    time.Since(start),
			GeneratedAt: time.Now(),
			Mode:        ec.Mode,
		},
	}

	timer.StopWithInfo()
	logging.Orchestrator("run %s: %d scenarios, %d guardrails, confidence %.2f",
		ec.UseCase.ID, result.TotalScenarios, len(result.Guardrails), result.Confidence)
	return result, nil
}

// BuildEvaluationPlan turns an orchestration result into an executable plan.
// Resource conflicts force sequential execution; otherwise suites may run in
// parallel.
func BuildEvaluationPlan(result *Result, ec *workers.Context) *EvaluationPlan {
	mode := "parallel"
	for _, c := range result.Conflicts {
		if c.Type == ConflictResource {
			mode = "sequential"
			break
		}
	}

	return &EvaluationPlan{
		ID:                fmt.Sprintf("plan_%s", uuid.New().String()[:8]),
		UseCaseID:         ec.UseCase.ID,
		Suites:            result.Suites,
		Guardrails:        result.Guardrails,
		ExecutionMode:     mode,
		ScoringDimensions: []string{"correctness", "safety", "compliance", "robustness"},
		Confidence:        result.Confidence,
		GeneratedAt:       time.Now(),
	}
}

// contributingWorkers lists the ids of workers whose proposals carried
// artifacts. Failed and inactive workers are absent.
func contributingWorkers(proposals []*workers.Proposal) []string {
	var ids []string
	for _, p := range proposals {
		if p.HasArtifacts() {
			ids = append(ids, p.WorkerID)
		}
	}
	return ids
}

func resolutionStrings(conflicts []Conflict) []string {
	out := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.Resolution)
	}
	return out
}

func countScenarios(suites []workers.TestSuite) int {
	n := 0
	for _, s := range suites {
		n += len(s.Scenarios)
	}
	return n
}
