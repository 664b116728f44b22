// Package orchestrator coordinates the specialist workers: selection,
// concurrent gathering, conflict detection and resolution, synthesis with
// fingerprint deduplication, coverage accounting, and execution ordering.
package orchestrator

import (
	"time"

	"aegis/internal/workers"
)

// Conflict types.
const (
	ConflictDuplicate     = "duplicate"
	ConflictContradiction = "contradiction"
	ConflictOverlap       = "overlap"
	ConflictResource      = "resource"
)

// Conflict is a detected incompatibility between proposed artifacts. It
// lives only for the orchestration run that produced it.
type Conflict struct {
	Type              string   `json:"type"`
	Severity          string   `json:"severity"`
	AffectedArtifacts []string `json:"affectedArtifacts"`
	Description       string   `json:"description"`
	Resolution        string   `json:"resolution,omitempty"`
}

// Coverage summarizes how well the synthesized artifacts address the known
// rule targets.
type Coverage struct {
	Overall  float64        `json:"overall"` // percent, always within [0,100]
	ByDomain map[string]int `json:"byDomain"`
	Gaps     []string       `json:"gaps"`
}

// Metadata carries run accounting for a Result.
type Metadata struct {
	Workers     []string               `json:"workers"` // contributing worker ids
	Duration    time.Duration          `json:"duration"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Mode        workers.GenerationMode `json:"mode"`
}

// Result is the terminal output of one orchestration run. Immutable once
// returned.
type Result struct {
	Suites         []workers.TestSuite `json:"suites"`
	Guardrails     []workers.Guardrail `json:"guardrails"`
	TotalScenarios int                 `json:"totalScenarios"`
	Coverage       Coverage            `json:"coverage"`
	Conflicts      []Conflict          `json:"conflicts"`
	Resolutions    []string            `json:"resolutions"`
	Confidence     float64             `json:"confidence"`
	Metadata       Metadata            `json:"metadata"`
}

// EvaluationPlan is the executable form of a Result.
type EvaluationPlan struct {
	ID                string              `json:"id"`
	UseCaseID         string              `json:"useCaseId"`
	Suites            []workers.TestSuite `json:"suites"`
	Guardrails        []workers.Guardrail `json:"guardrails"`
	ExecutionMode     string              `json:"executionMode"` // parallel or sequential
	ScoringDimensions []string            `json:"scoringDimensions"`
	Confidence        float64             `json:"confidence"`
	GeneratedAt       time.Time           `json:"generatedAt"`
}
