// Package workers implements the specialist worker framework: independently
// pluggable units that each own a domain, decide whether to activate for a
// given context, and produce proposal envelopes of test scenarios or
// guardrails.
package workers

import (
	"strings"
	"time"
)

// Severity levels for guardrails and suite priorities.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// GenerationMode selects which family of workers the orchestrator runs.
type GenerationMode string

const (
	ModeScenarios  GenerationMode = "scenarios"
	ModeGuardrails GenerationMode = "guardrails"
)

// UseCase describes the system under evaluation.
type UseCase struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Audience    string `json:"audience"`    // e.g. "General Public", "Internal"
	Criticality string `json:"criticality"` // e.g. "Mission Critical"
}

// Assessment holds the structured answers gathered about the use case. The
// activation rules and confidence heuristics read from it.
type Assessment struct {
	RequestsPerDay     int      `json:"requestsPerDay"`
	ConcurrentUsers    int      `json:"concurrentUsers"`
	LatencyTargetMS    int      `json:"latencyTargetMs"`
	Frameworks         []string `json:"frameworks"` // regulatory: GDPR, HIPAA, ...
	Risks              []string `json:"risks"`      // e.g. "Ethical", "Operational"
	DataTypes          []string `json:"dataTypes"`  // e.g. "PII", "Financial"
	MonthlyBudget      float64  `json:"monthlyBudget"`
	HumanOversight     bool     `json:"humanOversight"`
	EncryptionAtRest   bool     `json:"encryptionAtRest"`
	AutomatedDecisions bool     `json:"automatedDecisions"`
}

// Rule is a known guardrail rule record. Rules are the coverage targets:
// scenarios reference them by GuardrailID.
type Rule struct {
	ID          string `json:"id"`
	Category    string `json:"category"` // e.g. "bias_mitigation", "cost_control", "agent_behavior"
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// EvaluationRecord summarizes a prior evaluation run of the same use case.
type EvaluationRecord struct {
	ID          string    `json:"id"`
	CompletedAt time.Time `json:"completedAt"`
	Score       float64   `json:"score"`
}

// Context is the read-only snapshot workers evaluate against. It is built by
// the aggregator before orchestration starts and never mutated afterward.
type Context struct {
	UseCase             UseCase            `json:"useCase"`
	Assessment          Assessment         `json:"assessment"`
	Rules               []Rule             `json:"rules"`
	PreviousEvaluations []EvaluationRecord `json:"previousEvaluations"`
	Mode                GenerationMode     `json:"mode"`
}

// TestScenario is one concrete test case targeting a guardrail rule.
type TestScenario struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	GuardrailID     string   `json:"guardrailId"`
	Inputs          []string `json:"inputs"`
	ExpectedOutputs []string `json:"expectedOutputs"`
	Assertions      []string `json:"assertions"`
	Metrics         []string `json:"metrics"`
	Weight          float64  `json:"weight"`
	Tags            []string `json:"tags"`

	// Provenance, filled in during synthesis.
	SourceWorker string `json:"sourceWorker,omitempty"`
	Domain       string `json:"domain,omitempty"`
}

// TestSuite groups scenarios under one theme with a declared priority.
type TestSuite struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"` // domain tag: safety, performance, ...
	Priority    string         `json:"priority"`
	Scenarios   []TestScenario `json:"scenarios"`
	Coverage    string         `json:"coverage,omitempty"`
}

// GuardrailImplementation describes how a guardrail is deployed.
type GuardrailImplementation struct {
	Platforms     []string          `json:"platforms"`
	Configuration map[string]string `json:"configuration"`
	Monitoring    []string          `json:"monitoring"`
}

// Guardrail is a generated protective rule with its implementation spec.
type Guardrail struct {
	ID             string                  `json:"id"`
	Type           string                  `json:"type"` // business, technical, risk
	Severity       string                  `json:"severity"`
	Rule           string                  `json:"rule"`
	Description    string                  `json:"description"`
	Rationale      string                  `json:"rationale"`
	Implementation GuardrailImplementation `json:"implementation"`

	SourceWorker string `json:"sourceWorker,omitempty"`
}

// Proposal is the envelope a worker returns from one invocation. It is
// produced fresh every call and never mutated after return. An inactive
// worker returns a well-formed envelope with zero confidence and a stated
// reason, never nil.
type Proposal struct {
	WorkerID        string      `json:"workerId"`
	WorkerType      string      `json:"workerType"`
	Suites          []TestSuite `json:"suites,omitempty"`
	Guardrails      []Guardrail `json:"guardrails,omitempty"`
	Confidence      float64     `json:"confidence"`
	Reasoning       string      `json:"reasoning"`
	Insights        []string    `json:"insights,omitempty"`
	Concerns        []string    `json:"concerns,omitempty"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// ScenarioCount returns the total number of scenarios across all suites.
func (p *Proposal) ScenarioCount() int {
	n := 0
	for _, s := range p.Suites {
		n += len(s.Scenarios)
	}
	return n
}

// HasArtifacts reports whether the proposal carries any suites or guardrails.
func (p *Proposal) HasArtifacts() bool {
	return len(p.Guardrails) > 0 || p.ScenarioCount() > 0
}

// HasRisk reports whether the assessment lists a risk containing the given
// keyword (case-sensitive substring on the canonical names used by the
// assessment flow).
func (a *Assessment) HasRisk(keyword string) bool {
	for _, r := range a.Risks {
		if containsFold(r, keyword) {
			return true
		}
	}
	return false
}

// HasDataType reports whether the assessment declares a data type containing
// the keyword.
func (a *Assessment) HasDataType(keyword string) bool {
	for _, d := range a.DataTypes {
		if containsFold(d, keyword) {
			return true
		}
	}
	return false
}

// HasFramework reports whether any regulatory framework is declared.
func (a *Assessment) HasFramework() bool {
	return len(a.Frameworks) > 0
}

// RulesInCategory returns the rules matching the given category.
func (c *Context) RulesInCategory(category string) []Rule {
	var out []Rule
	for _, r := range c.Rules {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
