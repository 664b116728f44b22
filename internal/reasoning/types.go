// Package reasoning implements the multi-phase reasoning loop used by
// specialist workers: plan, analyze, generate, reflect, refine, validate.
// Each run owns a working memory and an append-only chain of steps.
package reasoning

import "time"

// Phase identifies a stage of the reasoning loop.
type Phase string

const (
	PhasePlanning   Phase = "planning"
	PhaseAnalysis   Phase = "analysis"
	PhaseGeneration Phase = "generation"
	PhaseReflection Phase = "reflection"
	PhaseRefinement Phase = "refinement"
	PhaseValidation Phase = "validation"
)

// Step is one entry in a reasoning chain. Steps are append-only.
type Step struct {
	ID         string                 `json:"id"`
	Phase      Phase                  `json:"phase"`
	Timestamp  time.Time              `json:"timestamp"`
	Input      interface{}            `json:"input"`
	Thought    string                 `json:"thought"`
	Decision   string                 `json:"decision,omitempty"`
	Output     interface{}            `json:"output"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Chain is the ordered record of one reasoning run.
type Chain struct {
	ID           string        `json:"id"`
	Goal         string        `json:"goal"`
	Steps        []Step        `json:"steps"`
	TotalTokens  int           `json:"total_tokens"`
	TotalLatency time.Duration `json:"total_latency"`
	Success      bool          `json:"success"`
	FinalOutput  interface{}   `json:"final_output"`
}

// StepsInPhase returns how many steps in the chain belong to the given phase.
func (c *Chain) StepsInPhase(phase Phase) int {
	n := 0
	for _, s := range c.Steps {
		if s.Phase == phase {
			n++
		}
	}
	return n
}

// Decision records a choice made during a run, with its justification.
type Decision struct {
	Decision     string   `json:"decision"`
	Reasoning    string   `json:"reasoning"`
	Alternatives []string `json:"alternatives"`
	Confidence   float64  `json:"confidence"`
	Evidence     []string `json:"evidence"`
}

// Plan is the structured output of the planning phase.
type Plan struct {
	Understanding       string   `json:"understanding"`
	KeyFactors          []string `json:"keyFactors"`
	CriticalPriorities  []string `json:"criticalPriorities"`
	Approach            string   `json:"approach"`
	PotentialChallenges []string `json:"potentialChallenges"`
	Confidence          float64  `json:"confidence"`
}

// Analysis is the structured output of the analysis phase.
type Analysis struct {
	KeyInsights          []string `json:"keyInsights"`
	Concerns             []string `json:"concerns"`
	Requirements         []string `json:"requirements"`
	EdgeCases            []string `json:"edgeCases"`
	DomainConsiderations []string `json:"domainConsiderations"`
	Reasoning            string   `json:"reasoning"`
	Confidence           float64  `json:"confidence"`
}

// Reflection is the critique produced by the reflection phase. It drives the
// refinement decision: the loop stops as soon as NeedsRefinement is false or
// Confidence reaches the configured quality threshold.
type Reflection struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Gaps             []string `json:"gaps"`
	Improvements     []string `json:"improvements"`
	NeedsRefinement  bool     `json:"needsRefinement"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning,omitempty"`
	OverallQuality   string   `json:"overallQuality,omitempty"`
}

// Validation is the final quality check.
type Validation struct {
	IsValid         bool     `json:"isValid"`
	QualityScore    float64  `json:"qualityScore"`
	FinalConfidence float64  `json:"finalConfidence"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Reasoning       string   `json:"reasoning,omitempty"`
}

// Result is the terminal output of one Engine.Reason call.
type Result struct {
	Success    bool
	Output     interface{}
	Chain      *Chain
	Confidence float64
	Insights   []string
	Concerns   []string
	Metadata   ResultMetadata
}

// ResultMetadata carries run accounting.
type ResultMetadata struct {
	TotalSteps   int
	TotalTokens  int
	TotalLatency time.Duration
	Iterations   int
}

// Config controls the reasoning loop.
type Config struct {
	// MaxIterations bounds the reflection/refinement cycle (default: 3).
	MaxIterations int

	// QualityThreshold is the reflection confidence at which refinement
	// stops early (default: 0.7).
	QualityThreshold float64

	// Models per phase. Planning/reflection use a cheaper model than the
	// main generation work.
	PlanningModel   string
	ReasoningModel  string
	ReflectionModel string

	Temperature float32
	MaxTokens   int32

	EnableReflection bool
	EnableRefinement bool
}

// DefaultConfig returns sensible defaults for the reasoning loop.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    3,
		QualityThreshold: 0.7,
		PlanningModel:    "gemini-2.5-flash",
		ReasoningModel:   "gemini-2.5-pro",
		ReflectionModel:  "gemini-2.5-flash",
		Temperature:      0.7,
		MaxTokens:        4000,
		EnableReflection: true,
		EnableRefinement: true,
	}
}
