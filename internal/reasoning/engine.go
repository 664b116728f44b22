package reasoning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aegis/internal/llm"
	"aegis/internal/logging"
)

// ExecuteFn is the caller-supplied step that performs the actual domain work
// once the loop has planned and analyzed. Workers use it to build their
// domain prompt and parse candidate artifacts.
type ExecuteFn func(ctx context.Context, plan *Plan, taskContext interface{}, mem *Memory) (interface{}, error)

// Engine runs the six-phase reasoning loop against a language-model
// collaborator. Each Reason call owns a fresh working memory and chain;
// nothing is shared across runs.
type Engine struct {
	client llm.Client
	config Config
}

// NewEngine creates a reasoning engine.
func NewEngine(client llm.Client, config Config) *Engine {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 3
	}
	if config.QualityThreshold <= 0 {
		config.QualityThreshold = 0.7
	}
	return &Engine{client: client, config: config}
}

// Reason drives one goal through planning, analysis, generation, the
// reflection/refinement cycle, and validation. A collaborator failure in any
// phase aborts the whole run; the accumulated chain is discarded and the
// error propagated to the caller, which applies its own fallback policy.
func (e *Engine) Reason(ctx context.Context, goal string, taskContext interface{}, execute ExecuteFn) (*Result, error) {
	start := time.Now()
	mem := NewMemory()
	chain := &Chain{
		ID:   fmt.Sprintf("chain-%s", uuid.New().String()[:8]),
		Goal: goal,
	}

	logging.Reasoning("starting reasoning run %s: %s", chain.ID, goal)

	// Phase 1: Planning
	plan, err := e.plan(ctx, goal, taskContext, chain)
	if err != nil {
		return nil, fmt.Errorf("planning phase: %w", err)
	}
	mem.Store("plan", plan)

	// Phase 2: Analysis
	analysis, err := e.analyze(ctx, goal, taskContext, chain)
	if err != nil {
		return nil, fmt.Errorf("analysis phase: %w", err)
	}
	mem.AddInsights(analysis.KeyInsights)
	mem.AddConcerns(analysis.Concerns)
	mem.Store("analysis", analysis)

	// Phase 3: Generation (chain-of-thought rationale, then the actual task)
	output, err := e.generate(ctx, goal, taskContext, plan, execute, mem, chain)
	if err != nil {
		return nil, fmt.Errorf("generation phase: %w", err)
	}

	// Phase 4/5: Reflection loop, bounded by MaxIterations and gated by
	// QualityThreshold. Breaks immediately once quality is met, even on
	// iteration 1.
	if e.config.EnableReflection {
		for iteration := 0; iteration < e.config.MaxIterations; iteration++ {
			reflection, rerr := e.reflect(ctx, output, goal, taskContext, chain)
			if rerr != nil {
				return nil, fmt.Errorf("reflection phase: %w", rerr)
			}

			if !reflection.NeedsRefinement || reflection.Confidence >= e.config.QualityThreshold {
				logging.ReasoningDebug("%s: quality threshold met (%.2f), stopping iteration", chain.ID, reflection.Confidence)
				break
			}

			// The final iteration reflects but does not refine; the loop
			// stops at the bound, never mid-refinement.
			if !e.config.EnableRefinement || iteration == e.config.MaxIterations-1 {
				break
			}

			logging.ReasoningDebug("%s: refining output (iteration %d)", chain.ID, iteration+1)
			output, rerr = e.refine(ctx, output, reflection, goal, taskContext, chain)
			if rerr != nil {
				return nil, fmt.Errorf("refinement phase: %w", rerr)
			}
		}
	}

	// Phase 6: Validation
	validation, err := e.validate(ctx, output, goal, chain)
	if err != nil {
		return nil, fmt.Errorf("validation phase: %w", err)
	}

	chain.Success = validation.IsValid
	chain.FinalOutput = output
	chain.TotalLatency = time.Since(start)

	logging.Reasoning("%s: complete in %v (%d steps, %d tokens, success=%v)",
		chain.ID, chain.TotalLatency, len(chain.Steps), chain.TotalTokens, chain.Success)

	confidence := validation.FinalConfidence
	if confidence == 0 {
		confidence = 0.8
	}

	return &Result{
		Success:    chain.Success,
		Output:     output,
		Chain:      chain,
		Confidence: confidence,
		Insights:   mem.Insights(),
		Concerns:   mem.Concerns(),
		Metadata: ResultMetadata{
			TotalSteps:   len(chain.Steps),
			TotalTokens:  chain.TotalTokens,
			TotalLatency: chain.TotalLatency,
			Iterations:   chain.StepsInPhase(PhaseRefinement) + 1,
		},
	}, nil
}

// =============================================================================
// PHASES
// =============================================================================

func (e *Engine) plan(ctx context.Context, goal string, taskContext interface{}, chain *Chain) (*Plan, error) {
	resp, err := e.call(ctx, PlanningPrompt(goal, taskContext), e.config.PlanningModel, chain)
	if err != nil {
		return nil, err
	}

	var plan Plan
	llm.DecodeInto(resp.Text, &plan)
	if plan.Confidence == 0 {
		plan.Confidence = 0.8
	}

	thought := plan.Understanding
	if thought == "" {
		thought = "Planning approach"
	}
	e.addStep(chain, Step{
		Phase:      PhasePlanning,
		Input:      map[string]interface{}{"goal": goal},
		Thought:    thought,
		Output:     plan,
		Confidence: plan.Confidence,
	}, resp)

	return &plan, nil
}

func (e *Engine) analyze(ctx context.Context, goal string, taskContext interface{}, chain *Chain) (*Analysis, error) {
	domain := ExtractDomain(goal)
	resp, err := e.call(ctx, AnalysisPrompt(domain, taskContext), e.config.PlanningModel, chain)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	llm.DecodeInto(resp.Text, &analysis)
	if analysis.Confidence == 0 {
		analysis.Confidence = 0.8
	}

	thought := analysis.Reasoning
	if thought == "" {
		thought = "Analyzing context"
	}
	e.addStep(chain, Step{
		Phase:      PhaseAnalysis,
		Input:      taskContext,
		Thought:    thought,
		Output:     analysis,
		Confidence: analysis.Confidence,
		Metadata:   map[string]interface{}{"domain": domain},
	}, resp)

	return &analysis, nil
}

func (e *Engine) generate(ctx context.Context, goal string, taskContext interface{}, plan *Plan, execute ExecuteFn, mem *Memory, chain *Chain) (interface{}, error) {
	resp, err := e.call(ctx, ChainOfThoughtPrompt(goal, taskContext, plan), e.config.ReasoningModel, chain)
	if err != nil {
		return nil, err
	}

	reasoned := llm.DecodeLoose(resp.Text)

	output, err := execute(ctx, plan, taskContext, mem)
	if err != nil {
		return nil, fmt.Errorf("execute callback: %w", err)
	}

	thought, _ := reasoned["reasoning"].(string)
	if thought == "" {
		thought = "Generating output"
	}
	confidence := floatField(reasoned, "confidence", 0.8)

	e.addStep(chain, Step{
		Phase:      PhaseGeneration,
		Input:      map[string]interface{}{"goal": goal},
		Thought:    thought,
		Output:     output,
		Confidence: confidence,
	}, resp)

	return output, nil
}

func (e *Engine) reflect(ctx context.Context, output interface{}, goal string, taskContext interface{}, chain *Chain) (*Reflection, error) {
	resp, err := e.call(ctx, ReflectionPrompt(output, goal, taskContext), e.config.ReflectionModel, chain)
	if err != nil {
		return nil, err
	}

	var reflection Reflection
	llm.DecodeInto(resp.Text, &reflection)
	if reflection.Confidence == 0 {
		reflection.Confidence = 0.8
	}

	thought := reflection.Reasoning
	if thought == "" {
		thought = "Reflecting on quality"
	}
	e.addStep(chain, Step{
		Phase:      PhaseReflection,
		Input:      output,
		Thought:    thought,
		Output:     reflection,
		Confidence: reflection.Confidence,
	}, resp)

	return &reflection, nil
}

func (e *Engine) refine(ctx context.Context, original interface{}, reflection *Reflection, goal string, taskContext interface{}, chain *Chain) (interface{}, error) {
	resp, err := e.call(ctx, RefinementPrompt(original, reflection, goal, taskContext), e.config.ReasoningModel, chain)
	if err != nil {
		return nil, err
	}

	refined := llm.DecodeLoose(resp.Text)

	output := original
	if ro, ok := refined["refinedOutput"]; ok && ro != nil {
		output = ro
	} else if len(refined) > 0 {
		output = refined
	}

	thought, _ := refined["reasoning"].(string)
	if thought == "" {
		thought = "Refining based on critique"
	}

	e.addStep(chain, Step{
		Phase:      PhaseRefinement,
		Input:      map[string]interface{}{"original": original, "reflection": reflection},
		Thought:    thought,
		Output:     output,
		Confidence: floatField(refined, "confidence", 0.85),
	}, resp)

	return output, nil
}

func (e *Engine) validate(ctx context.Context, output interface{}, goal string, chain *Chain) (*Validation, error) {
	requirements := []string{
		"Output is complete and comprehensive",
		"All aspects of the goal are addressed",
		"Quality meets production standards",
		"No critical errors or inconsistencies",
	}

	resp, err := e.call(ctx, ValidationPrompt(output, goal, requirements), e.config.ReflectionModel, chain)
	if err != nil {
		return nil, err
	}

	var validation Validation
	llm.DecodeInto(resp.Text, &validation)
	if validation.FinalConfidence == 0 {
		validation.FinalConfidence = 0.8
	}

	thought := validation.Reasoning
	if thought == "" {
		thought = "Validating output"
	}
	e.addStep(chain, Step{
		Phase:      PhaseValidation,
		Input:      output,
		Thought:    thought,
		Output:     validation,
		Confidence: validation.FinalConfidence,
	}, resp)

	return &validation, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// call invokes the collaborator and accumulates token/latency totals.
func (e *Engine) call(ctx context.Context, prompt, model string, chain *Chain) (*llm.Response, error) {
	resp, err := e.client.CompleteStructured(ctx, llm.Request{
		UserPrompt:  prompt,
		Model:       model,
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
	})
	if err != nil {
		logging.ReasoningError("%s: collaborator call failed: %v", chain.ID, err)
		return nil, err
	}
	chain.TotalTokens += resp.Tokens
	logging.APIDebug("reasoning call: %d tokens, %v", resp.Tokens, resp.Latency)
	return resp, nil
}

// addStep appends a step to the chain, filling in id and timestamp.
func (e *Engine) addStep(chain *Chain, step Step, resp *llm.Response) {
	step.ID = fmt.Sprintf("step-%d", len(chain.Steps)+1)
	step.Timestamp = time.Now()
	if step.Metadata == nil {
		step.Metadata = map[string]interface{}{}
	}
	if resp != nil {
		step.Metadata["tokens"] = resp.Tokens
		step.Metadata["latency"] = resp.Latency.Milliseconds()
	}
	chain.Steps = append(chain.Steps, step)
}

func floatField(m map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := m[key].(float64); ok && v > 0 {
		return v
	}
	return fallback
}
