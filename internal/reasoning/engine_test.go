package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"aegis/internal/llm"
)

// mockClient dispatches structured calls to a per-test function so each test
// can script the collaborator phase by phase.
type mockClient struct {
	completeStructuredFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
	calls                  []string
}

func (m *mockClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (m *mockClient) CompleteStructured(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.calls = append(m.calls, phaseOf(req.UserPrompt))
	return m.completeStructuredFunc(ctx, req)
}

// phaseOf classifies a prompt by its leading instruction text.
func phaseOf(prompt string) string {
	switch {
	case strings.HasPrefix(prompt, "You are planning"):
		return "plan"
	case strings.Contains(prompt, "analyst. Analyze"):
		return "analyze"
	case strings.HasPrefix(prompt, "Work through this goal"):
		return "generate"
	case strings.HasPrefix(prompt, "Critique the following"):
		return "reflect"
	case strings.HasPrefix(prompt, "Improve the output"):
		return "refine"
	case strings.HasPrefix(prompt, "Validate the following"):
		return "validate"
	default:
		return "unknown"
	}
}

func textResponse(text string) *llm.Response {
	return &llm.Response{Text: text, Tokens: 10, Latency: 5 * time.Millisecond}
}

// scriptedClient answers each phase from a canned payload, with reflections
// served in sequence so tests can drive the refinement loop.
func scriptedClient(t *testing.T, reflections []string) *mockClient {
	t.Helper()
	reflectCall := 0
	m := &mockClient{}
	m.completeStructuredFunc = func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		switch phaseOf(req.UserPrompt) {
		case "plan":
			return textResponse(`{"understanding": "generate safety scenarios", "approach": "cover failure modes", "confidence": 0.85}`), nil
		case "analyze":
			return textResponse(`{"keyInsights": ["handles PII"], "concerns": ["no rate limiting"], "reasoning": "context review", "confidence": 0.8}`), nil
		case "generate":
			return textResponse(`{"reasoning": "walked through failure modes", "confidence": 0.8}`), nil
		case "reflect":
			if reflectCall >= len(reflections) {
				t.Fatalf("unexpected reflection call %d", reflectCall+1)
			}
			resp := reflections[reflectCall]
			reflectCall++
			return textResponse(resp), nil
		case "refine":
			return textResponse(`{"refinedOutput": {"scenarios": 4}, "reasoning": "added edge cases", "confidence": 0.85}`), nil
		case "validate":
			return textResponse(`{"isValid": true, "qualityScore": 0.9, "finalConfidence": 0.88}`), nil
		default:
			t.Fatalf("unrecognized prompt: %.60s", req.UserPrompt)
			return nil, nil
		}
	}
	return m
}

func passThroughExecute(output interface{}) ExecuteFn {
	return func(ctx context.Context, plan *Plan, taskContext interface{}, mem *Memory) (interface{}, error) {
		return output, nil
	}
}

func TestReasonHappyPathNoRefinement(t *testing.T) {
	client := scriptedClient(t, []string{
		`{"needsRefinement": false, "confidence": 0.9}`,
	})
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "generate safety scenarios", map[string]string{"domain": "safety"}, passThroughExecute("artifact"))
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}

	if !result.Success {
		t.Fatal("expected successful run")
	}
	if result.Output != "artifact" {
		t.Fatalf("output = %v, want artifact", result.Output)
	}
	// plan, analyze, generate, reflect, validate: one step each.
	if got := len(result.Chain.Steps); got != 5 {
		t.Fatalf("chain has %d steps, want 5", got)
	}
	if n := result.Chain.StepsInPhase(PhaseRefinement); n != 0 {
		t.Fatalf("expected no refinement steps, got %d", n)
	}
	if result.Metadata.Iterations != 1 {
		t.Fatalf("iterations = %d, want 1", result.Metadata.Iterations)
	}
	if result.Confidence != 0.88 {
		t.Fatalf("confidence = %v, want 0.88 from validation", result.Confidence)
	}
	if result.Chain.TotalTokens != 50 {
		t.Fatalf("total tokens = %d, want 50 (5 calls x 10)", result.Chain.TotalTokens)
	}
	if result.Chain.TotalLatency <= 0 {
		t.Fatal("expected total latency to be recorded")
	}
	if len(result.Insights) != 1 || result.Insights[0] != "handles PII" {
		t.Fatalf("insights = %v, want [handles PII]", result.Insights)
	}
	if len(result.Concerns) != 1 || result.Concerns[0] != "no rate limiting" {
		t.Fatalf("concerns = %v, want [no rate limiting]", result.Concerns)
	}
}

func TestReasonRefinementLoop(t *testing.T) {
	client := scriptedClient(t, []string{
		`{"needsRefinement": true, "confidence": 0.4, "weaknesses": ["too few scenarios"]}`,
		`{"needsRefinement": false, "confidence": 0.85}`,
	})
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "generate safety scenarios", nil, passThroughExecute("artifact"))
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}

	if n := result.Chain.StepsInPhase(PhaseReflection); n != 2 {
		t.Fatalf("expected 2 reflection steps, got %d", n)
	}
	if n := result.Chain.StepsInPhase(PhaseRefinement); n != 1 {
		t.Fatalf("expected 1 refinement step, got %d", n)
	}
	if result.Metadata.Iterations != 2 {
		t.Fatalf("iterations = %d, want 2", result.Metadata.Iterations)
	}

	// Refinement replaced the original output.
	refined, ok := result.Output.(map[string]interface{})
	if !ok {
		t.Fatalf("output = %T, want refined map", result.Output)
	}
	if refined["scenarios"] != float64(4) {
		t.Fatalf("refined output = %v", refined)
	}
}

func TestReasonQualityGateStopsRefinement(t *testing.T) {
	// Confidence at the threshold stops the loop even though the critique
	// asked for refinement.
	client := scriptedClient(t, []string{
		`{"needsRefinement": true, "confidence": 0.75}`,
	})
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "goal", nil, passThroughExecute("out"))
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}
	if n := result.Chain.StepsInPhase(PhaseRefinement); n != 0 {
		t.Fatalf("expected quality gate to skip refinement, got %d refinement steps", n)
	}
}

func TestReasonMaxIterationsBound(t *testing.T) {
	// Reflection never becomes satisfied; the loop must stop at MaxIterations.
	client := scriptedClient(t, []string{
		`{"needsRefinement": true, "confidence": 0.3}`,
		`{"needsRefinement": true, "confidence": 0.3}`,
		`{"needsRefinement": true, "confidence": 0.3}`,
	})
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "goal", nil, passThroughExecute("out"))
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}
	if n := result.Chain.StepsInPhase(PhaseReflection); n != 3 {
		t.Fatalf("expected 3 reflections, got %d", n)
	}
	// The loop stops at the iteration bound, never mid-refinement.
	if n := result.Chain.StepsInPhase(PhaseRefinement); n != 2 {
		t.Fatalf("expected 2 refinements, got %d", n)
	}
}

func TestReasonReflectionDisabled(t *testing.T) {
	client := scriptedClient(t, nil)
	cfg := DefaultConfig()
	cfg.EnableReflection = false
	engine := NewEngine(client, cfg)

	result, err := engine.Reason(context.Background(), "goal", nil, passThroughExecute("out"))
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}
	if n := result.Chain.StepsInPhase(PhaseReflection); n != 0 {
		t.Fatalf("expected no reflection steps when disabled, got %d", n)
	}
	if got := len(result.Chain.Steps); got != 4 {
		t.Fatalf("chain has %d steps, want 4", got)
	}
}

func TestReasonCollaboratorFailureAborts(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	client := &mockClient{}
	client.completeStructuredFunc = func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		if phaseOf(req.UserPrompt) == "analyze" {
			return nil, wantErr
		}
		return textResponse(`{"confidence": 0.8}`), nil
	}
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "goal", nil, passThroughExecute("out"))
	if result != nil {
		t.Fatalf("expected nil result on failure, got %+v", result)
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
	if !strings.Contains(err.Error(), "analysis phase") {
		t.Fatalf("error does not name the failing phase: %v", err)
	}
}

func TestReasonExecuteFailureAborts(t *testing.T) {
	client := scriptedClient(t, nil)
	engine := NewEngine(client, DefaultConfig())

	wantErr := errors.New("artifact parse failed")
	_, err := engine.Reason(context.Background(), "goal", nil,
		func(ctx context.Context, plan *Plan, taskContext interface{}, mem *Memory) (interface{}, error) {
			return nil, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
	if !strings.Contains(err.Error(), "generation phase") {
		t.Fatalf("error does not name the failing phase: %v", err)
	}
}

func TestReasonMalformedPayloadsDegrade(t *testing.T) {
	// Garbage from every phase still yields a completed run with default
	// confidences; lenient decoding never fails the loop.
	client := &mockClient{}
	client.completeStructuredFunc = func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return textResponse("not json at all"), nil
	}
	engine := NewEngine(client, DefaultConfig())

	result, err := engine.Reason(context.Background(), "goal", nil, passThroughExecute("out"))
	if err != nil {
		t.Fatalf("Reason failed on malformed payloads: %v", err)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want default 0.8", result.Confidence)
	}
	// Zero-valued reflection has NeedsRefinement=false, so one reflection
	// and no refinement.
	if n := result.Chain.StepsInPhase(PhaseReflection); n != 1 {
		t.Fatalf("expected 1 reflection, got %d", n)
	}
	for _, step := range result.Chain.Steps {
		if step.Confidence == 0 {
			t.Fatalf("step %s has zero confidence, defaults not applied", step.ID)
		}
	}
}

func TestReasonExecuteReceivesPlanAndMemory(t *testing.T) {
	client := scriptedClient(t, []string{
		`{"needsRefinement": false, "confidence": 0.9}`,
	})
	engine := NewEngine(client, DefaultConfig())

	var seenApproach string
	var seenInsights []string
	_, err := engine.Reason(context.Background(), "goal", nil,
		func(ctx context.Context, plan *Plan, taskContext interface{}, mem *Memory) (interface{}, error) {
			seenApproach = plan.Approach
			seenInsights = mem.Insights()
			return "out", nil
		})
	if err != nil {
		t.Fatalf("Reason failed: %v", err)
	}
	if seenApproach != "cover failure modes" {
		t.Fatalf("execute saw plan approach %q", seenApproach)
	}
	if len(seenInsights) != 1 || seenInsights[0] != "handles PII" {
		t.Fatalf("execute saw insights %v, want analysis insights", seenInsights)
	}
}
