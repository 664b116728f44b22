package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

type mockClient struct {
	completeStructuredFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (m *mockClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (m *mockClient) CompleteStructured(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return m.completeStructuredFunc(ctx, req)
}

func failingClient() *mockClient {
	return &mockClient{
		completeStructuredFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, errors.New("collaborator unavailable")
		},
	}
}

// scenarioClient returns the given scenario payload for generation prompts
// and benign structured text for reasoning-phase prompts.
func scenarioClient(payload string) *mockClient {
	return &mockClient{
		completeStructuredFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			if strings.Contains(req.UserPrompt, "Respond with JSON") {
				return &llm.Response{Text: payload, Tokens: 5}, nil
			}
			return &llm.Response{Text: `{"needsRefinement": false, "confidence": 0.9, "isValid": true, "finalConfidence": 0.85}`, Tokens: 5}, nil
		},
	}
}

func testContext() *Context {
	return &Context{
		UseCase: UseCase{
			ID:          "uc-1",
			Name:        "Support Assistant",
			Description: "Customer support chat assistant",
			Industry:    "Retail",
			Audience:    "General Public",
		},
		Assessment: Assessment{
			RequestsPerDay:  500,
			ConcurrentUsers: 10,
			DataTypes:       []string{"PII"},
		},
		Rules: []Rule{
			{ID: "rule-1", Category: "agent_behavior", Severity: SeverityHigh, Description: "stay in scope"},
		},
	}
}

func TestActivationRules(t *testing.T) {
	client := failingClient()
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())

	tests := []struct {
		name   string
		worker *Worker
		mutate func(ec *Context)
		want   bool
	}{
		{"safety always on", NewSafetyWorker(client, engine), nil, true},
		{"robustness always on", NewRobustnessWorker(client, engine), nil, true},
		{"performance off at low load", NewPerformanceWorker(client, engine), nil, false},
		{"performance on at high volume", NewPerformanceWorker(client, engine),
			func(ec *Context) { ec.Assessment.RequestsPerDay = 5000 }, true},
		{"performance on at high concurrency", NewPerformanceWorker(client, engine),
			func(ec *Context) { ec.Assessment.ConcurrentUsers = 100 }, true},
		{"performance on at tight latency", NewPerformanceWorker(client, engine),
			func(ec *Context) { ec.Assessment.LatencyTargetMS = 200 }, true},
		{"compliance off without frameworks", NewComplianceWorker(client, engine), nil, false},
		{"compliance on with framework", NewComplianceWorker(client, engine),
			func(ec *Context) { ec.Assessment.Frameworks = []string{"GDPR"} }, true},
		{"ethics off by default", NewEthicsWorker(client, engine), nil, false},
		{"ethics on with ethical risk", NewEthicsWorker(client, engine),
			func(ec *Context) { ec.Assessment.Risks = []string{"Ethical concerns"} }, true},
		{"ethics on with bias rule", NewEthicsWorker(client, engine),
			func(ec *Context) { ec.Rules = append(ec.Rules, Rule{ID: "rule-2", Category: "bias_mitigation"}) }, true},
		{"security on for public audience", NewSecurityWorker(client, engine), nil, true},
		{"security off for internal low-stakes", NewSecurityWorker(client, engine),
			func(ec *Context) { ec.UseCase.Audience = "Internal"; ec.Rules = nil }, false},
		{"security on for mission critical", NewSecurityWorker(client, engine),
			func(ec *Context) {
				ec.UseCase.Audience = "Internal"
				ec.UseCase.Criticality = "Mission Critical"
				ec.Rules = nil
			}, true},
		{"cost off without budget", NewCostWorker(client, engine), nil, false},
		{"cost on with budget", NewCostWorker(client, engine),
			func(ec *Context) { ec.Assessment.MonthlyBudget = 2000 }, true},
		{"cost on with cost rule", NewCostWorker(client, engine),
			func(ec *Context) { ec.Rules = append(ec.Rules, Rule{ID: "rule-3", Category: "cost_control"}) }, true},
		{"drift off without history", NewDriftWorker(client, engine), nil, false},
		{"drift on with history", NewDriftWorker(client, engine),
			func(ec *Context) {
				ec.PreviousEvaluations = []EvaluationRecord{{ID: "ev-1", CompletedAt: time.Now(), Score: 0.8}}
			}, true},
		{"guardrail worker off in scenario mode", NewRiskGuardrailWorker(client, engine), nil, false},
		{"guardrail worker on in guardrail mode", NewRiskGuardrailWorker(client, engine),
			func(ec *Context) { ec.Mode = ModeGuardrails }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := testContext()
			if tt.mutate != nil {
				tt.mutate(ec)
			}
			if got := tt.worker.ShouldActivate(ec); got != tt.want {
				t.Fatalf("ShouldActivate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInactiveWorkerReturnsEmptyEnvelope(t *testing.T) {
	client := failingClient()
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())
	worker := NewPerformanceWorker(client, engine)

	proposal, err := worker.GenerateProposals(context.Background(), testContext())
	if err != nil {
		t.Fatalf("GenerateProposals: %v", err)
	}
	if proposal == nil {
		t.Fatal("inactive worker must return an envelope, not nil")
	}
	if proposal.Confidence != 0 {
		t.Fatalf("inactive confidence = %v, want 0", proposal.Confidence)
	}
	if !strings.Contains(proposal.Reasoning, "not applicable") {
		t.Fatalf("inactive envelope missing stated reason: %q", proposal.Reasoning)
	}
	if proposal.HasArtifacts() {
		t.Fatal("inactive envelope must carry no artifacts")
	}
	if proposal.WorkerID != "performance-worker" || proposal.WorkerType != "performance" {
		t.Fatalf("envelope identity = %s/%s", proposal.WorkerID, proposal.WorkerType)
	}
}

func TestFallbackWhenCollaboratorUnavailable(t *testing.T) {
	client := failingClient()
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())
	worker := NewSafetyWorker(client, engine)

	proposal, err := worker.GenerateProposals(context.Background(), testContext())
	if err != nil {
		t.Fatalf("GenerateProposals: %v", err)
	}
	if !proposal.HasArtifacts() {
		t.Fatal("fallback must produce deterministic artifacts, not an empty result")
	}
	if proposal.Reasoning != "deterministic fallback artifacts" {
		t.Fatalf("reasoning = %q, want fallback marker", proposal.Reasoning)
	}
	if proposal.Confidence != 0.5 {
		t.Fatalf("fallback confidence = %v, want 0.5", proposal.Confidence)
	}
	for _, suite := range proposal.Suites {
		if suite.Type != "safety" {
			t.Fatalf("fallback suite type = %q", suite.Type)
		}
	}
}

func TestDirectGenerationParsesScenarios(t *testing.T) {
	payload := `{"scenarios": [
		{"name": "Valid scenario", "description": "complete candidate", "inputs": ["x"], "expectedOutputs": ["refusal"]},
		{"name": "", "description": "missing name, must be dropped"}
	]}`
	client := scenarioClient(payload)
	worker := NewCostWorker(client, nil) // direct strategy, no engine

	ec := testContext()
	ec.Assessment.MonthlyBudget = 1000

	proposal, err := worker.GenerateProposals(context.Background(), ec)
	if err != nil {
		t.Fatalf("GenerateProposals: %v", err)
	}
	if got := proposal.ScenarioCount(); got != 1 {
		t.Fatalf("scenario count = %d, want 1 (invalid candidate dropped)", got)
	}

	scenario := proposal.Suites[0].Scenarios[0]
	if scenario.ID == "" {
		t.Fatal("expected generated id for scenario without one")
	}
	if scenario.Weight != 1 {
		t.Fatalf("default weight = %v, want 1", scenario.Weight)
	}
	if proposal.Suites[0].Type != "cost" {
		t.Fatalf("wrapped suite type = %q, want cost", proposal.Suites[0].Type)
	}
}

func TestReasoningPathFallsBackToDirect(t *testing.T) {
	// Reasoning-phase calls fail; the bare generation prompt succeeds. The
	// worker must land on the direct path, not the static fallback.
	client := &mockClient{
		completeStructuredFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			if strings.Contains(req.UserPrompt, "Respond with JSON") {
				return &llm.Response{Text: `{"scenarios": [{"name": "n", "description": "d"}]}`, Tokens: 5}, nil
			}
			return nil, errors.New("reasoning model down")
		},
	}
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())
	worker := NewSafetyWorker(client, engine)

	proposal, err := worker.GenerateProposals(context.Background(), testContext())
	if err != nil {
		t.Fatalf("GenerateProposals: %v", err)
	}
	if proposal.Reasoning != "direct generation" {
		t.Fatalf("reasoning = %q, want direct generation after loop failure", proposal.Reasoning)
	}
	if proposal.ScenarioCount() != 1 {
		t.Fatalf("scenario count = %d, want 1", proposal.ScenarioCount())
	}
}

func TestGuardrailWorkerProducesGuardrails(t *testing.T) {
	payload := `{"guardrails": [
		{"type": "technical", "rule": "limit rate", "description": "per-client ceiling"},
		{"rule": "", "description": "missing rule, dropped"}
	]}`
	client := scenarioClient(payload)
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())
	worker := NewTechnicalGuardrailWorker(client, engine)

	ec := testContext()
	ec.Mode = ModeGuardrails

	proposal, err := worker.GenerateProposals(context.Background(), ec)
	if err != nil {
		t.Fatalf("GenerateProposals: %v", err)
	}
	if len(proposal.Guardrails) != 1 {
		t.Fatalf("guardrail count = %d, want 1", len(proposal.Guardrails))
	}

	g := proposal.Guardrails[0]
	if g.ID == "" {
		t.Fatal("expected generated guardrail id")
	}
	if g.Severity != SeverityMedium {
		t.Fatalf("default severity = %q, want medium", g.Severity)
	}
}

func TestConfidenceHeuristicClamped(t *testing.T) {
	client := failingClient()
	worker := NewComplianceWorker(client, nil)

	ec := testContext()
	// Enough frameworks to push the additive score past 1.0 unclamped.
	ec.Assessment.Frameworks = []string{"GDPR", "HIPAA", "SOC2", "PCI", "ISO27001", "CCPA", "DORA", "NIS2", "FedRAMP", "MAS", "APRA", "OSFI"}

	if got := worker.heuristicConfidence(ec); got > 1 {
		t.Fatalf("confidence = %v, want clamped to [0,1]", got)
	}

	// High-risk combination subtracts below the baseline.
	ec2 := testContext()
	ec2.Assessment.Frameworks = []string{"GDPR"}
	ec2.Assessment.EncryptionAtRest = false
	base := worker.heuristicConfidence(ec2)
	ec2.Assessment.EncryptionAtRest = true
	if safer := worker.heuristicConfidence(ec2); safer <= base {
		t.Fatalf("expected encryption to raise confidence: %v <= %v", safer, base)
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	client := failingClient()
	engine := reasoning.NewEngine(client, reasoning.DefaultConfig())
	registry := NewRegistry(client, engine)

	all := registry.All()
	if len(all) != 11 {
		t.Fatalf("registry size = %d, want 11", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Priority() < all[i].Priority() {
			t.Fatalf("registry not in descending priority order at %d: %d < %d",
				i, all[i-1].Priority(), all[i].Priority())
		}
	}
	if all[0].ID() != "safety-worker" {
		t.Fatalf("highest priority worker = %s, want safety-worker", all[0].ID())
	}

	scenarioFamily := registry.ForMode(ModeScenarios)
	if len(scenarioFamily) != 8 {
		t.Fatalf("scenario family size = %d, want 8", len(scenarioFamily))
	}
	guardrailFamily := registry.ForMode(ModeGuardrails)
	if len(guardrailFamily) != 3 {
		t.Fatalf("guardrail family size = %d, want 3", len(guardrailFamily))
	}

	if _, ok := registry.ByID("drift-worker"); !ok {
		t.Fatal("ByID failed for registered worker")
	}
	if _, ok := registry.ByID("nope"); ok {
		t.Fatal("ByID succeeded for unknown worker")
	}
}
