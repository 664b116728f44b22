package workers

import (
	"fmt"
	"strings"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

// Guardrail-generating specialists. They run only in guardrail generation
// mode and emit protective rules with implementation specs instead of test
// scenarios.

// NewRiskGuardrailWorker builds the risk guardrail specialist.
func NewRiskGuardrailWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "risk-guardrail-worker",
		domain:         "risk",
		priority:       9,
		strategy:       StrategyReasoning,
		inactiveReason: "guardrail generation mode not selected",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool { return ec.Mode == ModeGuardrails }

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate risk guardrails for %q addressing its declared risks", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate risk guardrails for the following system.

System: %s
Description: %s
Declared risks: %v
Criticality: %s

For each material risk, produce a guardrail with a concrete rule, a
rationale, and an implementation spec (platforms, configuration,
monitoring signals).

Respond with JSON: {"guardrails": [{"type", "severity", "rule", "description", "rationale", "implementation": {"platforms", "configuration", "monitoring"}}]}`,
			ec.UseCase.Name, ec.UseCase.Description, ec.Assessment.Risks, ec.UseCase.Criticality)
	}

	w.fallbackGuards = func(ec *Context) []Guardrail {
		guards := []Guardrail{{
			ID:          "gr_risk_escalation",
			Type:        "risk",
			Severity:    SeverityHigh,
			Rule:        "Escalate to a human reviewer when model confidence falls below threshold",
			Description: "Low-confidence outputs are routed to human review instead of being served",
			Rationale:   "Bounds the blast radius of uncertain automated decisions",
			Implementation: GuardrailImplementation{
				Platforms:     []string{"inference-gateway"},
				Configuration: map[string]string{"confidence_threshold": "0.6"},
				Monitoring:    []string{"escalation_rate"},
			},
		}}
		for _, risk := range ec.Assessment.Risks {
			guards = append(guards, Guardrail{
				ID:          fmt.Sprintf("gr_risk_%s", strings.ToLower(strings.ReplaceAll(risk, " ", "_"))),
				Type:        "risk",
				Severity:    SeverityMedium,
				Rule:        fmt.Sprintf("Monitor and bound exposure to the declared %s risk", strings.ToLower(risk)),
				Description: fmt.Sprintf("Declared %s risk requires an explicit control", strings.ToLower(risk)),
				Rationale:   "Every assessed risk needs at least one mapped control",
				Implementation: GuardrailImplementation{
					Platforms:  []string{"inference-gateway"},
					Monitoring: []string{"incident_count"},
				},
			})
		}
		return guards
	}

	w.insightsFn = func(ec *Context) []string {
		return []string{fmt.Sprintf("%d declared risk(s) to map to controls", len(ec.Assessment.Risks))}
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		score += 0.05 * float64(len(ec.Assessment.Risks))
		if ec.UseCase.Criticality != "" {
			score += 0.1
		}
		return score
	}

	return w
}

// NewBusinessGuardrailWorker builds the business guardrail specialist.
func NewBusinessGuardrailWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "business-guardrail-worker",
		domain:         "business",
		priority:       8,
		strategy:       StrategyReasoning,
		inactiveReason: "guardrail generation mode not selected",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool { return ec.Mode == ModeGuardrails }

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate business guardrails for %q protecting brand, scope, and user trust", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate business guardrails for the following system.

System: %s
Description: %s
Industry: %s
Audience: %s

Cover: staying within the declared business scope, brand and tone
constraints, commitments the system must never make on the company's
behalf, and competitor or pricing discussion boundaries.

Respond with JSON: {"guardrails": [{"type", "severity", "rule", "description", "rationale", "implementation": {"platforms", "configuration", "monitoring"}}]}`,
			ec.UseCase.Name, ec.UseCase.Description, ec.UseCase.Industry, ec.UseCase.Audience)
	}

	w.fallbackGuards = func(ec *Context) []Guardrail {
		return []Guardrail{{
			ID:          "gr_business_scope",
			Type:        "business",
			Severity:    SeverityMedium,
			Rule:        "Decline requests outside the declared business scope",
			Description: "The system stays within its stated purpose and redirects out-of-scope requests",
			Rationale:   "Scope creep erodes user trust and invites unvetted behavior",
			Implementation: GuardrailImplementation{
				Platforms:     []string{"system-prompt", "inference-gateway"},
				Configuration: map[string]string{"scope": "declared use case only"},
				Monitoring:    []string{"out_of_scope_rate"},
			},
		}, {
			ID:          "gr_business_commitments",
			Type:        "business",
			Severity:    SeverityHigh,
			Rule:        "Never make binding commitments (refunds, contracts, legal positions) on the company's behalf",
			Description: "Responses must not promise actions only authorized staff can take",
			Rationale:   "Automated commitments create legal and financial exposure",
			Implementation: GuardrailImplementation{
				Platforms:  []string{"system-prompt"},
				Monitoring: []string{"commitment_phrase_detections"},
			},
		}}
	}

	w.insightsFn = func(ec *Context) []string {
		var out []string
		if ec.UseCase.Industry != "" {
			out = append(out, fmt.Sprintf("industry context (%s) shapes acceptable scope", ec.UseCase.Industry))
		}
		return out
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		if ec.UseCase.Description != "" {
			score += 0.1
		}
		if ec.UseCase.Industry != "" {
			score += 0.1
		}
		return score
	}

	return w
}

// NewTechnicalGuardrailWorker builds the technical guardrail specialist.
func NewTechnicalGuardrailWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "technical-guardrail-worker",
		domain:         "technical",
		priority:       7,
		strategy:       StrategyReasoning,
		inactiveReason: "guardrail generation mode not selected",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool { return ec.Mode == ModeGuardrails }

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate technical guardrails for %q covering input validation, rate limits, and output constraints", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate technical guardrails for the following system.

System: %s
Expected load: %d requests/day, %d concurrent users
Data types: %v

Cover: input validation and size limits, rate limiting, output format
enforcement, PII redaction in logs, and timeout/retry policies for
downstream calls.

Respond with JSON: {"guardrails": [{"type", "severity", "rule", "description", "rationale", "implementation": {"platforms", "configuration", "monitoring"}}]}`,
			ec.UseCase.Name, ec.Assessment.RequestsPerDay,
			ec.Assessment.ConcurrentUsers, ec.Assessment.DataTypes)
	}

	w.fallbackGuards = func(ec *Context) []Guardrail {
		guards := []Guardrail{{
			ID:          "gr_technical_ratelimit",
			Type:        "technical",
			Severity:    SeverityHigh,
			Rule:        "Enforce per-client rate limits at the gateway",
			Description: "Requests above the per-client ceiling are rejected with a retryable error",
			Rationale:   "Protects shared capacity from a single noisy client",
			Implementation: GuardrailImplementation{
				Platforms:     []string{"inference-gateway"},
				Configuration: map[string]string{"requests_per_minute": "60"},
				Monitoring:    []string{"rate_limit_rejections"},
			},
		}}
		if ec.Assessment.HasDataType("PII") {
			guards = append(guards, Guardrail{
				ID:          "gr_technical_redaction",
				Type:        "technical",
				Severity:    SeverityCritical,
				Rule:        "Redact personal data from logs and traces",
				Description: "No personal data appears in any log line or trace span",
				Rationale:   "Log stores are rarely protected to the same standard as primary data",
				Implementation: GuardrailImplementation{
					Platforms:  []string{"logging-pipeline"},
					Monitoring: []string{"redaction_failures"},
				},
			})
		}
		return guards
	}

	w.insightsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.HasDataType("PII") {
			out = append(out, "personal data requires redaction controls in telemetry")
		}
		return out
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		if ec.Assessment.RequestsPerDay > 0 {
			score += 0.1
		}
		if len(ec.Assessment.DataTypes) > 0 {
			score += 0.1
		}
		return score
	}

	return w
}
