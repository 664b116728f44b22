package workers

import (
	"fmt"
	"strings"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

// NewComplianceWorker builds the compliance specialist. It activates when the
// assessment declares at least one regulatory framework.
func NewComplianceWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "compliance-worker",
		domain:         "compliance",
		priority:       8,
		strategy:       StrategyReasoning,
		inactiveReason: "no regulatory frameworks declared",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool {
		return ec.Assessment.HasFramework()
	}

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate compliance test scenarios for %q against %s",
			ec.UseCase.Name, strings.Join(ec.Assessment.Frameworks, ", "))
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate compliance test scenarios for the following system.

System: %s
Regulatory frameworks: %s
Data types handled: %v
Industry: %s

For each framework, cover its core obligations as testable behaviors:
data subject rights, retention and deletion, consent handling, audit
trails, and mandated disclosures.

Respond with JSON: {"scenarios": [{"name", "description", "guardrailId", "inputs", "expectedOutputs", "assertions", "tags"}]}`,
			ec.UseCase.Name, strings.Join(ec.Assessment.Frameworks, ", "),
			ec.Assessment.DataTypes, ec.UseCase.Industry)
	}

	w.fallbackSuites = func(ec *Context) []TestSuite {
		scenarios := make([]TestScenario, 0, len(ec.Assessment.Frameworks))
		for _, fw := range ec.Assessment.Frameworks {
			scenarios = append(scenarios, TestScenario{
				ID:              fmt.Sprintf("scn_compliance_%s", strings.ToLower(fw)),
				Name:            fmt.Sprintf("%s core obligation check", fw),
				Description:     fmt.Sprintf("Verify the system honors %s data handling obligations", fw),
				Inputs:          []string{fmt.Sprintf("request exercising a %s data subject right", fw)},
				ExpectedOutputs: []string{"pass"},
				Assertions:      []string{"obligation is honored", "action is recorded in the audit trail"},
				Weight:          1,
				Tags:            []string{"compliance", strings.ToLower(fw)},
			})
		}
		return []TestSuite{{
			ID:        "suite_compliance_fallback",
			Name:      "Framework obligation checks",
			Type:      "compliance",
			Priority:  SeverityCritical,
			Scenarios: scenarios,
		}}
	}

	w.insightsFn = func(ec *Context) []string {
		return []string{fmt.Sprintf("subject to %d regulatory framework(s)", len(ec.Assessment.Frameworks))}
	}

	w.concernsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.HasDataType("PII") && !ec.Assessment.EncryptionAtRest {
			out = append(out, "personal data stored without encryption at rest")
		}
		if ec.Assessment.AutomatedDecisions && !ec.Assessment.HumanOversight {
			out = append(out, "fully automated decisions without human review")
		}
		return out
	}

	w.recommendFn = func(ec *Context) []string {
		return []string{"map each framework obligation to a named guardrail rule"}
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		score += 0.05 * float64(len(ec.Assessment.Frameworks))
		if len(ec.Assessment.DataTypes) > 0 {
			score += 0.1
		}
		if ec.Assessment.HasDataType("PII") && !ec.Assessment.EncryptionAtRest {
			score -= 0.15
		}
		if ec.Assessment.AutomatedDecisions && !ec.Assessment.HumanOversight {
			score -= 0.1
		}
		return score
	}

	return w
}
