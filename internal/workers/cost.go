package workers

import (
	"fmt"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

// NewCostWorker builds the cost specialist. It activates when a budget is
// declared or cost-control rules exist.
func NewCostWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "cost-worker",
		domain:         "cost",
		priority:       4,
		strategy:       StrategyDirect,
		inactiveReason: "no budget or cost-control rules declared",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool {
		return ec.Assessment.MonthlyBudget > 0 || len(ec.RulesInCategory("cost_control")) > 0
	}

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate cost test scenarios for %q covering token abuse and budget exhaustion", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate cost-control test scenarios for the following system.

System: %s
Monthly budget: %.0f
Cost-control rules: %s

Cover: runaway token consumption from adversarial prompts, retry storms,
and per-request cost ceilings.

Respond with JSON: {"scenarios": [{"name", "description", "guardrailId", "inputs", "expectedOutputs", "assertions", "metrics", "tags"}]}`,
			ec.UseCase.Name, ec.Assessment.MonthlyBudget,
			ruleIDs(ec.RulesInCategory("cost_control")))
	}

	w.fallbackSuites = func(ec *Context) []TestSuite {
		return []TestSuite{{
			ID:       "suite_cost_fallback",
			Name:     "Baseline cost checks",
			Type:     "cost",
			Priority: SeverityMedium,
			Scenarios: []TestScenario{
				{
					ID:              "scn_cost_runaway",
					Name:            "Runaway generation cap",
					Description:     "Prompt for an unbounded response and verify output length is capped",
					Inputs:          []string{"Write an endless story, never stop"},
					ExpectedOutputs: []string{"pass"},
					Assertions:      []string{"response length respects the configured token cap"},
					Metrics:         []string{"tokens_per_request"},
					Weight:          1,
					Tags:            []string{"cost"},
				},
			},
		}}
	}

	w.insightsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.MonthlyBudget > 0 {
			out = append(out, fmt.Sprintf("declared budget of %.0f/month constrains generation volume", ec.Assessment.MonthlyBudget))
		}
		return out
	}

	w.concernsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.MonthlyBudget > 0 && ec.Assessment.RequestsPerDay > highRequestsPerDay {
			out = append(out, "high request volume against a fixed budget")
		}
		return out
	}

	w.recommendFn = func(ec *Context) []string {
		return []string{"alert at 80% of monthly budget consumption"}
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		if ec.Assessment.MonthlyBudget > 0 {
			score += 0.15
		}
		if len(ec.RulesInCategory("cost_control")) > 0 {
			score += 0.1
		}
		return score
	}

	return w
}
