package workers

import (
	"fmt"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

// NewRobustnessWorker builds the robustness specialist. Like safety, it is
// always on: malformed and adversarial inputs apply to every system.
func NewRobustnessWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:       "robustness-worker",
		domain:   "robustness",
		priority: 5,
		strategy: StrategyReasoning,
		client:   client,
		engine:   engine,
	}

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate robustness test scenarios for %q covering malformed, empty, and extreme inputs", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate robustness test scenarios for the following system.

System: %s
Description: %s

Cover: empty input, oversized input, non-text payloads, mixed-language
content, contradictory instructions, and repeated identical requests.

Respond with JSON: {"scenarios": [{"name", "description", "guardrailId", "inputs", "expectedOutputs", "assertions", "tags"}]}`,
			ec.UseCase.Name, ec.UseCase.Description)
	}

	w.fallbackSuites = func(ec *Context) []TestSuite {
		return []TestSuite{{
			ID:       "suite_robustness_fallback",
			Name:     "Baseline robustness checks",
			Type:     "robustness",
			Priority: SeverityMedium,
			Scenarios: []TestScenario{
				{
					ID:              "scn_robust_empty",
					Name:            "Empty input handling",
					Description:     "Submit an empty request and verify a well-formed response",
					Inputs:          []string{""},
					ExpectedOutputs: []string{"pass"},
					Assertions:      []string{"no error surfaced to the user", "response asks for clarification"},
					Weight:          1,
					Tags:            []string{"robustness"},
				},
				{
					ID:              "scn_robust_oversized",
					Name:            "Oversized input handling",
					Description:     "Submit input far beyond expected length and verify graceful truncation or rejection",
					Inputs:          []string{"input exceeding the declared maximum length"},
					ExpectedOutputs: []string{"pass"},
					Assertions:      []string{"system neither crashes nor hangs"},
					Weight:          1,
					Tags:            []string{"robustness"},
				},
			},
		}}
	}

	w.insightsFn = func(ec *Context) []string {
		return nil
	}

	w.concernsFn = func(ec *Context) []string {
		return nil
	}

	w.recommendFn = func(ec *Context) []string {
		return []string{"keep robustness scenarios in the default regression set"}
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.6
		if ec.UseCase.Description != "" {
			score += 0.1
		}
		return score
	}

	return w
}
