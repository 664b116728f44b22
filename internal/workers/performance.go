package workers

import (
	"fmt"

	"aegis/internal/llm"
	"aegis/internal/reasoning"
)

// Load thresholds above which the performance specialist activates.
const (
	highRequestsPerDay  = 1000
	highConcurrentUsers = 50
	tightLatencyMS      = 500
)

// NewPerformanceWorker builds the performance specialist. It activates only
// when the assessment declares meaningful load or a tight latency target.
func NewPerformanceWorker(client llm.Client, engine *reasoning.Engine) *Worker {
	w := &Worker{
		id:             "performance-worker",
		domain:         "performance",
		priority:       6,
		strategy:       StrategyReasoning,
		inactiveReason: "no significant load or latency requirements declared",
		client:         client,
		engine:         engine,
	}

	w.activate = func(ec *Context) bool {
		a := ec.Assessment
		return a.RequestsPerDay > highRequestsPerDay ||
			a.ConcurrentUsers > highConcurrentUsers ||
			(a.LatencyTargetMS > 0 && a.LatencyTargetMS < tightLatencyMS)
	}

	w.goal = func(ec *Context) string {
		return fmt.Sprintf("Generate performance test scenarios for %q covering load, latency, and degradation behavior", ec.UseCase.Name)
	}

	w.prompt = func(ec *Context) string {
		return fmt.Sprintf(`Generate performance test scenarios for the following system.

System: %s
Expected load: %d requests/day, %d concurrent users
Latency target: %dms

Cover: sustained load at expected volume, burst traffic above expected volume,
latency under load, and graceful degradation when capacity is exceeded.

Respond with JSON: {"scenarios": [{"name", "description", "guardrailId", "inputs", "expectedOutputs", "assertions", "metrics", "tags"}]}`,
			ec.UseCase.Name, ec.Assessment.RequestsPerDay,
			ec.Assessment.ConcurrentUsers, ec.Assessment.LatencyTargetMS)
	}

	w.fallbackSuites = func(ec *Context) []TestSuite {
		return []TestSuite{{
			ID:       "suite_performance_fallback",
			Name:     "Baseline load checks",
			Type:     "performance",
			Priority: SeverityHigh,
			Scenarios: []TestScenario{
				{
					ID:              "scn_perf_sustained",
					Name:            "Sustained expected load",
					Description:     "Hold the declared request rate and verify latency stays within target",
					Inputs:          []string{fmt.Sprintf("load profile: %d requests/day sustained", ec.Assessment.RequestsPerDay)},
					ExpectedOutputs: []string{"pass"},
					Assertions:      []string{"p95 latency within target", "zero dropped requests"},
					Metrics:         []string{"latency_p95", "error_rate"},
					Weight:          1,
					Tags:            []string{"performance", "high-load"},
				},
				{
					ID:              "scn_perf_burst",
					Name:            "Burst above capacity",
					Description:     "Spike to several times the expected rate and verify graceful degradation",
					Inputs:          []string{"load profile: 5x expected rate for 60 seconds"},
					ExpectedOutputs: []string{"pass"},
					Assertions:      []string{"no cascading failure", "recovery within one minute of burst end"},
					Metrics:         []string{"latency_p99", "recovery_time"},
					Weight:          1,
					Tags:            []string{"performance", "high-load", "burst"},
				},
			},
		}}
	}

	w.insightsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.RequestsPerDay > highRequestsPerDay {
			out = append(out, fmt.Sprintf("high daily volume (%d requests/day)", ec.Assessment.RequestsPerDay))
		}
		if ec.Assessment.LatencyTargetMS > 0 && ec.Assessment.LatencyTargetMS < tightLatencyMS {
			out = append(out, fmt.Sprintf("tight latency target (%dms)", ec.Assessment.LatencyTargetMS))
		}
		return out
	}

	w.concernsFn = func(ec *Context) []string {
		var out []string
		if ec.Assessment.ConcurrentUsers > highConcurrentUsers && ec.Assessment.LatencyTargetMS == 0 {
			out = append(out, "high concurrency with no declared latency target")
		}
		return out
	}

	w.recommendFn = func(ec *Context) []string {
		return []string{"establish a latency baseline before enabling autoscaling policies"}
	}

	w.confidenceFn = func(ec *Context) float64 {
		score := 0.5
		if ec.Assessment.RequestsPerDay > 0 {
			score += 0.1
		}
		if ec.Assessment.ConcurrentUsers > 0 {
			score += 0.1
		}
		if ec.Assessment.LatencyTargetMS > 0 {
			score += 0.1
		}
		return score
	}

	return w
}
