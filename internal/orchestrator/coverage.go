package orchestrator

import (
	"fmt"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// expectedDomains is the minimal set every scenario run is expected to touch.
// Missing any of these is reported as a coverage gap.
var expectedDomains = []string{"safety", "performance", "security"}

const lowCoverageThreshold = 80.0

// calculateCoverage measures how many known rule targets the synthesized
// scenarios address. With zero known targets the overall percentage is 0,
// never NaN. The result is always within [0,100].
func calculateCoverage(suites []workers.TestSuite, ec *workers.Context) Coverage {
	covered := make(map[string]bool)
	byDomain := make(map[string]int)
	for _, suite := range suites {
		for _, s := range suite.Scenarios {
			byDomain[suite.Type]++
			if s.GuardrailID != "" {
				covered[s.GuardrailID] = true
			}
		}
	}

	known := make(map[string]workers.Rule, len(ec.Rules))
	for _, r := range ec.Rules {
		known[r.ID] = r
	}

	overall := 0.0
	if len(known) > 0 {
		hits := 0
		for id := range known {
			if covered[id] {
				hits++
			}
		}
		overall = float64(hits) / float64(len(known)) * 100
	}
	if overall > 100 {
		overall = 100
	}
	if overall < 0 {
		overall = 0
	}

	var gaps []string
	if overall < lowCoverageThreshold {
		gaps = append(gaps, fmt.Sprintf("overall rule coverage %.0f%% is below %.0f%%", overall, lowCoverageThreshold))
	}
	for _, r := range ec.Rules {
		if r.Severity == workers.SeverityCritical && !covered[r.ID] {
			gaps = append(gaps, fmt.Sprintf("critical rule %s has no scenario targeting it", r.ID))
		}
	}
	// Guardrail runs produce no scenarios, so the expected-domain check
	// only applies to scenario generation.
	if ec.Mode != workers.ModeGuardrails {
		for _, domain := range expectedDomains {
			if byDomain[domain] == 0 {
				gaps = append(gaps, fmt.Sprintf("no %s scenarios generated", domain))
			}
		}
	}

	logging.Coverage("overall %.0f%%, %d domain(s), %d gap(s)", overall, len(byDomain), len(gaps))
	return Coverage{Overall: overall, ByDomain: byDomain, Gaps: gaps}
}
