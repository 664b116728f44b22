package orchestrator

import (
	"sort"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// synthesize merges all proposals into the final artifact set. Proposals are
// processed in descending worker priority order against a run-local
// fingerprint set: the first worker to claim a fingerprint wins, lower
// priority duplicates are skipped. Surviving artifacts are enriched with
// provenance (source worker, domain tag).
func synthesize(proposals []*workers.Proposal, priorities map[string]int) ([]workers.TestSuite, []workers.Guardrail) {
	ordered := append([]*workers.Proposal(nil), proposals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priorities[ordered[i].WorkerID] > priorities[ordered[j].WorkerID]
	})

	processed := make(map[string]bool)
	var suites []workers.TestSuite
	var guardrails []workers.Guardrail
	skipped := 0

	for _, p := range ordered {
		for _, suite := range p.Suites {
			kept := make([]workers.TestScenario, 0, len(suite.Scenarios))
			for _, s := range suite.Scenarios {
				fp := scenarioFingerprint(s)
				if processed[fp] {
					skipped++
					continue
				}
				processed[fp] = true
				s.SourceWorker = p.WorkerID
				s.Domain = suite.Type
				kept = append(kept, s)
			}
			if len(kept) == 0 {
				continue
			}
			suite.Scenarios = kept
			suites = append(suites, suite)
		}

		for _, g := range p.Guardrails {
			fp := guardrailFingerprint(g)
			if processed[fp] {
				skipped++
				continue
			}
			processed[fp] = true
			g.SourceWorker = p.WorkerID
			guardrails = append(guardrails, g)
		}
	}

	logging.Orchestrator("synthesized %d suite(s), %d guardrail(s); %d duplicate artifact(s) skipped",
		len(suites), len(guardrails), skipped)
	return suites, guardrails
}

// overallConfidence averages the contributing workers' confidences and adds
// a small bonus for breadth of contribution, capped below 1.0. Workers that
// contributed no artifacts are excluded.
func overallConfidence(proposals []*workers.Proposal) float64 {
	var sum float64
	n := 0
	for _, p := range proposals {
		if !p.HasArtifacts() {
			continue
		}
		sum += p.Confidence
		n++
	}
	if n == 0 {
		return 0
	}

	bonus := float64(n) * 0.02
	if bonus > 0.1 {
		bonus = 0.1
	}
	confidence := sum/float64(n) + bonus
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}
