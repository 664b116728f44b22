package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// proposedScenario carries a scenario together with its provenance, needed
// for conflict detection and priority-based deduplication.
type proposedScenario struct {
	scenario  workers.TestScenario
	suiteID   string
	suiteType string
	tags      []string
	workerID  string
	priority  int
}

// flattenScenarios lists every proposed scenario with provenance. Proposal
// order is preserved; callers sort as needed.
func flattenScenarios(proposals []*workers.Proposal, priorities map[string]int) []proposedScenario {
	var out []proposedScenario
	for _, p := range proposals {
		for _, suite := range p.Suites {
			for _, s := range suite.Scenarios {
				out = append(out, proposedScenario{
					scenario:  s,
					suiteID:   suite.ID,
					suiteType: suite.Type,
					tags:      append(append([]string(nil), s.Tags...), suite.Type),
					workerID:  p.WorkerID,
					priority:  priorities[p.WorkerID],
				})
			}
		}
	}
	return out
}

// proposedGuardrail carries a guardrail together with its provenance.
type proposedGuardrail struct {
	guardrail workers.Guardrail
	workerID  string
}

// flattenGuardrails lists every proposed guardrail with provenance, in
// proposal order.
func flattenGuardrails(proposals []*workers.Proposal) []proposedGuardrail {
	var out []proposedGuardrail
	for _, p := range proposals {
		for _, g := range p.Guardrails {
			out = append(out, proposedGuardrail{guardrail: g, workerID: p.WorkerID})
		}
	}
	return out
}

// identifyConflicts scans the union of all proposals for duplicates,
// contradictions, and resource conflicts. Both artifact kinds participate:
// scenario conflicts cover all three types, guardrail conflicts cover
// cross-worker duplicates.
func identifyConflicts(proposals []*workers.Proposal, priorities map[string]int) []Conflict {
	flat := flattenScenarios(proposals, priorities)
	guards := flattenGuardrails(proposals)
	var conflicts []Conflict

	conflicts = append(conflicts, duplicateConflicts(flat)...)
	conflicts = append(conflicts, contradictionConflicts(flat)...)
	conflicts = append(conflicts, resourceConflicts(flat)...)
	conflicts = append(conflicts, duplicateGuardrailConflicts(guards)...)

	logging.Orchestrator("identified %d conflict(s) across %d scenario(s) and %d guardrail(s)", len(conflicts), len(flat), len(guards))
	return conflicts
}

// duplicateConflicts flags fingerprints proposed by more than one worker.
func duplicateConflicts(flat []proposedScenario) []Conflict {
	byPrint := make(map[string][]proposedScenario)
	var order []string
	for _, ps := range flat {
		fp := scenarioFingerprint(ps.scenario)
		if _, seen := byPrint[fp]; !seen {
			order = append(order, fp)
		}
		byPrint[fp] = append(byPrint[fp], ps)
	}

	var conflicts []Conflict
	for _, fp := range order {
		group := byPrint[fp]
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:              ConflictDuplicate,
			Severity:          workers.SeverityLow,
			AffectedArtifacts: artifactIDs(group),
			Description: fmt.Sprintf("%d scenarios share fingerprint (workers: %s)",
				len(group), workerList(group)),
		})
	}
	return conflicts
}

// duplicateGuardrailConflicts flags guardrail fingerprints proposed by more
// than one worker.
func duplicateGuardrailConflicts(flat []proposedGuardrail) []Conflict {
	byPrint := make(map[string][]proposedGuardrail)
	var order []string
	for _, pg := range flat {
		fp := guardrailFingerprint(pg.guardrail)
		if _, seen := byPrint[fp]; !seen {
			order = append(order, fp)
		}
		byPrint[fp] = append(byPrint[fp], pg)
	}

	var conflicts []Conflict
	for _, fp := range order {
		group := byPrint[fp]
		if len(group) < 2 {
			continue
		}
		ids := make([]string, 0, len(group))
		seen := make(map[string]bool)
		var from []string
		for _, pg := range group {
			ids = append(ids, pg.guardrail.ID)
			if !seen[pg.workerID] {
				seen[pg.workerID] = true
				from = append(from, pg.workerID)
			}
		}
		sort.Strings(from)
		conflicts = append(conflicts, Conflict{
			Type:              ConflictDuplicate,
			Severity:          workers.SeverityLow,
			AffectedArtifacts: ids,
			Description: fmt.Sprintf("%d guardrails share rule and type (workers: %s)",
				len(group), strings.Join(from, ", ")),
		})
	}
	return conflicts
}

// contradictionConflicts flags scenario pairs with near-identical input but
// mutually exclusive expected outcomes (one expects pass, another block).
func contradictionConflicts(flat []proposedScenario) []Conflict {
	byInput := make(map[string][]proposedScenario)
	var order []string
	for _, ps := range flat {
		if len(ps.scenario.Inputs) == 0 {
			continue
		}
		key := normalize(ps.scenario.Inputs[0])
		if len(key) > fingerprintInputLen {
			key = key[:fingerprintInputLen]
		}
		if _, seen := byInput[key]; !seen {
			order = append(order, key)
		}
		byInput[key] = append(byInput[key], ps)
	}

	var conflicts []Conflict
	for _, key := range order {
		group := byInput[key]
		if len(group) < 2 {
			continue
		}
		var expectsPass, expectsBlock []proposedScenario
		for _, ps := range group {
			switch expectedOutcome(ps.scenario) {
			case "pass":
				expectsPass = append(expectsPass, ps)
			case "block":
				expectsBlock = append(expectsBlock, ps)
			}
		}
		if len(expectsPass) > 0 && len(expectsBlock) > 0 {
			affected := artifactIDs(append(append([]proposedScenario(nil), expectsPass...), expectsBlock...))
			conflicts = append(conflicts, Conflict{
				Type:              ConflictContradiction,
				Severity:          workers.SeverityHigh,
				AffectedArtifacts: affected,
				Description:       "same input expected to both pass and be blocked",
			})
		}
	}
	return conflicts
}

// resourceConflicts flags artifact sets that cannot safely run concurrently:
// multiple high-load performance scenarios, or anything tagged destructive.
func resourceConflicts(flat []proposedScenario) []Conflict {
	var highLoad, destructive []proposedScenario
	for _, ps := range flat {
		if ps.suiteType == "performance" && hasTag(ps.tags, "high-load") {
			highLoad = append(highLoad, ps)
		}
		if hasTag(ps.tags, "destructive") {
			destructive = append(destructive, ps)
		}
	}

	var conflicts []Conflict
	if len(highLoad) > 1 {
		conflicts = append(conflicts, Conflict{
			Type:              ConflictResource,
			Severity:          workers.SeverityMedium,
			AffectedArtifacts: artifactIDs(highLoad),
			Description:       fmt.Sprintf("%d high-load performance scenarios would contend if run together", len(highLoad)),
		})
	}
	if len(destructive) > 0 {
		conflicts = append(conflicts, Conflict{
			Type:              ConflictResource,
			Severity:          workers.SeverityHigh,
			AffectedArtifacts: artifactIDs(destructive),
			Description:       "destructive scenarios must not run concurrently with anything else",
		})
	}
	return conflicts
}

// resolveConflicts assigns exactly one deterministic resolution to every
// conflict, keyed by its type. The returned slice mirrors the input order.
func resolveConflicts(conflicts []Conflict) []Conflict {
	resolved := make([]Conflict, len(conflicts))
	for i, c := range conflicts {
		switch c.Type {
		case ConflictDuplicate:
			c.Resolution = "keep the artifact from the highest-priority worker, discard the rest"
		case ConflictContradiction:
			c.Resolution = "prefer the more conservative outcome: expect block"
		case ConflictResource:
			c.Resolution = "force sequential scheduling for the affected artifacts"
		default:
			c.Resolution = "flag for manual review"
		}
		resolved[i] = c
	}
	return resolved
}

// expectedOutcome classifies a scenario's first expected output as pass,
// block, or other.
func expectedOutcome(s workers.TestScenario) string {
	if len(s.ExpectedOutputs) == 0 {
		return ""
	}
	out := normalize(s.ExpectedOutputs[0])
	switch {
	case strings.Contains(out, "block") || strings.Contains(out, "refus"):
		return "block"
	case strings.Contains(out, "pass") || strings.Contains(out, "allow"):
		return "pass"
	default:
		return ""
	}
}

func artifactIDs(group []proposedScenario) []string {
	ids := make([]string, 0, len(group))
	for _, ps := range group {
		ids = append(ids, ps.scenario.ID)
	}
	return ids
}

func workerList(group []proposedScenario) string {
	seen := make(map[string]bool)
	var ids []string
	for _, ps := range group {
		if !seen[ps.workerID] {
			seen[ps.workerID] = true
			ids = append(ids, ps.workerID)
		}
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if normalize(t) == want {
			return true
		}
	}
	return false
}
