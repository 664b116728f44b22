package orchestrator

import (
	"sort"

	"aegis/internal/workers"
)

// Domain execution order: safety findings first, broad resilience last.
var domainOrder = map[string]int{
	"safety":      0,
	"security":    1,
	"compliance":  2,
	"performance": 3,
	"ethics":      4,
	"cost":        5,
	"drift":       6,
	"robustness":  7,
}

var priorityRank = map[string]int{
	workers.SeverityCritical: 0,
	workers.SeverityHigh:     1,
	workers.SeverityMedium:   2,
	workers.SeverityLow:      3,
}

// optimizeExecutionOrder orders suites for execution: declared priority
// first, then the fixed domain order, then ascending scenario count so small
// suites give fast feedback. The sort is stable; ties keep synthesis order.
func optimizeExecutionOrder(suites []workers.TestSuite) []workers.TestSuite {
	ordered := append([]workers.TestSuite(nil), suites...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if pa, pb := rankOf(priorityRank, a.Priority, len(priorityRank)), rankOf(priorityRank, b.Priority, len(priorityRank)); pa != pb {
			return pa < pb
		}
		if da, db := rankOf(domainOrder, a.Type, len(domainOrder)), rankOf(domainOrder, b.Type, len(domainOrder)); da != db {
			return da < db
		}
		return len(a.Scenarios) < len(b.Scenarios)
	})
	return ordered
}

// rankOf looks up a rank, placing unknown keys after every known one.
func rankOf(ranks map[string]int, key string, unknown int) int {
	if r, ok := ranks[key]; ok {
		return r
	}
	return unknown
}
