package workers

import (
	"sort"

	"aegis/internal/llm"
	"aegis/internal/logging"
	"aegis/internal/reasoning"
)

// guardrailDomains marks which specialists belong to the guardrail family.
var guardrailDomains = map[string]bool{
	"risk":      true,
	"business":  true,
	"technical": true,
}

// Registry holds the closed set of specialists in descending priority order.
// The order matters: synthesis processes proposals highest priority first,
// so the registry order is the dedupe tie-break.
type Registry struct {
	workers []Specialist
}

// NewRegistry registers every built-in specialist.
func NewRegistry(client llm.Client, engine *reasoning.Engine) *Registry {
	r := &Registry{}
	for _, w := range []Specialist{
		NewSafetyWorker(client, engine),
		NewSecurityWorker(client, engine),
		NewRiskGuardrailWorker(client, engine),
		NewComplianceWorker(client, engine),
		NewBusinessGuardrailWorker(client, engine),
		NewEthicsWorker(client, engine),
		NewTechnicalGuardrailWorker(client, engine),
		NewPerformanceWorker(client, engine),
		NewRobustnessWorker(client, engine),
		NewCostWorker(client, engine),
		NewDriftWorker(client, engine),
	} {
		r.Register(w)
	}
	return r
}

// Register inserts a specialist, keeping descending priority order. Order is
// stable for equal priorities: earlier registration wins ties.
func (r *Registry) Register(s Specialist) {
	r.workers = append(r.workers, s)
	sort.SliceStable(r.workers, func(i, j int) bool {
		return r.workers[i].Priority() > r.workers[j].Priority()
	})
	logging.WorkersDebug("registered %s (domain %s, priority %d)", s.ID(), s.Type(), s.Priority())
}

// All returns every registered specialist in priority order.
func (r *Registry) All() []Specialist {
	return append([]Specialist(nil), r.workers...)
}

// ForMode returns the specialists belonging to the given generation mode's
// family, in priority order. An empty mode defaults to scenario generation.
func (r *Registry) ForMode(mode GenerationMode) []Specialist {
	wantGuardrails := mode == ModeGuardrails
	var out []Specialist
	for _, w := range r.workers {
		if guardrailDomains[w.Type()] == wantGuardrails {
			out = append(out, w)
		}
	}
	return out
}

// ByID looks up a specialist by id.
func (r *Registry) ByID(id string) (Specialist, bool) {
	for _, w := range r.workers {
		if w.ID() == id {
			return w, true
		}
	}
	return nil, false
}
