package reasoning

import (
	"fmt"
	"strings"
)

// Memory is the per-run working memory: a short-term key/value scratch store,
// deduplicated insight and concern lists, and an append-only decision log.
// A Memory is exclusively owned by one reasoning run and is not safe for
// concurrent use; isolation comes from fresh state per run, not locking.
type Memory struct {
	shortTerm map[string]interface{}
	insights  []string
	concerns  []string
	decisions []Decision
}

// NewMemory creates an empty working memory.
func NewMemory() *Memory {
	return &Memory{
		shortTerm: make(map[string]interface{}),
	}
}

// Store saves a value in short-term memory.
func (m *Memory) Store(key string, value interface{}) {
	m.shortTerm[key] = value
}

// Retrieve returns the value for key, or nil if absent.
func (m *Memory) Retrieve(key string) interface{} {
	return m.shortTerm[key]
}

// Has reports whether key exists in short-term memory.
func (m *Memory) Has(key string) bool {
	_, ok := m.shortTerm[key]
	return ok
}

// AddInsight appends an insight unless it is already present.
func (m *Memory) AddInsight(insight string) {
	for _, existing := range m.insights {
		if existing == insight {
			return
		}
	}
	m.insights = append(m.insights, insight)
}

// AddInsights appends each insight, skipping duplicates.
func (m *Memory) AddInsights(insights []string) {
	for _, in := range insights {
		m.AddInsight(in)
	}
}

// Insights returns a copy of the accumulated insights.
func (m *Memory) Insights() []string {
	return append([]string(nil), m.insights...)
}

// AddConcern appends a concern unless it is already present.
func (m *Memory) AddConcern(concern string) {
	for _, existing := range m.concerns {
		if existing == concern {
			return
		}
	}
	m.concerns = append(m.concerns, concern)
}

// AddConcerns appends each concern, skipping duplicates.
func (m *Memory) AddConcerns(concerns []string) {
	for _, c := range concerns {
		m.AddConcern(c)
	}
}

// Concerns returns a copy of the accumulated concerns.
func (m *Memory) Concerns() []string {
	return append([]string(nil), m.concerns...)
}

// RecordDecision appends a decision to the log.
func (m *Memory) RecordDecision(d Decision) {
	m.decisions = append(m.decisions, d)
}

// Decisions returns a copy of the decision log.
func (m *Memory) Decisions() []Decision {
	return append([]Decision(nil), m.decisions...)
}

// LastDecision returns the most recent decision and whether one exists.
func (m *Memory) LastDecision() (Decision, bool) {
	if len(m.decisions) == 0 {
		return Decision{}, false
	}
	return m.decisions[len(m.decisions)-1], true
}

// State is a value snapshot of a Memory. Snapshots never alias the live
// maps or slices, so mutating the source afterward does not change them.
type State struct {
	ShortTerm map[string]interface{}
	Insights  []string
	Concerns  []string
	Decisions []Decision
}

// GetState returns a value snapshot of the memory.
func (m *Memory) GetState() State {
	st := State{
		ShortTerm: make(map[string]interface{}, len(m.shortTerm)),
		Insights:  append([]string(nil), m.insights...),
		Concerns:  append([]string(nil), m.concerns...),
		Decisions: append([]Decision(nil), m.decisions...),
	}
	for k, v := range m.shortTerm {
		st.ShortTerm[k] = v
	}
	return st
}

// SetState replaces the memory contents with a copy of the snapshot.
func (m *Memory) SetState(st State) {
	m.shortTerm = make(map[string]interface{}, len(st.ShortTerm))
	for k, v := range st.ShortTerm {
		m.shortTerm[k] = v
	}
	m.insights = append([]string(nil), st.Insights...)
	m.concerns = append([]string(nil), st.Concerns...)
	m.decisions = append([]Decision(nil), st.Decisions...)
}

// Clear empties all memory.
func (m *Memory) Clear() {
	m.shortTerm = make(map[string]interface{})
	m.insights = nil
	m.concerns = nil
	m.decisions = nil
}

// ClearShortTerm empties only the short-term store.
func (m *Memory) ClearShortTerm() {
	m.shortTerm = make(map[string]interface{})
}

// IsEmpty reports whether the memory holds nothing at all.
func (m *Memory) IsEmpty() bool {
	return len(m.shortTerm) == 0 &&
		len(m.insights) == 0 &&
		len(m.concerns) == 0 &&
		len(m.decisions) == 0
}

// Size returns the approximate number of stored items.
func (m *Memory) Size() int {
	return len(m.shortTerm) + len(m.insights) + len(m.concerns) + len(m.decisions)
}

// Summary renders insights, concerns, and the last three decisions as a
// digest suitable for inclusion in subsequent prompts.
func (m *Memory) Summary() string {
	var parts []string

	if len(m.insights) > 0 {
		parts = append(parts, fmt.Sprintf("Insights: %s", strings.Join(m.insights, "; ")))
	}
	if len(m.concerns) > 0 {
		parts = append(parts, fmt.Sprintf("Concerns: %s", strings.Join(m.concerns, "; ")))
	}
	if len(m.decisions) > 0 {
		start := len(m.decisions) - 3
		if start < 0 {
			start = 0
		}
		recent := make([]string, 0, 3)
		for _, d := range m.decisions[start:] {
			recent = append(recent, d.Decision)
		}
		parts = append(parts, fmt.Sprintf("Recent Decisions: %s", strings.Join(recent, "; ")))
	}

	return strings.Join(parts, "\n")
}
