package orchestrator

import (
	"fmt"
	"strings"

	"aegis/internal/workers"
)

// fingerprintInputLen bounds how much of the input text participates in the
// identity. Long inputs that agree on their first 100 characters are treated
// as the same test intent.
const fingerprintInputLen = 100

// scenarioFingerprint computes the normalized identity of a test scenario:
// truncated first input, expected-output type, and target guardrail id,
// lowercased and whitespace-trimmed. Two scenarios with equal fingerprints
// are considered duplicates regardless of which worker proposed them.
// Collisions are an accepted approximation, not a guarantee.
func scenarioFingerprint(s workers.TestScenario) string {
	input := ""
	if len(s.Inputs) > 0 {
		input = normalize(s.Inputs[0])
	}
	if len(input) > fingerprintInputLen {
		input = input[:fingerprintInputLen]
	}

	expected := ""
	if len(s.ExpectedOutputs) > 0 {
		expected = normalize(s.ExpectedOutputs[0])
	}

	return fmt.Sprintf("%s|%s|%s", input, expected, normalize(s.GuardrailID))
}

// guardrailFingerprint computes the normalized identity of a guardrail:
// truncated rule text plus guardrail type.
func guardrailFingerprint(g workers.Guardrail) string {
	rule := normalize(g.Rule)
	if len(rule) > fingerprintInputLen {
		rule = rule[:fingerprintInputLen]
	}
	return fmt.Sprintf("%s|%s", rule, normalize(g.Type))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
