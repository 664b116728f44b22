package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// PROMPT LIBRARY
// =============================================================================
// Prompt builders for each phase of the reasoning loop. The textual content
// is configuration, not logic; every builder requests a JSON object so the
// response can be decoded leniently.

// PlanningPrompt asks the model to plan its approach to the goal.
func PlanningPrompt(goal string, context interface{}) string {
	return fmt.Sprintf(`You are planning how to achieve a goal. Think carefully before acting.

GOAL: %s

CONTEXT:
%s

Respond with a JSON object:
{
  "understanding": "What the goal requires, in your own words",
  "keyFactors": ["factor 1", "factor 2"],
  "criticalPriorities": ["priority 1"],
  "approach": "Step-by-step approach you will take",
  "potentialChallenges": ["challenge 1"],
  "confidence": 0.8
}`, goal, renderContext(context))
}

// AnalysisPrompt asks the model for a deep analysis of the context within a domain.
func AnalysisPrompt(domain string, context interface{}) string {
	return fmt.Sprintf(`You are a %s analyst. Analyze the following context in depth.

CONTEXT:
%s

Respond with a JSON object:
{
  "keyInsights": ["insight 1", "insight 2"],
  "concerns": ["concern 1"],
  "requirements": ["requirement 1"],
  "edgeCases": ["edge case 1"],
  "domainConsiderations": ["consideration 1"],
  "reasoning": "How you reached these conclusions",
  "confidence": 0.8
}`, domain, renderContext(context))
}

// ChainOfThoughtPrompt asks the model to reason step by step before generation.
func ChainOfThoughtPrompt(goal string, context interface{}, plan *Plan) string {
	return fmt.Sprintf(`Work through this goal step by step before producing output.

GOAL: %s

PLAN: %s

CONTEXT:
%s

Respond with a JSON object:
{
  "reasoning": "Your step-by-step chain of thought",
  "conclusion": "What the output should contain",
  "confidence": 0.8
}`, goal, plan.Approach, renderContext(context))
}

// ReflectionPrompt asks the model to critique an output against the goal.
func ReflectionPrompt(output interface{}, goal string, context interface{}) string {
	return fmt.Sprintf(`Critique the following output against its goal. Be specific and honest.

GOAL: %s

OUTPUT:
%s

Respond with a JSON object:
{
  "strengths": ["strength 1"],
  "weaknesses": ["weakness 1"],
  "gaps": ["gap 1"],
  "improvements": ["specific improvement 1"],
  "needsRefinement": true,
  "overallQuality": "good",
  "reasoning": "Why you judged it this way",
  "confidence": 0.8
}`, goal, renderContext(output))
}

// RefinementPrompt asks the model to improve the output per the reflection.
func RefinementPrompt(originalOutput interface{}, reflection *Reflection, goal string, context interface{}) string {
	return fmt.Sprintf(`Improve the output below based on the critique.

GOAL: %s

ORIGINAL OUTPUT:
%s

WEAKNESSES: %s
GAPS: %s
IMPROVEMENTS TO MAKE: %s

Respond with a JSON object:
{
  "refinedOutput": { ... the improved output, same shape as the original ... },
  "improvementsMade": ["what you changed"],
  "reasoning": "Why these changes address the critique",
  "confidence": 0.85
}`, goal, renderContext(originalOutput),
		strings.Join(reflection.Weaknesses, "; "),
		strings.Join(reflection.Gaps, "; "),
		strings.Join(reflection.Improvements, "; "))
}

// ValidationPrompt asks the model for a final quality check against fixed requirements.
func ValidationPrompt(output interface{}, goal string, requirements []string) string {
	var reqs strings.Builder
	for _, r := range requirements {
		reqs.WriteString("- ")
		reqs.WriteString(r)
		reqs.WriteString("\n")
	}
	return fmt.Sprintf(`Validate the following output against the goal and requirements.

GOAL: %s

REQUIREMENTS:
%s
OUTPUT:
%s

Respond with a JSON object:
{
  "isValid": true,
  "qualityScore": 0.85,
  "finalConfidence": 0.85,
  "errors": [],
  "warnings": [],
  "reasoning": "Your assessment"
}`, goal, reqs.String(), renderContext(output))
}

// ExtractDomain classifies a goal into a domain label by keyword matching.
func ExtractDomain(goal string) string {
	lower := strings.ToLower(goal)
	switch {
	case strings.Contains(lower, "risk"):
		return "Risk Management"
	case strings.Contains(lower, "compliance"):
		return "Compliance"
	case strings.Contains(lower, "security"):
		return "Security"
	case strings.Contains(lower, "ethics"):
		return "Ethics"
	case strings.Contains(lower, "performance"):
		return "Performance"
	case strings.Contains(lower, "cost"):
		return "Cost Optimization"
	default:
		return "General"
	}
}

// renderContext serializes an arbitrary context payload for prompt inclusion.
func renderContext(context interface{}) string {
	if context == nil {
		return "(none)"
	}
	if s, ok := context.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", context)
	}
	return string(data)
}
