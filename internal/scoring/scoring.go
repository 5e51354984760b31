package scoring

import (
	"fmt"
	"strings"
)

// Input holds the six scored idea fields. A nil field was not provided and
// contributes nothing; a present-but-empty field still scores its base value.
type Input struct {
	Problem       *string
	Solution      *string
	TargetMarket  *string
	BusinessModel *string
	Competition   *string
	Team          *string
}

// Result is the outcome of scoring an idea. Feedback is the rendered text
// block stored alongside the score; the slices carry the same content in
// structured form for callers that don't want to re-parse the text.
type Result struct {
	Score        int
	Category     string
	Strengths    []string
	Improvements []string
	NextSteps    []string
	Feedback     string
}

// fieldRule describes how one field converts text length into points:
// min(max, len/divisor + base). Meeting the threshold earns the strength
// phrase, falling short earns the improvement phrase.
type fieldRule struct {
	max         int
	divisor     int
	base        int
	threshold   int
	strength    string
	improvement string
	value       func(Input) *string
}

// The six field maxima sum to exactly 100.
var fieldRules = []fieldRule{
	{
		max: 20, divisor: 10, base: 5, threshold: 15,
		strength:    "Well-defined problem statement",
		improvement: "Provide more detailed problem description",
		value:       func(in Input) *string { return in.Problem },
	},
	{
		max: 25, divisor: 8, base: 5, threshold: 20,
		strength:    "Comprehensive solution approach",
		improvement: "Elaborate on your solution's unique features",
		value:       func(in Input) *string { return in.Solution },
	},
	{
		max: 20, divisor: 6, base: 5, threshold: 15,
		strength:    "Clear target market definition",
		improvement: "Define your target market more specifically",
		value:       func(in Input) *string { return in.TargetMarket },
	},
	{
		max: 15, divisor: 8, base: 3, threshold: 12,
		strength:    "Solid monetization strategy",
		improvement: "Strengthen your revenue model",
		value:       func(in Input) *string { return in.BusinessModel },
	},
	{
		max: 10, divisor: 10, base: 2, threshold: 8,
		strength:    "Thorough competitive analysis",
		improvement: "Research competitors more thoroughly",
		value:       func(in Input) *string { return in.Competition },
	},
	{
		max: 10, divisor: 8, base: 2, threshold: 8,
		strength:    "Strong team composition",
		improvement: "Highlight relevant team experience",
		value:       func(in Input) *string { return in.Team },
	},
}

// Score computes the 0-100 viability score and feedback block for an idea.
// It is pure and never fails: scoring the same input always yields the same
// result.
func Score(in Input) Result {
	res := Result{}

	for _, rule := range fieldRules {
		text := rule.value(in)
		if text == nil {
			continue
		}
		points := len(*text)/rule.divisor + rule.base
		if points > rule.max {
			points = rule.max
		}
		res.Score += points
		if points >= rule.threshold {
			res.Strengths = append(res.Strengths, rule.strength)
		} else {
			res.Improvements = append(res.Improvements, rule.improvement)
		}
	}

	switch {
	case res.Score >= 80:
		res.Category = "Excellent viability with high market potential"
		res.NextSteps = []string{
			"Create detailed MVP roadmap",
			"Conduct user interviews",
			"Develop go-to-market strategy",
			"Seek initial funding",
		}
	case res.Score >= 60:
		res.Category = "Good potential with some areas for improvement"
		res.NextSteps = []string{
			"Validate assumptions with target users",
			"Refine value proposition",
			"Build prototype",
			"Test market demand",
		}
	case res.Score >= 40:
		res.Category = "Moderate potential, needs significant development"
		res.NextSteps = []string{
			"Conduct market research",
			"Clarify unique selling proposition",
			"Validate problem-solution fit",
			"Strengthen business model",
		}
	default:
		res.Category = "Low viability, major improvements needed"
		res.NextSteps = []string{
			"Redefine core problem",
			"Research market thoroughly",
			"Develop unique solution approach",
			"Consider pivot opportunities",
		}
	}

	res.Feedback = renderFeedback(res)
	return res
}

// renderFeedback formats the feedback text block. The section headers and
// bullet prefix are a wire contract: the frontend splits the text back into
// sections on these exact markers.
func renderFeedback(res Result) string {
	return fmt.Sprintf("Score: %d/100 - %s\n\nStrengths:\n%s\n\nAreas for Improvement:\n%s\n\nRecommended Next Steps:\n%s",
		res.Score,
		res.Category,
		bullets(res.Strengths),
		bullets(res.Improvements),
		bullets(res.NextSteps),
	)
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}
