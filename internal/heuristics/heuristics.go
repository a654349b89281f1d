// Package heuristics evaluates a described UX problem against a fixed
// catalog of heuristic rules. The catalog is read-only after process start.
package heuristics

import "strings"

// Severity levels, ordinal.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Rule is one entry of the heuristic catalog.
type Rule struct {
	ID             string   `json:"id"`
	Severity       string   `json:"severity"`
	Keywords       []string `json:"keywords"`
	Risk           string   `json:"risk"`
	Recommendation string   `json:"recommendation"`
}

// Summary is the condensed view of a matched rule.
type Summary struct {
	ID             string `json:"id"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Evaluation is the result of running the catalog against a query.
type Evaluation struct {
	Input   string    `json:"input"`
	Matched []Rule    `json:"matched"`
	Summary []Summary `json:"summary"`
}

// catalog is iterated in declaration order, which also governs output order.
var catalog = []Rule{
	{
		ID:             "visibility_of_system_status",
		Severity:       SeverityHigh,
		Keywords:       []string{"nothing happens", "no feedback", "stuck", "loading", "spinner", "frozen"},
		Risk:           "Users are unsure whether their action was registered, causing confusion and drop-off.",
		Recommendation: "Add immediate feedback: loading indicator, disable button on click, show progress and clear error states.",
	},
	{
		ID:             "price_transparency",
		Severity:       SeverityHigh,
		Keywords:       []string{"shipping", "delivery", "fees", "total", "price", "cost", "tax"},
		Risk:           "Hidden costs reduce trust and increase checkout abandonment.",
		Recommendation: "Show full price breakdown early (items, shipping, tax, fees) and keep it visible throughout checkout.",
	},
	{
		ID:             "error_prevention_and_recovery",
		Severity:       SeverityHigh,
		Keywords:       []string{"error", "failed", "doesn't work", "not working", "validation", "required"},
		Risk:           "Silent validation and network errors block users without guidance.",
		Recommendation: "Validate inline, show field-level errors, preserve form state, and provide recovery actions.",
	},
	{
		ID:             "cta_clarity",
		Severity:       SeverityMedium,
		Keywords:       []string{"continue", "next", "cta", "button", "submit", "pay"},
		Risk:           "Ambiguous CTAs and weak hierarchy prevent users from progressing.",
		Recommendation: "Use clear CTA labels and strong visual hierarchy; place the CTA consistently.",
	},
	{
		ID:             "information_hierarchy",
		Severity:       SeverityMedium,
		Keywords:       []string{"below the fold", "not visible", "hard to find", "hidden", "confusing"},
		Risk:           "Critical information is missed due to poor layout and hierarchy.",
		Recommendation: "Move key info above the fold and increase prominence; reduce clutter.",
	},
}

// Catalog returns the rule catalog in declaration order.
func Catalog() []Rule {
	return catalog
}

// Evaluate runs every catalog rule against the query. A rule matches when any
// of its keywords is a case-insensitive substring of the trimmed query; a
// query may match zero, one, or several rules. Pure and deterministic: ties
// are broken solely by catalog declaration order.
func Evaluate(query string) Evaluation {
	text := strings.ToLower(strings.TrimSpace(query))

	matched := make([]Rule, 0)
	for _, rule := range catalog {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, rule)
				break
			}
		}
	}

	summary := make([]Summary, 0, len(matched))
	for _, rule := range matched {
		summary = append(summary, Summary{
			ID:             rule.ID,
			Severity:       rule.Severity,
			Recommendation: rule.Recommendation,
		})
	}

	return Evaluation{Input: query, Matched: matched, Summary: summary}
}
