package query

import (
	"strings"
)

// Fixed filter clauses applied to every search
const (
	OpenFilter       = "state:open"
	LabelFilter      = `label:"good first issue","help wanted"`
	UnassignedFilter = "no:assignee"
)

// Build combines the fixed filters with one language term per entry.
// Language names are passed through as-is; the search provider decides
// whether they mean anything.
func Build(languages []string) string {
	terms := make([]string, 0, len(languages))
	for _, lang := range languages {
		terms = append(terms, languageTerm(lang))
	}

	parts := []string{
		OpenFilter,
		LabelFilter,
		UnassignedFilter,
		"(" + strings.Join(terms, " OR ") + ")",
	}

	return strings.Join(parts, " ")
}

func languageTerm(lang string) string {
	lang = strings.TrimSpace(lang)
	if strings.ContainsAny(lang, " \t") {
		return `language:"` + lang + `"`
	}
	return "language:" + lang
}
