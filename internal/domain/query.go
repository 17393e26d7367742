package domain

import "strings"

const languageTagPrefix = "target-"

// QueryCombo is one expanded search combination: a set of tags that ingestion
// ORs into one search request per term, plus an optional language filter.
type QueryCombo struct {
	Terms    []string
	Language string
}

// ParseQueryCombo decodes the expander's colon-separated combo string, e.g.
// "auto-insurance:cost-prediction:target-python". A trailing "target-<lang>"
// pseudo-tag becomes the language filter instead of a search term.
func ParseQueryCombo(raw string) QueryCombo {
	var combo QueryCombo
	for _, part := range strings.Split(raw, ":") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, languageTagPrefix) {
			combo.Language = strings.TrimPrefix(part, languageTagPrefix)
			continue
		}
		combo.Terms = append(combo.Terms, part)
	}
	return combo
}

// SearchQueries explodes the combo into one search query per term. Terms are
// OR-ed across requests rather than AND-ed inside one.
func (c QueryCombo) SearchQueries(starFilter string) []string {
	queries := make([]string, 0, len(c.Terms))
	for _, term := range c.Terms {
		q := term + " " + starFilter
		if c.Language != "" {
			q += " language:" + c.Language
		}
		queries = append(queries, q)
	}
	return queries
}
