package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

const tagSystemPrompt = `You are a GitHub tag generation engine.

Given a research query and optional industry context:
- Generate 30 HIGH-SIGNAL GitHub tags
- Mix business domain + architecture + infra + languages + SPECIFIC TOOLS
- PRIORITIZE standard, existing GitHub topics (e.g., 'machine-learning', 'fintech', 'insurance', 'e-commerce')
- Business domain tags MUST be single words where possible (e.g. 'healthcare' NOT 'healthcare-domain')
- AVOID generic suffixes like '-domain', '-tool', '-platform', '-system' unless standard
- Use lowercase, hyphenated GitHub-style topics
- If one programming language clearly dominates, add a final 'target-<language>' tag
- NO explanations
- NO categorization
- ONE tag per line`

var (
	bulletPrefix = regexp.MustCompile(`^[-*•0-9.]+\s*`)
	invalidChars = regexp.MustCompile(`[^a-z0-9\s\-]+`)
	whitespace   = regexp.MustCompile(`\s+`)
	wordExpr     = regexp.MustCompile(`[a-z0-9-]{3,}`)
)

var fallbackStopWords = map[string]struct{}{
	"limit": {}, "hardware": {}, "constraint": {}, "project": {},
	"personal": {}, "github": {}, "search": {}, "find": {},
	"repos": {}, "repositories": {},
}

// lastResortTag keeps the pipeline alive when every extraction path fails.
const lastResortTag = "machine-learning"

// Expander converts a free-text query into search combos via the chat
// collaborator, with a regex fallback when the model yields nothing usable.
type Expander struct {
	chat       *ChatClient
	maxQueries int
	logger     *slog.Logger
}

var _ ports.QueryExpander = (*Expander)(nil)

// NewExpander wires the chat client; maxQueries caps the combo list.
func NewExpander(chat *ChatClient, maxQueries int, logger *slog.Logger) *Expander {
	if maxQueries <= 0 {
		maxQueries = 100
	}
	return &Expander{chat: chat, maxQueries: maxQueries, logger: logger}
}

// Expand produces the ordered combo list: unique single tags first, then
// shuffled two-tag pairs, capped at maxQueries. A trailing target-<language>
// tag from the model becomes the language filter on every combo.
func (e *Expander) Expand(ctx context.Context, query, industry, excludeTag string) ([]domain.QueryCombo, error) {
	tags := e.generateTags(ctx, query, industry)

	if len(tags) == 0 {
		e.warn("tag generation yielded nothing, using fallback extraction")
		tags = fallbackTags(query)
	}

	var language string
	kept := tags[:0]
	for _, tag := range tags {
		if strings.HasPrefix(tag, "target-") {
			if language == "" {
				language = strings.TrimPrefix(tag, "target-")
			}
			continue
		}
		if excludeTag != "" && tag == excludeTag {
			continue
		}
		kept = append(kept, tag)
	}
	tags = kept

	if len(tags) == 0 {
		e.warn("query empty after filtering, using last-resort tag")
		tags = []string{lastResortTag}
	}

	combos := buildCombos(tags, language, e.maxQueries)
	e.info("query expansion complete", "tags", len(tags), "combos", len(combos))
	return combos, nil
}

func (e *Expander) generateTags(ctx context.Context, query, industry string) []string {
	if e.chat == nil {
		return nil
	}

	user := query
	if industry != "" {
		user = fmt.Sprintf("Industry context: %s\n\nQuery:\n%s", industry, query)
	}

	reply, err := e.chat.Complete(ctx, tagSystemPrompt, user)
	if err != nil {
		e.warn("tag generation failed", "error", err)
		return nil
	}
	return sanitizeTags(strings.Split(reply, "\n"))
}

// sanitizeTags enforces the tag output contract: lowercase hyphenated topics,
// 3..40 chars, at most 3 internal hyphens, deduplicated preserving order.
func sanitizeTags(lines []string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, line := range lines {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		line = bulletPrefix.ReplaceAllString(line, "")
		line = invalidChars.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		line = whitespace.ReplaceAllString(line, "-")

		if len(line) < 3 || len(line) > 40 {
			continue
		}
		if strings.Count(line, "-") > 3 {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		tags = append(tags, line)
	}
	return tags
}

// fallbackTags extracts interesting words straight from the raw query.
func fallbackTags(query string) []string {
	words := wordExpr.FindAllString(strings.ToLower(query), -1)
	seen := make(map[string]struct{})
	var tags []string
	for _, w := range words {
		if _, stop := fallbackStopWords[w]; stop {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tags = append(tags, w)
	}
	return tags
}

// buildCombos prioritizes high-recall single tags, then appends shuffled
// two-tag pairs for precision, up to maxQueries combos.
func buildCombos(tags []string, language string, maxQueries int) []domain.QueryCombo {
	singles := make([]string, len(tags))
	copy(singles, tags)
	sort.Strings(singles)

	var pairs [][2]string
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			pairs = append(pairs, [2]string{tags[i], tags[j]})
		}
	}
	rand.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})

	combos := make([]domain.QueryCombo, 0, maxQueries)
	for _, tag := range singles {
		if len(combos) == maxQueries {
			return combos
		}
		combos = append(combos, domain.QueryCombo{Terms: []string{tag}, Language: language})
	}
	for _, pair := range pairs {
		if len(combos) == maxQueries {
			return combos
		}
		combos = append(combos, domain.QueryCombo{Terms: []string{pair[0], pair[1]}, Language: language})
	}
	return combos
}

func (e *Expander) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Expander) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
