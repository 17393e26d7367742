package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

const hardwareFilterSystem = `You are a deployment feasibility checker for machine learning repositories.
Given a hardware constraint and a repository's documentation, decide whether the
repository can realistically run under that constraint.
Answer with exactly one word: YES or NO.`

const maxFilterSnippet = 3000

// HardwareJudge screens candidates against a hardware constraint using the
// chat model. Implements ports.HardwareFilter.
type HardwareJudge struct {
	chat   *ChatClient
	logger *slog.Logger
}

var _ ports.HardwareFilter = (*HardwareJudge)(nil)

func NewHardwareJudge(chat *ChatClient, logger *slog.Logger) *HardwareJudge {
	return &HardwareJudge{chat: chat, logger: logger}
}

// FilterCompatible keeps the candidates the model approves for the given
// constraint. A candidate the model cannot assess is kept; dropping results
// on a transient failure would be worse than a loose filter.
func (h *HardwareJudge) FilterCompatible(ctx context.Context, spec string, candidates []*domain.CandidateRepository) ([]*domain.CandidateRepository, error) {
	if h.chat == nil || spec == "" {
		return candidates, nil
	}
	kept := make([]*domain.CandidateRepository, 0, len(candidates))
	for _, cand := range candidates {
		doc := cand.CombinedDoc
		if len(doc) > maxFilterSnippet {
			doc = doc[:maxFilterSnippet]
		}
		user := fmt.Sprintf("Hardware constraint: %s\n\nRepository: %s\n\nDocumentation:\n%s", spec, cand.FullName, doc)
		reply, err := h.chat.Complete(ctx, hardwareFilterSystem, user)
		if err != nil {
			if ctx.Err() != nil {
				return kept, ctx.Err()
			}
			if h.logger != nil {
				h.logger.Warn("hardware check failed, keeping candidate", "repo", cand.FullName, "error", err)
			}
			kept = append(kept, cand)
			continue
		}
		verdict := strings.ToUpper(strings.TrimSpace(reply))
		if !strings.HasPrefix(verdict, "NO") {
			kept = append(kept, cand)
		}
	}
	return kept, nil
}
