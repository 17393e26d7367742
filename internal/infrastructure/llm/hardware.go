package llm

import (
	"context"
	"log/slog"
	"strings"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

const hardwarePrompt = "Extract any hardware constraints from the user query. " +
	"Return exactly one of: cpu-only, low-memory, mobile, NONE."

// HardwareParser detects a hardware constraint token in the query: a regex
// fast path first, then the chat collaborator as fallback.
type HardwareParser struct {
	chat   *ChatClient
	logger *slog.Logger
}

var _ ports.HardwareDetector = (*HardwareParser)(nil)

// NewHardwareParser wires the chat fallback; chat may be nil (regex only).
func NewHardwareParser(chat *ChatClient, logger *slog.Logger) *HardwareParser {
	return &HardwareParser{chat: chat, logger: logger}
}

// Detect returns the constraint token or "". Detection never fails the run;
// an unusable LLM reply means no constraint.
func (p *HardwareParser) Detect(ctx context.Context, query string) (string, error) {
	lower := strings.ToLower(query)

	if spec := domain.DetectHardwareSpec(lower); spec != "" {
		p.debug("hardware detected by regex", "spec", spec)
		return spec, nil
	}

	if p.chat == nil {
		return "", nil
	}

	reply, err := p.chat.Complete(ctx, hardwarePrompt, query)
	if err != nil {
		p.debug("hardware LLM fallback failed", "error", err)
		return "", nil
	}

	spec := strings.ToLower(strings.TrimSpace(reply))
	if !domain.ValidHardwareSpec(spec) {
		return "", nil
	}
	p.debug("hardware detected by LLM", "spec", spec)
	return spec, nil
}

func (p *HardwareParser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
