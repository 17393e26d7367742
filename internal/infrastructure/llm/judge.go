package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

const judgeSystemPrompt = `You are an expert Code Auditor. Evaluate this repository README for "Personal Project Authenticity".

FATAL CONSTRAINT: If the README explicitly states this is a "template", "boilerplate", "starter kit", or "tutorial code", YOU MUST MARK 'is_template' as TRUE.
STRICT REQUIREMENT: verify 'real_project'. It must appear to be a functioning tool or application with a specific purpose, NOT just a setup guide or "Hello World" scaffold.

Answer with JSON boolean (true/false) for each criterion:

1. "author_ownership": Does the tone imply a single/small group author (e.g., "I built this", "My attempt") rather than a corporate "We"?
2. "real_commit_pattern": Does the readme mention specific, honest fixes (e.g., "Fixed retry logic", "Added edge case handling") or limitations?
3. "human_readme": Is the README written by a human explaining the "Why"? (Reject if generic/auto-generated).
4. "focused_scope": Does it solve ONE clear problem with 5-10 features? (Reject "Everything app" or "All-in-one").
5. "simple_structure": Does it describe a simple architecture (e.g. Frontend+Backend)? (Reject complex microservices).
6. "no_corp_branching": Does it lack rigid release/branching terminology?
7. "honest_tone": Does it include TODOs, FIXMEs, or honest admission of bugs? (Reject over-polished tone).
8. "is_template": Is this a template, boilerplate, or starter kit? (True = BAD).
9. "real_project": Does this look like a real, functioning project based on a specific topic (vs just a boilerplate)? (True = GOOD).

Return ONLY valid JSON with exactly those nine keys.`

// maxReadmeSnippet bounds how much README text the judge sees.
const maxReadmeSnippet = 6000

// Judge delegates the qualitative authenticity signals to the chat
// collaborator and decodes its JSON verdict.
type Judge struct {
	chat *ChatClient
}

var _ ports.SignalJudge = (*Judge)(nil)

// NewJudge wires the chat client.
func NewJudge(chat *ChatClient) *Judge {
	return &Judge{chat: chat}
}

// JudgeAuthenticity returns the nine boolean signals for one repository.
func (j *Judge) JudgeAuthenticity(ctx context.Context, title, readme string) (domain.SoftSignals, error) {
	var signals domain.SoftSignals
	if j.chat == nil {
		return signals, fmt.Errorf("judge chat client not configured")
	}

	snippet := readme
	if snippet == "" {
		snippet = "No README."
	}
	if len(snippet) > maxReadmeSnippet {
		snippet = snippet[:maxReadmeSnippet]
	}

	user := fmt.Sprintf("Repo Title: %s\nREADME Snippet:\n%s", title, snippet)
	reply, err := j.chat.Complete(ctx, judgeSystemPrompt, user)
	if err != nil {
		return signals, fmt.Errorf("judge completion: %w", err)
	}

	block, ok := extractJSONObject(reply)
	if !ok {
		return signals, fmt.Errorf("judge reply contains no JSON object")
	}
	if err := json.Unmarshal([]byte(block), &signals); err != nil {
		return signals, fmt.Errorf("decode judge verdict: %w", err)
	}
	return signals, nil
}
