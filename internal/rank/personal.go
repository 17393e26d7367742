package rank

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

// Rubric ceilings for the fatal checks. Repositories above any of these look
// like maintained team projects, not personal ones.
const (
	maxOpenIssues  = 10
	maxPullReqs    = 10
	maxBranches    = 5
	judgeRejection = -100
)

var templateKeywords = []string{"template", "boilerplate", "starter kit", "starter-kit", "scaffold"}

var corporateFiles = []string{"CODEOWNERS", "SECURITY.md", "CONTRIBUTING.md", ".github/ISSUE_TEMPLATE"}

// PersonalEvaluator applies the authenticity rubric: fatal checks short-circuit
// to rejection, hard metadata signals accumulate points, and the qualitative
// judge contributes the soft signals. A candidate is "personal gold" iff its
// total clears the bar.
type PersonalEvaluator struct {
	judge   ports.SignalJudge
	goldBar int
	logger  *slog.Logger
}

// NewPersonalEvaluator wires the judge; judge may be nil (hard signals only).
func NewPersonalEvaluator(judge ports.SignalJudge, goldBar int, logger *slog.Logger) *PersonalEvaluator {
	if goldBar <= 0 {
		goldBar = 8
	}
	return &PersonalEvaluator{judge: judge, goldBar: goldBar, logger: logger}
}

// SelectGold evaluates every candidate, attaches the outcome, and returns the
// gold subset in input order.
func (e *PersonalEvaluator) SelectGold(ctx context.Context, candidates []*domain.CandidateRepository) []*domain.CandidateRepository {
	var gold []*domain.CandidateRepository
	for _, cand := range candidates {
		cand.Personal = e.Evaluate(ctx, cand)
		if cand.Personal.Gold {
			gold = append(gold, cand)
		}
	}
	if e.logger != nil {
		e.logger.Info("personal-project evaluation complete", "evaluated", len(candidates), "gold", len(gold))
	}
	return gold
}

// Evaluate scores one candidate against the rubric.
func (e *PersonalEvaluator) Evaluate(ctx context.Context, cand *domain.CandidateRepository) *domain.PersonalEvaluation {
	if reason := e.fatalCheck(cand); reason != "" {
		if e.logger != nil {
			e.logger.Info("candidate rejected", "repo", cand.FullName, "reason", reason)
		}
		return &domain.PersonalEvaluation{Score: 0, Rejected: true, Reason: reason}
	}

	score, signals := e.hardSignals(cand)

	judgeScore, judgeSignals, rejectReason := e.softSignals(ctx, cand)
	score += judgeScore
	for name, value := range judgeSignals {
		signals[name] = value
	}

	eval := &domain.PersonalEvaluation{
		Score:   score,
		Signals: signals,
	}
	if rejectReason != "" {
		eval.Rejected = true
		eval.Reason = rejectReason
		return eval
	}

	eval.Gold = score >= e.goldBar
	return eval
}

// fatalCheck returns a rejection reason, or "" when the candidate survives.
func (e *PersonalEvaluator) fatalCheck(cand *domain.CandidateRepository) string {
	if cand.OpenIssues >= maxOpenIssues {
		return fmt.Sprintf("too many open issues (%d)", cand.OpenIssues)
	}

	var prCount, branchCount int
	if cand.Activity != nil {
		prCount = cand.Activity.PullRequestCount
		branchCount = cand.Activity.BranchCount
	}
	if prCount >= maxPullReqs {
		return fmt.Sprintf("too many pull requests (%d)", prCount)
	}
	// Zero may mean the probe failed, so only fail above the ceiling.
	if branchCount > maxBranches {
		return fmt.Sprintf("too many branches (%d)", branchCount)
	}

	titleDesc := strings.ToLower(cand.Title + " " + cand.Description)
	for _, keyword := range templateKeywords {
		if strings.Contains(titleDesc, keyword) {
			return "detected as template/boilerplate"
		}
	}
	return ""
}

// hardSignals accumulates the metadata points: contributor band, size band,
// absence of corporate process files, shallow CI, and modest popularity.
func (e *PersonalEvaluator) hardSignals(cand *domain.CandidateRepository) (int, map[string]bool) {
	score := 0
	signals := make(map[string]bool)

	// Missing contributor data is read optimistically as a solo author.
	contributors := 1
	if cand.Activity != nil && cand.Activity.ContributorCount > 0 {
		contributors = cand.Activity.ContributorCount
	}
	signals["contributors"] = contributors >= 1 && contributors <= 3
	if signals["contributors"] {
		score++
	}

	signals["size"] = cand.SizeKB >= 1000 && cand.SizeKB <= 200000
	if signals["size"] {
		score++
	}

	found := 0
	for _, marker := range corporateFiles {
		for _, path := range cand.FileList {
			if strings.Contains(path, marker) {
				found++
				break
			}
		}
	}
	signals["process_files"] = found <= 1
	if signals["process_files"] {
		score++
	}

	workflows := 0
	for _, path := range cand.FileList {
		if strings.Contains(path, ".github/workflows") {
			workflows++
		}
	}
	signals["ci_cd"] = workflows <= 1
	if signals["ci_cd"] {
		score++
	}

	signals["stars"] = cand.Stars >= 0 && cand.Stars <= 50
	if signals["stars"] {
		score++
	}

	return score, signals
}

// softSignals delegates the qualitative judgments. A judge failure contributes
// nothing rather than failing the candidate; a template or not-a-real-project
// verdict forces the same outcome as a fatal check.
func (e *PersonalEvaluator) softSignals(ctx context.Context, cand *domain.CandidateRepository) (int, map[string]bool, string) {
	if e.judge == nil {
		return 0, nil, ""
	}

	verdict, err := e.judge.JudgeAuthenticity(ctx, cand.Title, cand.CombinedDoc)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("authenticity judge failed", "repo", cand.FullName, "error", err)
		}
		return 0, nil, ""
	}

	signals := map[string]bool{
		"author_ownership":    verdict.AuthorOwnership,
		"real_commit_pattern": verdict.RealCommitPattern,
		"human_readme":        verdict.HumanReadme,
		"focused_scope":       verdict.FocusedScope,
		"simple_structure":    verdict.SimpleStructure,
		"no_corp_branching":   verdict.NoCorpBranching,
		"honest_tone":         verdict.HonestTone,
		"is_template":         verdict.IsTemplate,
		"real_project":        verdict.RealProject,
	}

	if verdict.IsTemplate {
		return judgeRejection, signals, "judged as template/boilerplate"
	}
	if !verdict.RealProject {
		return judgeRejection, signals, "judged as not a real project"
	}

	score := 0
	for _, positive := range []bool{
		verdict.AuthorOwnership,
		verdict.RealCommitPattern,
		verdict.HumanReadme,
		verdict.FocusedScope,
		verdict.SimpleStructure,
		verdict.NoCorpBranching,
		verdict.HonestTone,
		verdict.RealProject,
	} {
		if positive {
			score++
		}
	}
	return score, signals, ""
}
