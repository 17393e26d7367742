package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"RepoScout/internal/domain"
)

type fakeJudge struct {
	signals domain.SoftSignals
	err     error
}

func (f *fakeJudge) JudgeAuthenticity(_ context.Context, _, _ string) (domain.SoftSignals, error) {
	return f.signals, f.err
}

func allPositiveSignals() domain.SoftSignals {
	return domain.SoftSignals{
		AuthorOwnership:   true,
		RealCommitPattern: true,
		HumanReadme:       true,
		FocusedScope:      true,
		SimpleStructure:   true,
		NoCorpBranching:   true,
		HonestTone:        true,
		RealProject:       true,
	}
}

func personalCandidate() *domain.CandidateRepository {
	return &domain.CandidateRepository{
		FullName:    "dev/side-project",
		Title:       "side-project",
		Description: "a weekend experiment",
		SizeKB:      5000,
		Stars:       12,
		OpenIssues:  2,
		Activity:    &domain.ActivityMetadata{ContributorCount: 1, BranchCount: 2, PullRequestCount: 1},
	}
}

func TestEvaluateGoldCandidate(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(&fakeJudge{signals: allPositiveSignals()}, 8, nil)
	eval := e.Evaluate(context.Background(), personalCandidate())

	require.False(t, eval.Rejected)
	// 5 hard signals + 8 positive soft signals
	require.Equal(t, 13, eval.Score)
	require.True(t, eval.Gold)
	require.True(t, eval.Signals["contributors"])
	require.True(t, eval.Signals["human_readme"])
}

func TestEvaluateTemplateTitleIsFatal(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(&fakeJudge{signals: allPositiveSignals()}, 8, nil)

	cand := personalCandidate()
	cand.Title = "React Starter Template"

	eval := e.Evaluate(context.Background(), cand)
	require.True(t, eval.Rejected)
	require.Equal(t, "detected as template/boilerplate", eval.Reason)
	require.Equal(t, 0, eval.Score)
	require.False(t, eval.Gold)
}

func TestEvaluateFatalCeilings(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(nil, 8, nil)

	issues := personalCandidate()
	issues.OpenIssues = 10
	require.True(t, e.Evaluate(context.Background(), issues).Rejected)

	prs := personalCandidate()
	prs.Activity.PullRequestCount = 10
	require.True(t, e.Evaluate(context.Background(), prs).Rejected)

	branches := personalCandidate()
	branches.Activity.BranchCount = 6
	require.True(t, e.Evaluate(context.Background(), branches).Rejected)

	// at the branch ceiling exactly is still fine
	atCeiling := personalCandidate()
	atCeiling.Activity.BranchCount = 5
	require.False(t, e.Evaluate(context.Background(), atCeiling).Rejected)
}

func TestEvaluateJudgeTemplateVerdictRejects(t *testing.T) {
	t.Parallel()

	signals := allPositiveSignals()
	signals.IsTemplate = true
	e := NewPersonalEvaluator(&fakeJudge{signals: signals}, 8, nil)

	eval := e.Evaluate(context.Background(), personalCandidate())
	require.True(t, eval.Rejected)
	require.Equal(t, "judged as template/boilerplate", eval.Reason)
	require.False(t, eval.Gold)
}

func TestEvaluateJudgeNotRealProjectRejects(t *testing.T) {
	t.Parallel()

	signals := allPositiveSignals()
	signals.RealProject = false
	e := NewPersonalEvaluator(&fakeJudge{signals: signals}, 8, nil)

	eval := e.Evaluate(context.Background(), personalCandidate())
	require.True(t, eval.Rejected)
	require.Equal(t, "judged as not a real project", eval.Reason)
}

func TestEvaluateJudgeFailureContributesNothing(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(&fakeJudge{err: errors.New("llm down")}, 8, nil)
	eval := e.Evaluate(context.Background(), personalCandidate())

	require.False(t, eval.Rejected)
	require.Equal(t, 5, eval.Score)
	require.False(t, eval.Gold)
}

func TestEvaluateHardSignalBands(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(nil, 8, nil)

	cand := personalCandidate()
	cand.SizeKB = 500 // below the size band
	cand.Stars = 5000 // above the popularity band
	cand.FileList = []string{
		"CODEOWNERS",
		"SECURITY.md",
		".github/workflows/ci.yml",
		".github/workflows/release.yml",
	}

	eval := e.Evaluate(context.Background(), cand)
	require.False(t, eval.Rejected)
	// only the contributor signal holds
	require.Equal(t, 1, eval.Score)
	require.False(t, eval.Signals["size"])
	require.False(t, eval.Signals["stars"])
	require.False(t, eval.Signals["process_files"])
	require.False(t, eval.Signals["ci_cd"])
}

func TestEvaluateMissingActivityIsOptimistic(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(nil, 8, nil)

	cand := personalCandidate()
	cand.Activity = nil

	eval := e.Evaluate(context.Background(), cand)
	require.False(t, eval.Rejected)
	require.True(t, eval.Signals["contributors"])
}

func TestSelectGoldAttachesOutcomes(t *testing.T) {
	t.Parallel()

	e := NewPersonalEvaluator(&fakeJudge{signals: allPositiveSignals()}, 8, nil)

	gold := personalCandidate()
	rejected := personalCandidate()
	rejected.FullName = "corp/boilerplate"
	rejected.Description = "enterprise boilerplate"

	out := e.SelectGold(context.Background(), []*domain.CandidateRepository{gold, rejected})

	require.Len(t, out, 1)
	require.Same(t, gold, out[0])
	require.NotNil(t, gold.Personal)
	require.NotNil(t, rejected.Personal)
	require.True(t, rejected.Personal.Rejected)
}
