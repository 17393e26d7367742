package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"RepoScout/internal/domain"
	"RepoScout/internal/rank"
)

type stubDetector struct{ spec string }

func (s *stubDetector) Detect(context.Context, string) (string, error) { return s.spec, nil }

type stubExpander struct {
	combos  []domain.QueryCombo
	err     error
	exclude string
}

func (s *stubExpander) Expand(_ context.Context, _, _, excludeTag string) ([]domain.QueryCombo, error) {
	s.exclude = excludeTag
	return s.combos, s.err
}

type stubSource struct {
	repos  []*domain.CandidateRepository
	err    error
	combos []domain.QueryCombo
	mode   domain.ProjectType
}

func (s *stubSource) Discover(_ context.Context, combos []domain.QueryCombo, mode domain.ProjectType) ([]*domain.CandidateRepository, error) {
	s.combos = combos
	s.mode = mode
	return s.repos, s.err
}

type stubEmbedder struct{ vectors [][]float32 }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.vectors != nil {
		return s.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type stubEncoder struct{ scores map[string]float64 }

func (s *stubEncoder) ScorePairs(_ context.Context, _ string, passages []string) ([]float64, error) {
	out := make([]float64, len(passages))
	for i, p := range passages {
		out[i] = s.scores[p]
	}
	return out, nil
}

type stubJudge struct{ signals domain.SoftSignals }

func (s *stubJudge) JudgeAuthenticity(context.Context, string, string) (domain.SoftSignals, error) {
	return s.signals, nil
}

type captureReporter struct {
	state *domain.RunState
	err   error
}

func (c *captureReporter) PublishReport(_ context.Context, state *domain.RunState) error {
	c.state = state
	return c.err
}

func candidate(name, doc string, readme int) *domain.CandidateRepository {
	return &domain.CandidateRepository{
		FullName:     name,
		Title:        name,
		CombinedDoc:  doc,
		ReadmeSize:   readme,
		ArchDocsSize: readme,
		SizeKB:       5000,
		Stars:        10,
		Activity:     &domain.ActivityMetadata{ContributorCount: 1, BranchCount: 1},
	}
}

func testDeps(source *stubSource, reporter *captureReporter, scores map[string]float64) PipelineDeps {
	return PipelineDeps{
		Hardware: &stubDetector{},
		Expander: &stubExpander{combos: []domain.QueryCombo{{Terms: []string{"tag"}}}},
		Source:   source,
		Semantic: rank.NewSemanticRanker(&stubEmbedder{}, 0, nil),
		Reranker: rank.NewReranker(&stubEncoder{scores: scores}, rank.RerankConfig{}, nil),
		Filter:   rank.NewThresholdFilter(0.3, false, nil, nil),
		Personal: rank.NewPersonalEvaluator(nil, 8, nil),
		Reporter: reporter,
	}
}

func TestRunAllModeEndToEnd(t *testing.T) {
	t.Parallel()

	repos := []*domain.CandidateRepository{
		candidate("x/strong", "strong doc", 5000),
		candidate("x/weak", "weak doc", 5000),
	}
	source := &stubSource{repos: repos}
	reporter := &captureReporter{}
	deps := testDeps(source, reporter, map[string]float64{"strong doc": 2.0, "weak doc": 0.5})

	p := NewPipeline(deps)
	state, err := p.Run(context.Background(), "my query", domain.ProjectTypeAll, "")
	require.NoError(t, err)

	require.Equal(t, domain.ProjectTypeAll, source.mode)
	require.Len(t, state.Final, 2)
	require.Equal(t, "x/strong", state.Final[0].FullName)
	require.GreaterOrEqual(t, state.Final[0].Scores.FinalScore, state.Final[1].Scores.FinalScore)
	require.Same(t, state, reporter.state)
}

func TestRunExpanderFailureFallsBackToRawQuery(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	reporter := &captureReporter{}
	deps := testDeps(source, reporter, nil)
	deps.Expander = &stubExpander{err: errors.New("llm down")}

	p := NewPipeline(deps)
	_, err := p.Run(context.Background(), "raw query", domain.ProjectTypeAll, "")
	require.NoError(t, err)

	require.Len(t, source.combos, 1)
	require.Equal(t, []string{"raw query"}, source.combos[0].Terms)
}

func TestRunSourceFailureProducesEmptyReport(t *testing.T) {
	t.Parallel()

	source := &stubSource{err: errors.New("api down")}
	reporter := &captureReporter{}

	p := NewPipeline(testDeps(source, reporter, nil))
	state, err := p.Run(context.Background(), "query", domain.ProjectTypeAll, "")
	require.NoError(t, err)
	require.Empty(t, state.Final)
	require.NotNil(t, reporter.state)
}

func TestRunHardwareTokenExcludedFromExpansion(t *testing.T) {
	t.Parallel()

	expander := &stubExpander{combos: []domain.QueryCombo{{Terms: []string{"tag"}}}}
	source := &stubSource{}
	deps := testDeps(source, &captureReporter{}, nil)
	deps.Hardware = &stubDetector{spec: domain.HardwareMobile}
	deps.Expander = expander

	p := NewPipeline(deps)
	state, err := p.Run(context.Background(), "run on mobile", domain.ProjectTypeAll, "")
	require.NoError(t, err)
	require.Equal(t, domain.HardwareMobile, state.HardwareSpec)
	require.Equal(t, domain.HardwareMobile, expander.exclude)
}

func TestRunPersonalModeAllowListsGold(t *testing.T) {
	t.Parallel()

	goldSignals := domain.SoftSignals{
		AuthorOwnership:   true,
		RealCommitPattern: true,
		HumanReadme:       true,
		FocusedScope:      true,
		SimpleStructure:   true,
		NoCorpBranching:   true,
		HonestTone:        true,
		RealProject:       true,
	}

	authentic := candidate("dev/side", "honest doc", 5000)
	corporate := candidate("corp/product", "corporate doc", 5000)
	corporate.OpenIssues = 50 // fatal in the rubric

	source := &stubSource{repos: []*domain.CandidateRepository{authentic, corporate}}
	deps := testDeps(source, &captureReporter{}, map[string]float64{"honest doc": 1.0, "corporate doc": 2.0})
	deps.Personal = rank.NewPersonalEvaluator(&stubJudge{signals: goldSignals}, 8, nil)

	p := NewPipeline(deps)
	state, err := p.Run(context.Background(), "query", domain.ProjectTypePersonal, "")
	require.NoError(t, err)

	require.Equal(t, domain.ProjectTypePersonal, source.mode)
	require.Len(t, state.Final, 1)
	require.Equal(t, "dev/side", state.Final[0].FullName)
	require.NotNil(t, state.Final[0].Personal)
	require.True(t, state.Final[0].Personal.Gold)
}

func TestRunPersonalModeNoGoldFallsBack(t *testing.T) {
	t.Parallel()

	// without a judge the rubric tops out below the gold bar
	source := &stubSource{repos: []*domain.CandidateRepository{candidate("dev/side", "doc", 5000)}}
	deps := testDeps(source, &captureReporter{}, map[string]float64{"doc": 1.0})

	p := NewPipeline(deps)
	state, err := p.Run(context.Background(), "query", domain.ProjectTypePersonal, "")
	require.NoError(t, err)
	require.Len(t, state.Final, 1)
	require.Equal(t, "dev/side", state.Final[0].FullName)
}

func TestRunReporterErrorSurfaces(t *testing.T) {
	t.Parallel()

	source := &stubSource{repos: []*domain.CandidateRepository{candidate("x/a", "doc", 5000)}}
	reporter := &captureReporter{err: errors.New("pipe closed")}

	p := NewPipeline(testDeps(source, reporter, map[string]float64{"doc": 1.0}))
	_, err := p.Run(context.Background(), "query", domain.ProjectTypeAll, "")
	require.ErrorContains(t, err, "publish report")
}

func TestDefaultFinalScorer(t *testing.T) {
	t.Parallel()

	a := &domain.CandidateRepository{Scores: domain.ScoreSet{CrossEncoderScore: 4, SemanticSimilarity: 0.5}}
	b := &domain.CandidateRepository{Scores: domain.ScoreSet{CrossEncoderScore: 2, SemanticSimilarity: 1.0}}

	DefaultFinalScorer([]*domain.CandidateRepository{a, b})

	require.InDelta(t, 0.7*1.0+0.3*0.5, a.Scores.FinalScore, 1e-9)
	require.InDelta(t, 0.7*0.5+0.3*1.0, b.Scores.FinalScore, 1e-9)
}

func TestDefaultFinalScorerZeroScores(t *testing.T) {
	t.Parallel()

	cand := &domain.CandidateRepository{Scores: domain.ScoreSet{SemanticSimilarity: 0.4}}
	DefaultFinalScorer([]*domain.CandidateRepository{cand})
	require.InDelta(t, 0.3*0.4, cand.Scores.FinalScore, 1e-9)
}
