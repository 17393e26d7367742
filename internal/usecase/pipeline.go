package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
	"RepoScout/internal/rank"
)

// FinalScorer attaches display-only final scores to the merged candidate set.
// The weighting is a downstream concern; the pipeline only requires that it
// fills Scores.FinalScore for ordering.
type FinalScorer func(candidates []*domain.CandidateRepository)

// PipelineDeps wires all collaborators and stage objects into one run.
type PipelineDeps struct {
	Hardware     ports.HardwareDetector
	Expander     ports.QueryExpander
	Source       ports.SearchSource
	Semantic     *rank.SemanticRanker
	Reranker     *rank.Reranker
	Filter       *rank.ThresholdFilter
	Personal     *rank.PersonalEvaluator
	Reporter     ports.Reporter
	FinalScore   FinalScorer
	SemanticTopN int
	Logger       *slog.Logger
}

// Pipeline implements the repository discovery and ranking workflow. Stages
// run strictly in sequence; no stage starts before the previous one fully
// completes for the current query.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.SemanticTopN <= 0 {
		deps.SemanticTopN = 100
	}
	if deps.FinalScore == nil {
		deps.FinalScore = DefaultFinalScorer
	}
	return &Pipeline{deps: deps}
}

// Run executes one query end to end and returns the completed run state. No
// stage failure is fatal to the query: the worst-case outcome is an empty or
// unranked list, never an error surfaced for a degraded stage.
func (p *Pipeline) Run(ctx context.Context, query string, projectType domain.ProjectType, industry string) (*domain.RunState, error) {
	state := domain.NewRunState(query, projectType, industry)
	log := p.deps.Logger
	if log != nil {
		log = log.With("run", state.ID)
		log.Info("pipeline run started", "query", query, "mode", string(projectType))
	}

	if p.deps.Hardware != nil {
		spec, err := p.deps.Hardware.Detect(ctx, query)
		if err != nil {
			p.warn(log, "hardware detection failed", "error", err)
		}
		state.HardwareSpec = spec
	}

	if p.deps.Expander != nil {
		combos, err := p.deps.Expander.Expand(ctx, query, industry, state.HardwareSpec)
		if err != nil {
			p.warn(log, "query expansion failed", "error", err)
		}
		state.Combos = combos
	}
	if len(state.Combos) == 0 {
		// The raw query is still a usable single-term search.
		state.Combos = []domain.QueryCombo{{Terms: []string{query}}}
	}

	if p.deps.Source != nil {
		repos, err := p.deps.Source.Discover(ctx, state.Combos, projectType)
		if err != nil {
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			p.warn(log, "ingestion degraded", "error", err)
		}
		state.Repositories = repos
	}
	if len(state.Repositories) == 0 {
		p.warn(log, "no repositories ingested, report will be empty")
	}

	if p.deps.Semantic != nil {
		state.SemanticRanked = p.deps.Semantic.Rank(ctx, query, state.Repositories)
	} else {
		state.SemanticRanked = state.Repositories
	}

	shortlist := state.SemanticRanked
	if len(shortlist) > p.deps.SemanticTopN {
		shortlist = shortlist[:p.deps.SemanticTopN]
	}

	if p.deps.Reranker != nil {
		state.RerankedCandidates = p.deps.Reranker.Rerank(ctx, query, shortlist)
	} else {
		state.RerankedCandidates = shortlist
	}

	if p.deps.Filter != nil {
		state.FilteredCandidates = p.deps.Filter.Apply(ctx, state.RerankedCandidates, state.HardwareSpec)
	} else {
		state.FilteredCandidates = state.RerankedCandidates
	}

	state.Final = p.merge(ctx, state, log)

	p.deps.FinalScore(state.Final)
	sort.SliceStable(state.Final, func(i, j int) bool {
		return state.Final[i].Scores.FinalScore > state.Final[j].Scores.FinalScore
	})

	if log != nil {
		log.Info("pipeline run complete", "final", len(state.Final))
	}

	if p.deps.Reporter != nil {
		if err := p.deps.Reporter.PublishReport(ctx, state); err != nil {
			return state, fmt.Errorf("publish report: %w", err)
		}
	}
	return state, nil
}

// merge combines the candidate streams under the mode's policy. In personal
// mode the gold list from the rubric fixes the admissible set; other streams
// may only update fields on admitted candidates.
func (p *Pipeline) merge(ctx context.Context, state *domain.RunState, log *slog.Logger) []*domain.CandidateRepository {
	if state.ProjectType == domain.ProjectTypePersonal && p.deps.Personal != nil {
		gold := p.deps.Personal.SelectGold(ctx, state.FilteredCandidates)
		if len(gold) == 0 {
			p.warn(log, "no personal-gold candidates, falling back to filtered list")
			return rank.MergeUnion(state.FilteredCandidates)
		}
		return rank.MergeAllowList(gold, state.RerankedCandidates, state.FilteredCandidates)
	}
	return rank.MergeUnion(state.FilteredCandidates)
}

// DefaultFinalScorer blends the batch-normalized cross-encoder score with the
// semantic similarity. Display ordering only; the weights carry no meaning
// beyond "both signals matter, relevance more".
func DefaultFinalScorer(candidates []*domain.CandidateRepository) {
	var maxCE float64
	for _, cand := range candidates {
		if cand.Scores.CrossEncoderScore > maxCE {
			maxCE = cand.Scores.CrossEncoderScore
		}
	}
	for _, cand := range candidates {
		norm := 0.0
		if maxCE > 0 {
			norm = cand.Scores.CrossEncoderScore / maxCE
		}
		cand.Scores.FinalScore = 0.7*norm + 0.3*cand.Scores.SemanticSimilarity
	}
}

func (p *Pipeline) warn(log *slog.Logger, msg string, args ...any) {
	if log != nil {
		log.Warn(msg, args...)
	}
}
