package rank

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

// RerankConfig carries the chunking parameters and the documentation-quality
// adjustment constants.
type RerankConfig struct {
	ChunkSize       int
	MaxDocLength    int
	MinDocLength    int
	LowDocThreshold int
	SparsePenalty   float64
	TopN            int
}

// Reranker rescans the semantic shortlist with the cross-encoder collaborator
// and adjusts raw scores with documentation-quality heuristics.
type Reranker struct {
	encoder ports.CrossEncoder
	cfg     RerankConfig
	logger  *slog.Logger
}

// NewReranker wires the cross-encoder; zero config fields get the defaults.
func NewReranker(encoder ports.CrossEncoder, cfg RerankConfig, logger *slog.Logger) *Reranker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 2000
	}
	if cfg.MaxDocLength <= 0 {
		cfg.MaxDocLength = 5000
	}
	if cfg.MinDocLength <= 0 {
		cfg.MinDocLength = 200
	}
	if cfg.LowDocThreshold <= 0 {
		cfg.LowDocThreshold = 400
	}
	if cfg.SparsePenalty <= 0 {
		cfg.SparsePenalty = 5.0
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 20
	}
	return &Reranker{encoder: encoder, cfg: cfg, logger: logger}
}

// Rerank scores every candidate against the query, applies the documentation
// boost/penalty, shifts the batch so its minimum score is non-negative, and
// returns the top N by adjusted score. Empty input yields an empty result
// with a logged warning, never an error.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []*domain.CandidateRepository) []*domain.CandidateRepository {
	if len(candidates) == 0 {
		if r.logger != nil {
			r.logger.Warn("no candidates to rerank")
		}
		return nil
	}

	for _, cand := range candidates {
		cand.Scores.CrossEncoderScore = r.scoreCandidate(ctx, query, cand)
	}

	for _, cand := range candidates {
		r.adjustForDocumentation(cand)
	}

	ShiftScoresNonNegative(candidates)

	ranked := make([]*domain.CandidateRepository, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.CrossEncoderScore > ranked[j].Scores.CrossEncoderScore
	})

	if len(ranked) > r.cfg.TopN {
		ranked = ranked[:r.cfg.TopN]
	}
	if r.logger != nil {
		r.logger.Info("cross-encoder reranking complete", "remaining", len(ranked))
	}
	return ranked
}

// scoreCandidate caps the document, scores short docs as one pair, and splits
// long ones into chunks combined as 0.5*max + 0.5*mean: one strong passage is
// rewarded without letting a single outlier dominate. Any scoring failure
// yields exactly 0.
func (r *Reranker) scoreCandidate(ctx context.Context, query string, cand *domain.CandidateRepository) float64 {
	doc := cand.CombinedDoc
	if len(doc) > r.cfg.MaxDocLength {
		doc = doc[:r.cfg.MaxDocLength]
	}

	if len(doc) < r.cfg.MinDocLength {
		scores, err := r.encoder.ScorePairs(ctx, query, []string{doc})
		if err != nil || len(scores) == 0 {
			r.scoreFailure(cand.FullName, err)
			return 0.0
		}
		return scores[0]
	}

	chunks := splitChunks(doc, r.cfg.ChunkSize)
	scores, err := r.encoder.ScorePairs(ctx, query, chunks)
	if err != nil || len(scores) == 0 {
		r.scoreFailure(cand.FullName, err)
		return 0.0
	}

	maxScore := scores[0]
	var sum float64
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
		sum += s
	}
	mean := sum / float64(len(scores))
	return 0.5*maxScore + 0.5*mean
}

// adjustForDocumentation adds a diminishing-returns boost for substantive
// docs and a flat penalty when both README and architecture docs are scant.
func (r *Reranker) adjustForDocumentation(cand *domain.CandidateRepository) {
	readmeSize := float64(cand.ReadmeSize)
	archSize := float64(cand.ArchDocsSize)

	boost := 0.5 * (math.Log10(readmeSize+1) + math.Log10(archSize+1))

	var penalty float64
	if cand.ReadmeSize < r.cfg.LowDocThreshold && cand.ArchDocsSize < r.cfg.LowDocThreshold {
		penalty = r.cfg.SparsePenalty
	}

	original := cand.Scores.CrossEncoderScore
	cand.Scores.CrossEncoderScore = original + boost - penalty

	if r.logger != nil && math.Abs(boost-penalty) > 0.1 {
		r.logger.Info("documentation score adjustment",
			"repo", cand.FullName,
			"before", original,
			"after", cand.Scores.CrossEncoderScore,
			"boost", boost,
			"penalty", penalty)
	}
}

// ShiftScoresNonNegative shifts every candidate's cross-encoder score upward
// by the magnitude of the most negative one, so the batch minimum becomes
// exactly zero. Relative ordering is preserved.
func ShiftScoresNonNegative(candidates []*domain.CandidateRepository) {
	if len(candidates) == 0 {
		return
	}
	minScore := candidates[0].Scores.CrossEncoderScore
	for _, cand := range candidates[1:] {
		if cand.Scores.CrossEncoderScore < minScore {
			minScore = cand.Scores.CrossEncoderScore
		}
	}
	if minScore >= 0 {
		return
	}
	for _, cand := range candidates {
		cand.Scores.CrossEncoderScore += -minScore
	}
}

func splitChunks(text string, size int) []string {
	var chunks []string
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

func (r *Reranker) scoreFailure(fullName string, err error) {
	if r.logger != nil {
		r.logger.Warn("cross-encoder scoring failed", "repo", fullName, "error", err)
	}
}
