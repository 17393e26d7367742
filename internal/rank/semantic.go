package rank

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

// SemanticRanker orders candidates by embedding similarity to the query. The
// embedding math lives behind the Embedder port; the ranker owns only the
// orchestration contract: truncation before embedding, a stable descending
// sort, and insertion order on exact ties.
type SemanticRanker struct {
	embedder ports.Embedder
	maxChars int
	logger   *slog.Logger
}

// NewSemanticRanker wires the embedding collaborator; maxChars caps the text
// sent for embedding.
func NewSemanticRanker(embedder ports.Embedder, maxChars int, logger *slog.Logger) *SemanticRanker {
	if maxChars <= 0 {
		maxChars = 1000
	}
	return &SemanticRanker{embedder: embedder, maxChars: maxChars, logger: logger}
}

// Rank attaches a semantic similarity in [0,1] to every candidate and returns
// them sorted descending. An embedding failure degrades to the unranked input
// with zero scores; it never aborts the run.
func (r *SemanticRanker) Rank(ctx context.Context, query string, candidates []*domain.CandidateRepository) []*domain.CandidateRepository {
	if len(candidates) == 0 {
		return candidates
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	for _, cand := range candidates {
		doc := cand.CombinedDoc
		if len(doc) > r.maxChars {
			doc = doc[:r.maxChars]
		}
		texts = append(texts, doc)
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		if r.logger != nil {
			r.logger.Warn("embedding failed, returning unranked candidates", "error", err)
		}
		return candidates
	}

	queryVec := vectors[0]
	for i, cand := range candidates {
		cand.Scores.SemanticSimilarity = clamp01(cosineSimilarity(queryVec, vectors[i+1]))
	}

	ranked := make([]*domain.CandidateRepository, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.SemanticSimilarity > ranked[j].Scores.SemanticSimilarity
	})

	if r.logger != nil {
		r.logger.Info("semantic ranking complete", "candidates", len(ranked))
	}
	return ranked
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
