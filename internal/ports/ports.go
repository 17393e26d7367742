package ports

import (
	"context"

	"RepoScout/internal/domain"
)

// QueryExpander turns a free-text query into structured search combinations.
// excludeTag drops a tag (the detected hardware token) from the generated set.
type QueryExpander interface {
	Expand(ctx context.Context, query, industry, excludeTag string) ([]domain.QueryCombo, error)
}

// HardwareDetector extracts a hardware constraint token from the query, or "".
type HardwareDetector interface {
	Detect(ctx context.Context, query string) (string, error)
}

// SearchSource discovers deduplicated candidate repositories for the combos.
type SearchSource interface {
	Discover(ctx context.Context, combos []domain.QueryCombo, mode domain.ProjectType) ([]*domain.CandidateRepository, error)
}

// Embedder encodes texts into sentence embeddings.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CrossEncoder scores (query, passage) pairs jointly; scores are unbounded reals.
type CrossEncoder interface {
	ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error)
}

// HardwareFilter returns the subset of candidates compatible with a hardware
// constraint. The filter stage treats a nil implementation as "no substitution".
type HardwareFilter interface {
	FilterCompatible(ctx context.Context, spec string, candidates []*domain.CandidateRepository) ([]*domain.CandidateRepository, error)
}

// SignalJudge delivers the qualitative authenticity signals for one repository.
type SignalJudge interface {
	JudgeAuthenticity(ctx context.Context, title, readme string) (domain.SoftSignals, error)
}

// ContentCache stores immutable raw-file contents keyed by download URL. It may
// be shared across concurrent fetches within a run and retained across runs.
type ContentCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Put(ctx context.Context, url, content string) error
}

// Reporter consumes the final ranked run state for display or follow-on actions.
type Reporter interface {
	PublishReport(ctx context.Context, state *domain.RunState) error
}
