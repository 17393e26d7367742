package ml

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"

	"RepoScout/internal/ports"
)

// LocalEmbedder runs a sentence-transformer model in process via hugot,
// avoiding the network round trip for the embedding collaborator. The
// cross-encoder stays remote; local feature extraction only covers embeddings.
type LocalEmbedder struct {
	run     func(texts []string) ([][]float32, error)
	destroy func() error
}

var _ ports.Embedder = (*LocalEmbedder)(nil)

// NewLocalEmbedder loads the model at modelPath into a hugot Go session.
func NewLocalEmbedder(modelPath string) (*LocalEmbedder, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "reposcout-embedder",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create embedding pipeline: %w", err)
	}

	return &LocalEmbedder{
		run: func(texts []string) ([][]float32, error) {
			result, err := pipeline.RunPipeline(texts)
			if err != nil {
				return nil, fmt.Errorf("run embedding pipeline: %w", err)
			}
			if len(result.Embeddings) != len(texts) {
				return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(result.Embeddings))
			}
			return result.Embeddings, nil
		},
		destroy: session.Destroy,
	}, nil
}

// Embed encodes texts with the in-process model. The context is accepted for
// interface parity; inference itself is not cancellable mid-batch.
func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.run(texts)
}

// Close releases the hugot session.
func (e *LocalEmbedder) Close() error {
	return e.destroy()
}
