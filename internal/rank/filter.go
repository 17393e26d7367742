package rank

import (
	"context"
	"log/slog"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

// ThresholdFilter drops candidates below the cross-encoder quality bar. Stars
// are never a hard filter here; they stay a ranking signal only.
type ThresholdFilter struct {
	threshold       float64
	disableFallback bool
	hardware        ports.HardwareFilter
	logger          *slog.Logger
}

// NewThresholdFilter wires the quality bar and the optional hardware
// collaborator. disableFallback turns the never-empty safety net off for
// callers that prefer an honest empty result.
func NewThresholdFilter(threshold float64, disableFallback bool, hardware ports.HardwareFilter, logger *slog.Logger) *ThresholdFilter {
	return &ThresholdFilter{
		threshold:       threshold,
		disableFallback: disableFallback,
		hardware:        hardware,
		logger:          logger,
	}
}

// Apply returns the candidates at or above the threshold. If nothing passes,
// the entire input comes back unfiltered (unless the fallback is disabled).
// When a hardware constraint is present and the compatibility collaborator
// produces a list, that list replaces the threshold result outright.
func (f *ThresholdFilter) Apply(ctx context.Context, candidates []*domain.CandidateRepository, hardwareSpec string) []*domain.CandidateRepository {
	var filtered []*domain.CandidateRepository
	for _, cand := range candidates {
		if cand.Scores.CrossEncoderScore < f.threshold {
			continue
		}
		filtered = append(filtered, cand)
	}

	if len(filtered) == 0 && len(candidates) > 0 && !f.disableFallback {
		if f.logger != nil {
			f.logger.Warn("all candidates below threshold, falling back to full reranked list",
				"threshold", f.threshold, "candidates", len(candidates))
		}
		filtered = make([]*domain.CandidateRepository, len(candidates))
		copy(filtered, candidates)
	}

	if hardwareSpec != "" && f.hardware != nil {
		compatible, err := f.hardware.FilterCompatible(ctx, hardwareSpec, filtered)
		switch {
		case err != nil:
			if f.logger != nil {
				f.logger.Warn("hardware filter failed, keeping threshold result", "spec", hardwareSpec, "error", err)
			}
		case len(compatible) > 0:
			// The compatibility list replaces, not intersects.
			filtered = compatible
		default:
			if f.logger != nil {
				f.logger.Info("hardware filter returned nothing, keeping threshold result", "spec", hardwareSpec)
			}
		}
	}

	if f.logger != nil {
		f.logger.Info("threshold filtering complete", "remaining", len(filtered))
	}
	return filtered
}
