package rank

import "RepoScout/internal/domain"

// MergeUnion combines candidate streams keyed by full name. A candidate
// present in any stream is kept; on key collision, fields from later streams
// update the already-admitted record. First-seen insertion order is preserved.
func MergeUnion(streams ...[]*domain.CandidateRepository) []*domain.CandidateRepository {
	merged := make(map[string]*domain.CandidateRepository)
	var order []string

	for _, stream := range streams {
		for _, cand := range stream {
			if existing, ok := merged[cand.FullName]; ok {
				updateCandidate(existing, cand)
				continue
			}
			merged[cand.FullName] = cand
			order = append(order, cand.FullName)
		}
	}

	out := make([]*domain.CandidateRepository, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out
}

// MergeAllowList seeds the admissible key set from the allow-list stream.
// Later streams may only update fields on already-admitted candidates, never
// add new ones. A final re-filter re-applies the allow-list in case an update
// path reintroduced a rejected key.
func MergeAllowList(allowList []*domain.CandidateRepository, streams ...[]*domain.CandidateRepository) []*domain.CandidateRepository {
	allowed := make(map[string]struct{}, len(allowList))
	merged := make(map[string]*domain.CandidateRepository, len(allowList))
	var order []string

	for _, cand := range allowList {
		if _, ok := merged[cand.FullName]; ok {
			continue
		}
		allowed[cand.FullName] = struct{}{}
		merged[cand.FullName] = cand
		order = append(order, cand.FullName)
	}

	for _, stream := range streams {
		for _, cand := range stream {
			if existing, ok := merged[cand.FullName]; ok {
				updateCandidate(existing, cand)
			}
		}
	}

	out := make([]*domain.CandidateRepository, 0, len(order))
	for _, key := range order {
		if _, ok := allowed[key]; !ok {
			continue
		}
		out = append(out, merged[key])
	}
	return out
}

// updateCandidate folds the populated fields of src into dst. Scores and
// lazily-fetched metadata extend the record; identity fields never change.
func updateCandidate(dst, src *domain.CandidateRepository) {
	if dst == src {
		return
	}
	if src.CombinedDoc != "" && dst.CombinedDoc == "" {
		dst.CombinedDoc = src.CombinedDoc
		dst.ReadmeSize = src.ReadmeSize
		dst.ArchDocsSize = src.ArchDocsSize
	}
	if src.Scores.SemanticSimilarity != 0 {
		dst.Scores.SemanticSimilarity = src.Scores.SemanticSimilarity
	}
	if src.Scores.CrossEncoderScore != 0 {
		dst.Scores.CrossEncoderScore = src.Scores.CrossEncoderScore
	}
	if src.Scores.FinalScore != 0 {
		dst.Scores.FinalScore = src.Scores.FinalScore
	}
	if src.Activity != nil {
		dst.Activity = src.Activity
	}
	if src.Personal != nil {
		dst.Personal = src.Personal
	}
	if len(src.FileList) > 0 && len(dst.FileList) == 0 {
		dst.FileList = src.FileList
	}
}
