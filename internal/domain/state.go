package domain

import "github.com/google/uuid"

// RunState threads one query execution through every pipeline stage. It is
// owned by a single run and never shared across concurrent queries.
type RunState struct {
	ID           string
	Query        string
	ProjectType  ProjectType
	Industry     string
	HardwareSpec string

	Combos             []QueryCombo
	Repositories       []*CandidateRepository
	SemanticRanked     []*CandidateRepository
	RerankedCandidates []*CandidateRepository
	FilteredCandidates []*CandidateRepository
	Final              []*CandidateRepository
}

// NewRunState seeds a fresh per-query context.
func NewRunState(query string, projectType ProjectType, industry string) *RunState {
	return &RunState{
		ID:          uuid.NewString(),
		Query:       query,
		ProjectType: projectType,
		Industry:    industry,
	}
}
