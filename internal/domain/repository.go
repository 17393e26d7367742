package domain

import "strings"

// ProjectType selects the per-run discovery and merge policy.
type ProjectType string

const (
	ProjectTypeAll      ProjectType = "All"
	ProjectTypePersonal ProjectType = "Personal Project"
	ProjectTypeIndustry ProjectType = "Industry Standard"
)

// StarFilter returns the search qualifier appended to every search term.
// Personal-project mode narrows the band to keep corporate repos out.
func (p ProjectType) StarFilter() string {
	if p == ProjectTypePersonal {
		return "stars:5..500"
	}
	return "stars:>5"
}

// EnrichActivity reports whether ingestion should run the activity-metadata pass.
func (p ProjectType) EnrichActivity() bool {
	return p == ProjectTypePersonal
}

// ParseProjectType maps a user-facing mode string onto a policy, defaulting to All.
func ParseProjectType(value string) ProjectType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "personal", "personal project":
		return ProjectTypePersonal
	case "industry", "industry standard":
		return ProjectTypeIndustry
	}
	return ProjectTypeAll
}

// ScoreSet accumulates relevance signals as a candidate moves through the stages.
type ScoreSet struct {
	SemanticSimilarity float64
	CrossEncoderScore  float64
	FinalScore         float64
}

// ActivityMetadata holds repository activity counts fetched only in
// personal-project mode. Zero counts may mean the probe failed, so the
// evaluator treats missing data optimistically.
type ActivityMetadata struct {
	BranchCount      int
	PullRequestCount int
	ContributorCount int
	CommitCount      int
}

// SoftSignals are the qualitative judgments returned by the authenticity judge.
type SoftSignals struct {
	AuthorOwnership   bool `json:"author_ownership"`
	RealCommitPattern bool `json:"real_commit_pattern"`
	HumanReadme       bool `json:"human_readme"`
	FocusedScope      bool `json:"focused_scope"`
	SimpleStructure   bool `json:"simple_structure"`
	NoCorpBranching   bool `json:"no_corp_branching"`
	HonestTone        bool `json:"honest_tone"`
	IsTemplate        bool `json:"is_template"`
	RealProject       bool `json:"real_project"`
}

// PersonalEvaluation is the rubric outcome attached before the merge stage.
type PersonalEvaluation struct {
	Score    int
	Gold     bool
	Rejected bool
	Reason   string
	Signals  map[string]bool
}

// CandidateRepository is the central pipeline entity, keyed by FullName
// (owner/repo). Later stages attach scores and metadata in place and must
// dedupe on FullName, never on title or link.
type CandidateRepository struct {
	FullName     string
	Title        string
	Description  string
	Link         string
	CloneURL     string
	CombinedDoc  string
	ReadmeSize   int
	ArchDocsSize int
	Stars        int
	OpenIssues   int
	SizeKB       int
	LicenseKey   string
	LicenseName  string
	FileList     []string

	Scores   ScoreSet
	Activity *ActivityMetadata
	Personal *PersonalEvaluation
}
