package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQueryCombo(t *testing.T) {
	t.Parallel()

	combo := ParseQueryCombo("auto-insurance:cost-prediction:target-python")
	require.Equal(t, []string{"auto-insurance", "cost-prediction"}, combo.Terms)
	require.Equal(t, "python", combo.Language)
}

func TestParseQueryComboSkipsEmptyParts(t *testing.T) {
	t.Parallel()

	combo := ParseQueryCombo("fintech:: kafka :")
	require.Equal(t, []string{"fintech", "kafka"}, combo.Terms)
	require.Empty(t, combo.Language)
}

func TestSearchQueriesExplodesTerms(t *testing.T) {
	t.Parallel()

	combo := QueryCombo{Terms: []string{"kafka", "fintech"}, Language: "go"}
	queries := combo.SearchQueries("stars:>5")

	require.Equal(t, []string{
		"kafka stars:>5 language:go",
		"fintech stars:>5 language:go",
	}, queries)
}

func TestSearchQueriesWithoutLanguage(t *testing.T) {
	t.Parallel()

	combo := QueryCombo{Terms: []string{"kafka"}}
	require.Equal(t, []string{"kafka stars:5..500"}, combo.SearchQueries("stars:5..500"))
}

func TestStarFilterPerMode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "stars:5..500", ProjectTypePersonal.StarFilter())
	require.Equal(t, "stars:>5", ProjectTypeAll.StarFilter())
	require.Equal(t, "stars:>5", ProjectTypeIndustry.StarFilter())
}

func TestParseProjectType(t *testing.T) {
	t.Parallel()

	require.Equal(t, ProjectTypePersonal, ParseProjectType("personal"))
	require.Equal(t, ProjectTypePersonal, ParseProjectType("Personal Project"))
	require.Equal(t, ProjectTypeIndustry, ParseProjectType("industry"))
	require.Equal(t, ProjectTypeAll, ParseProjectType(""))
	require.Equal(t, ProjectTypeAll, ParseProjectType("whatever"))
}

func TestEnrichActivityOnlyPersonal(t *testing.T) {
	t.Parallel()

	require.True(t, ProjectTypePersonal.EnrichActivity())
	require.False(t, ProjectTypeAll.EnrichActivity())
	require.False(t, ProjectTypeIndustry.EnrichActivity())
}
