package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"RepoScout/internal/domain"
)

func TestHardwareJudgeKeepsApproved(t *testing.T) {
	t.Parallel()

	h := NewHardwareJudge(chatServer(t, "YES"), nil)
	in := []*domain.CandidateRepository{{FullName: "a/light", CombinedDoc: "runs anywhere"}}

	kept, err := h.FilterCompatible(context.Background(), domain.HardwareCPUOnly, in)
	require.NoError(t, err)
	require.Len(t, kept, 1)
}

func TestHardwareJudgeDropsRejected(t *testing.T) {
	t.Parallel()

	h := NewHardwareJudge(chatServer(t, "NO"), nil)
	in := []*domain.CandidateRepository{{FullName: "a/heavy", CombinedDoc: "requires 8 GPUs"}}

	kept, err := h.FilterCompatible(context.Background(), domain.HardwareCPUOnly, in)
	require.NoError(t, err)
	require.Empty(t, kept)
}

func TestHardwareJudgeWithoutChatPassesThrough(t *testing.T) {
	t.Parallel()

	h := NewHardwareJudge(nil, nil)
	in := []*domain.CandidateRepository{{FullName: "a/any"}}

	kept, err := h.FilterCompatible(context.Background(), domain.HardwareMobile, in)
	require.NoError(t, err)
	require.Equal(t, in, kept)
}
