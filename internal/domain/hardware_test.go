package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHardwareSpec(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  string
	}{
		{"models that run cpu-only", HardwareCPUOnly},
		{"inference with no gpu", HardwareCPUOnly},
		{"gpu-poor setup please", HardwareCPUOnly},
		{"lightweight recommendation engine", HardwareCPUOnly},
		{"low-memory embeddings", HardwareLowMemory},
		{"small memory footprint", HardwareLowMemory},
		{"run on mobile devices", HardwareMobile},
		{"deploy to a raspberry pi", HardwareMobile},
		{"android on-device inference", HardwareMobile},
		{"plain semantic search query", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, DetectHardwareSpec(tc.query), "query %q", tc.query)
	}
}

func TestDetectHardwareSpecPrecedence(t *testing.T) {
	t.Parallel()

	// cpu-only wins when phrasing matches several buckets
	require.Equal(t, HardwareCPUOnly, DetectHardwareSpec("lightweight mobile model"))
}

func TestValidHardwareSpec(t *testing.T) {
	t.Parallel()

	require.True(t, ValidHardwareSpec("cpu-only"))
	require.True(t, ValidHardwareSpec("low-memory"))
	require.True(t, ValidHardwareSpec("mobile"))
	require.False(t, ValidHardwareSpec("gpu"))
	require.False(t, ValidHardwareSpec(""))
	require.False(t, ValidHardwareSpec("NONE"))
}
