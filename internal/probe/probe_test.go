package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGopsutilSourceUnknownPIDReturnsUnavailable(t *testing.T) {
	src := NewGopsutilSource(50 * time.Millisecond)

	got := src.Probe(-1)

	require.Equal(t, UnavailableFloat, got.CPUPercent)
	require.Equal(t, UnavailableFloat, got.MemMB)
	require.Equal(t, UnavailableInt, got.Threads)
	require.Equal(t, UnavailableInt, got.OpenFiles)
	require.Equal(t, UnavailableInt, got.Connections)
	require.Equal(t, UnavailableInt, got.Children)
	require.Equal(t, UnavailableInt, got.EnvCount)
	require.Empty(t, got.User)
	require.Empty(t, got.Ports)
}

func TestGopsutilSourceRepeatedProbesWithinValidityWindowAgree(t *testing.T) {
	src := NewGopsutilSource(time.Second)

	a := src.Probe(-1)
	b := src.Probe(-1)

	require.Equal(t, a, b)
}
