package chaosinject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeout_SleepsRemainingMinusBuffer(t *testing.T) {
	deadline := time.Now().Add(1 * time.Second)
	var slept time.Duration
	Timeout(deadline, 200, testDeps(), func(d time.Duration) { slept = d })
	require.InDelta(t, 800*time.Millisecond, slept, float64(50*time.Millisecond))
}

func TestTimeout_FlooredAtZero(t *testing.T) {
	deadline := time.Now().Add(-1 * time.Second)
	var slept time.Duration
	Timeout(deadline, 200, testDeps(), func(d time.Duration) { slept = d })
	require.Equal(t, time.Duration(0), slept)
}
