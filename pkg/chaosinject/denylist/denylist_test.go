package denylist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

func TestBlocks_MatchesActivePatterns(t *testing.T) {
	Install([]string{`s3\..*\.amazonaws\.com`}, chaoslog.NewDiscard())
	defer Clear(chaoslog.NewDiscard())

	require.True(t, Blocks("s3.us-east-1.amazonaws.com"))
	require.False(t, Blocks("example.com"))
}

func TestBlocks_InactiveWhenCleared(t *testing.T) {
	Install([]string{".*"}, chaoslog.NewDiscard())
	Clear(chaoslog.NewDiscard())
	require.False(t, Blocks("anything.example.com"))
}

func TestInstall_SkipsInvalidPatternsWithoutDisablingOthers(t *testing.T) {
	Install([]string{"[", `^bad\.example\.com$`}, chaoslog.NewDiscard())
	defer Clear(chaoslog.NewDiscard())

	require.True(t, Blocks("bad.example.com"))
}

func TestInstall_IsIdempotentAcrossRepeatedCalls(t *testing.T) {
	Install([]string{"first.example.com"}, chaoslog.NewDiscard())
	Install([]string{"second.example.com"}, chaoslog.NewDiscard())
	defer Clear(chaoslog.NewDiscard())

	require.False(t, Blocks("first.example.com"))
	require.True(t, Blocks("second.example.com"))
}

func TestActive_ReflectsInstallAndClear(t *testing.T) {
	require.False(t, Active())
	Install([]string{"x"}, chaoslog.NewDiscard())
	require.True(t, Active())
	Clear(chaoslog.NewDiscard())
	require.False(t, Active())
}
