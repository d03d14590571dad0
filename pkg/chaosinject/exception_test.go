package chaosinject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestException_DefaultsMessage(t *testing.T) {
	err := Exception("", testDeps())
	require.Equal(t, "Injected exception", err.Error())
}

func TestException_UsesGivenMessage(t *testing.T) {
	err := Exception("boom", testDeps())
	require.Equal(t, "boom", err.Error())
}
