package chaosinject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusCode_DefaultsTo500(t *testing.T) {
	resp := StatusCode(0, testDeps())
	require.Equal(t, 500, resp.StatusCode)
	require.Contains(t, resp.Body, "500")
}

func TestStatusCode_UsesGivenCode(t *testing.T) {
	resp := StatusCode(503, testDeps())
	require.Equal(t, 503, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}
