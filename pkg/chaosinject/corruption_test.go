package chaosinject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func TestCorrupt_ReplacesExistingBody(t *testing.T) {
	original := apiResponse{StatusCode: 200, Body: "original"}
	replacement := "replaced"

	result := Corrupt(&replacement, original, testDeps())
	resp, ok := result.(apiResponse)
	require.True(t, ok)
	require.Equal(t, "replaced", resp.Body)
	require.Equal(t, 200, resp.StatusCode)
}

func TestCorrupt_WrapsWhenNoBodyField(t *testing.T) {
	original := map[string]interface{}{"statusCode": float64(200)}
	replacement := "replaced"

	result := Corrupt(&replacement, original, testDeps())
	m, ok := result.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "replaced", m["body"])
}

func TestCorrupt_MangleTruncatesAndAppendsReplacementChars(t *testing.T) {
	original := apiResponse{StatusCode: 200, Body: strings.Repeat("x", 100)}

	result := Corrupt(nil, original, testDeps())
	resp, ok := result.(apiResponse)
	require.True(t, ok)
	require.True(t, strings.HasSuffix(resp.Body, replacementChar+replacementChar+replacementChar))
	require.Less(t, len(resp.Body), len(original.Body)+3*len(replacementChar))
}

func TestCorrupt_MangleWithoutBodyFieldReturnsUnchanged(t *testing.T) {
	original := map[string]interface{}{"statusCode": float64(200)}
	result := Corrupt(nil, original, testDeps())
	require.Equal(t, original, result)
}

func TestCorrupt_MangleWithNonStringBodyReturnsUnchanged(t *testing.T) {
	original := map[string]interface{}{"body": float64(5)}
	result := Corrupt(nil, original, testDeps())
	require.Equal(t, original, result)
}
