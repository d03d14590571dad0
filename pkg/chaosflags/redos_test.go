package chaosflags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckReDoS_AcceptsOrdinaryPatterns(t *testing.T) {
	patterns := []string{
		`s3\..*\.amazonaws\.com`,
		`^(GET|POST)$`,
		`^\d{3}-\d{4}$`,
		`(a+)`,
		`[a-z]+@[a-z]+\.com`,
	}
	for _, p := range patterns {
		require.NoErrorf(t, checkReDoS(p), "pattern %q should be accepted", p)
	}
}

func TestCheckReDoS_RejectsNestedQuantifiers(t *testing.T) {
	patterns := []string{
		`(a+)+`,
		`(a*)*`,
		`(a+){2,}`,
		`(ab+)+c`,
	}
	for _, p := range patterns {
		require.Errorf(t, checkReDoS(p), "pattern %q should be rejected", p)
	}
}

func TestCheckReDoS_RejectsOverlongPatterns(t *testing.T) {
	pattern := strings.Repeat("a", maxPatternLen+1)
	require.ErrorIs(t, checkReDoS(pattern), ErrPatternTooLong)
}

func TestCheckReDoS_IgnoresEscapedAndClassContent(t *testing.T) {
	// A literal "+" inside a character class or escaped must not be
	// treated as a quantifier.
	require.NoError(t, checkReDoS(`[+*]+`))
	require.NoError(t, checkReDoS(`\+\*`))
}
