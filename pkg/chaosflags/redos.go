package chaosflags

import "github.com/cockroachdb/errors"

// maxPatternLen is the longest regex source this package will compile.
const maxPatternLen = 512

// ErrPatternTooLong and ErrNestedQuantifier are the two structural
// rejections the ReDoS guard can produce. Both are returned wrapped via
// errors.Wrapf with the pattern's length or the offending group's
// position, so errors.Is still recognizes them.
var (
	ErrPatternTooLong   = errors.New("pattern exceeds maximum length")
	ErrNestedQuantifier = errors.New("pattern contains a nested quantifier")
)

// checkReDoS structurally screens a regex source for the two conditions
// most likely to cause catastrophic backtracking in a backtracking
// engine: excessive length, and a quantified group whose body itself
// contains an unescaped quantifier (e.g. "(a+)+", "(a*)*", "(a+){2,}").
//
// The walk tracks parenthesis depth and treats backslash escapes and
// character classes ("[...]") as opaque, so quantifier metacharacters
// inside them never trigger a false positive.
func checkReDoS(pattern string) error {
	if len(pattern) > maxPatternLen {
		return errors.Wrapf(ErrPatternTooLong, "pattern of length %d exceeds %d", len(pattern), maxPatternLen)
	}

	type group struct {
		quantified bool
	}
	var stack []group
	inClass := false

	isQuantifierAt := func(i int) (bool, int) {
		if i >= len(pattern) {
			return false, i
		}
		switch pattern[i] {
		case '+', '*':
			return true, i + 1
		case '{':
			// Require a syntactically plausible {n}, {n,}, {n,m} to avoid
			// treating a literal "{" as a quantifier.
			j := i + 1
			sawDigit := false
			for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
				j++
				sawDigit = true
			}
			if j < len(pattern) && pattern[j] == ',' {
				j++
				for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
					j++
				}
			}
			if sawDigit && j < len(pattern) && pattern[j] == '}' {
				return true, j + 1
			}
			return false, i
		}
		return false, i
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if c == '\\' {
			i++ // skip the escaped character entirely
			continue
		}

		if inClass {
			if c == ']' {
				inClass = false
			}
			continue
		}

		switch c {
		case '[':
			inClass = true
			continue
		case '(':
			stack = append(stack, group{})
			continue
		case ')':
			var closed group
			if len(stack) > 0 {
				closed = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
			// A quantifier immediately following the closed group's own
			// quantified body means two quantifiers compound: reject.
			if ok, next := isQuantifierAt(i + 1); ok && closed.quantified {
				return errors.Wrapf(ErrNestedQuantifier, "quantified group at position %d is itself quantified", i)
			} else if ok {
				i = next - 1
			}
			continue
		}

		if ok, next := isQuantifierAt(i); ok {
			if len(stack) > 0 {
				stack[len(stack)-1].quantified = true
			}
			i = next - 1
		}
	}

	return nil
}
