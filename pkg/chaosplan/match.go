package chaosplan

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
)

// regexCache memoizes compiled patterns by source text. The original
// implementation keeps this cache thread-local; a single process-wide
// map suffices here because the orchestrator serializes invocations
// within a container, and sync.Map keeps direct callers of this
// package safe regardless.
var regexCache sync.Map // map[string]*regexp.Regexp

func compiledRegex(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// Matches reports whether event satisfies every condition (conjunction;
// an empty list always matches).
func Matches(event map[string]interface{}, conditions []chaosflags.MatchCondition) bool {
	for _, cond := range conditions {
		if !matchOne(event, cond) {
			return false
		}
	}
	return true
}

func matchOne(event map[string]interface{}, cond chaosflags.MatchCondition) bool {
	value, found := lookupPath(event, cond.Path)

	switch cond.EffectiveOperator() {
	case chaosflags.OpExists:
		return found && value != nil
	case chaosflags.OpEq:
		if !found || value == nil {
			return false
		}
		return stringify(value) == derefOr(cond.Value, "")
	case chaosflags.OpStartsWith:
		if !found || value == nil {
			return false
		}
		want := derefOr(cond.Value, "")
		got := stringify(value)
		return len(got) >= len(want) && got[:len(want)] == want
	case chaosflags.OpRegex:
		if !found || value == nil {
			return false
		}
		pattern := derefOr(cond.Value, "")
		re, err := compiledRegex(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(stringify(value))
	default:
		return false
	}
}

// lookupPath walks a dot-separated path through nested maps, returning
// (nil, false) as soon as a segment is missing or an intermediate value
// isn't a map.
func lookupPath(event map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	segments := splitPath(path)
	var cur interface{} = event
	for _, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, present := m[seg]
		if !present {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func splitPath(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// stringify renders a decoded JSON value the way the reference
// implementations do: strings pass through unchanged; everything else
// uses its natural textual form.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
