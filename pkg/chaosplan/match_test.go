package chaosplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
)

func strPtr(s string) *string { return &s }

func TestMatches_EmptyConditionsAlwaysMatch(t *testing.T) {
	require.True(t, Matches(map[string]interface{}{}, nil))
}

func TestMatches_Eq(t *testing.T) {
	event := map[string]interface{}{"headers": map[string]interface{}{"x-test": "yes"}}
	cond := []chaosflags.MatchCondition{{Path: "headers.x-test", Operator: chaosflags.OpEq, Value: strPtr("yes")}}
	require.True(t, Matches(event, cond))

	cond[0].Value = strPtr("no")
	require.False(t, Matches(event, cond))
}

func TestMatches_ExistsIgnoresValue(t *testing.T) {
	event := map[string]interface{}{"userId": float64(42)}
	require.True(t, Matches(event, []chaosflags.MatchCondition{{Path: "userId", Operator: chaosflags.OpExists}}))
	require.False(t, Matches(event, []chaosflags.MatchCondition{{Path: "missing", Operator: chaosflags.OpExists}}))
}

func TestMatches_StartsWith(t *testing.T) {
	event := map[string]interface{}{"path": "/api/v2/widgets"}
	require.True(t, Matches(event, []chaosflags.MatchCondition{{Path: "path", Operator: chaosflags.OpStartsWith, Value: strPtr("/api/v2")}}))
	require.False(t, Matches(event, []chaosflags.MatchCondition{{Path: "path", Operator: chaosflags.OpStartsWith, Value: strPtr("/api/v3")}}))
}

func TestMatches_Regex(t *testing.T) {
	event := map[string]interface{}{"host": "s3.us-east-1.amazonaws.com"}
	require.True(t, Matches(event, []chaosflags.MatchCondition{{Path: "host", Operator: chaosflags.OpRegex, Value: strPtr(`s3\..*\.amazonaws\.com`)}}))
}

func TestMatches_ConjunctionRequiresAll(t *testing.T) {
	event := map[string]interface{}{"a": "1", "b": "2"}
	conds := []chaosflags.MatchCondition{
		{Path: "a", Operator: chaosflags.OpEq, Value: strPtr("1")},
		{Path: "b", Operator: chaosflags.OpEq, Value: strPtr("wrong")},
	}
	require.False(t, Matches(event, conds))
}

func TestMatches_MissingIntermediateSegmentFails(t *testing.T) {
	event := map[string]interface{}{"a": "not-an-object"}
	cond := []chaosflags.MatchCondition{{Path: "a.b", Operator: chaosflags.OpExists}}
	require.False(t, Matches(event, cond))
}
