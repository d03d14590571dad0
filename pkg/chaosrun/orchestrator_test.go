package chaosrun

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosinject"
	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

func provider(cfg chaosflags.Configuration) ConfigProvider {
	return func(ctx context.Context) chaosflags.Configuration { return cfg }
}

// zeroSource is a math/rand.Source that always reports zero, making
// every derived Intn/Float64 call deterministic regardless of the
// standard library's internal algorithm.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

// alwaysHit returns a *rand.Rand whose every roll is the minimum
// possible value, so every percentage gate in these tests fires.
func alwaysHit() *rand.Rand {
	return rand.New(zeroSource{})
}

func TestWrap_NoResolvedFailuresCallsHandlerUnchanged(t *testing.T) {
	called := false
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		called = true
		return "ok", nil
	}, WithConfigProvider(provider(chaosflags.Empty())), WithLogger(chaoslog.NewDiscard()))

	result, err := handler(context.Background(), Event{})
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, "ok", result)
}

func TestWrap_StatusCodeShortCircuitsBeforeHandler(t *testing.T) {
	called := false
	cfg := chaosflags.Configuration{
		chaosflags.ModeStatusCode: {
			Mode: chaosflags.ModeStatusCode, Enabled: true, Percentage: 100,
			StatusCode: &chaosflags.StatusCodeFlag{StatusCode: 503},
		},
	}
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		called = true
		return "ok", nil
	}, WithConfigProvider(provider(cfg)), WithRand(alwaysHit()), WithLogger(chaoslog.NewDiscard()))

	result, err := handler(context.Background(), Event{})
	require.NoError(t, err)
	require.False(t, called)
	resp, ok := result.(chaosinject.Response)
	require.True(t, ok)
	require.Equal(t, 503, resp.StatusCode)
}

func TestWrap_ExceptionShortCircuitsAndPropagatesError(t *testing.T) {
	called := false
	cfg := chaosflags.Configuration{
		chaosflags.ModeException: {
			Mode: chaosflags.ModeException, Enabled: true, Percentage: 100,
			Exception: &chaosflags.ExceptionFlag{ExceptionMsg: "boom"},
		},
	}
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		called = true
		return "ok", nil
	}, WithConfigProvider(provider(cfg)), WithRand(alwaysHit()), WithLogger(chaoslog.NewDiscard()))

	_, err := handler(context.Background(), Event{})
	require.Error(t, err)
	require.Equal(t, "boom", err.Error())
	require.False(t, called)
}

func TestWrap_MatchConditionGatesInjection(t *testing.T) {
	called := false
	value := "yes"
	cfg := chaosflags.Configuration{
		chaosflags.ModeException: {
			Mode: chaosflags.ModeException, Enabled: true, Percentage: 100,
			Exception: &chaosflags.ExceptionFlag{ExceptionMsg: "boom"},
			Match: []chaosflags.MatchCondition{
				{Path: "trigger", Operator: chaosflags.OpEq, Value: &value},
			},
		},
	}
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		called = true
		return "ok", nil
	}, WithConfigProvider(provider(cfg)), WithRand(alwaysHit()), WithLogger(chaoslog.NewDiscard()))

	result, err := handler(context.Background(), Event{"trigger": "no"})
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, "ok", result)
}

func TestWrap_KillSwitchBypassesInjection(t *testing.T) {
	require.NoError(t, os.Setenv("FAILURE_LAMBDA_DISABLED", "true"))
	defer os.Unsetenv("FAILURE_LAMBDA_DISABLED")

	cfg := chaosflags.Configuration{
		chaosflags.ModeException: {
			Mode: chaosflags.ModeException, Enabled: true, Percentage: 100,
			Exception: &chaosflags.ExceptionFlag{ExceptionMsg: "boom"},
		},
	}
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		return "ok", nil
	}, WithConfigProvider(provider(cfg)), WithRand(alwaysHit()), WithLogger(chaoslog.NewDiscard()))

	result, err := handler(context.Background(), Event{})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
}

func TestWrap_CorruptionAppliesAfterHandler(t *testing.T) {
	replacement := "corrupted"
	cfg := chaosflags.Configuration{
		chaosflags.ModeCorruption: {
			Mode: chaosflags.ModeCorruption, Enabled: true, Percentage: 100,
			Corruption: &chaosflags.CorruptionFlag{Body: &replacement},
		},
	}
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		return map[string]interface{}{"body": "original"}, nil
	}, WithConfigProvider(provider(cfg)), WithRand(alwaysHit()), WithLogger(chaoslog.NewDiscard()))

	result, err := handler(context.Background(), Event{})
	require.NoError(t, err)
	m := result.(map[string]interface{})
	require.Equal(t, "corrupted", m["body"])
}

func TestWrap_TimeoutRespectsDeadlineOverride(t *testing.T) {
	cfg := chaosflags.Configuration{
		chaosflags.ModeTimeout: {
			Mode: chaosflags.ModeTimeout, Enabled: true, Percentage: 100,
			Timeout: &chaosflags.TimeoutFlag{TimeoutBufferMs: 900},
		},
	}
	deadline := time.Now().Add(1 * time.Second)
	start := time.Now()
	handler := Wrap(func(ctx context.Context, event Event) (interface{}, error) {
		return "ok", nil
	},
		WithConfigProvider(provider(cfg)),
		WithRand(alwaysHit()),
		WithLogger(chaoslog.NewDiscard()),
		WithDeadline(func(ctx context.Context) time.Time { return deadline }),
	)

	_, err := handler(context.Background(), Event{})
	require.NoError(t, err)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}
