package chaosmw

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosrun"
)

var errBoom = errors.New("boom")

func TestWrapLambda_RoundTripsJSONPayload(t *testing.T) {
	handler := WrapLambda(func(ctx context.Context, event chaosrun.Event) (interface{}, error) {
		name, _ := event["name"].(string)
		return map[string]string{"greeting": "hello " + name}, nil
	}, chaosrun.WithConfigProvider(func(ctx context.Context) chaosflags.Configuration {
		return chaosflags.Empty()
	}), chaosrun.WithLogger(chaoslog.NewDiscard()))

	out, err := handler.Invoke(context.Background(), []byte(`{"name":"world"}`))
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal(out, &result))
	require.Equal(t, "hello world", result["greeting"])
}

func TestWrapLambda_EmptyPayloadYieldsEmptyEvent(t *testing.T) {
	var seen chaosrun.Event
	handler := WrapLambda(func(ctx context.Context, event chaosrun.Event) (interface{}, error) {
		seen = event
		return "ok", nil
	}, chaosrun.WithConfigProvider(func(ctx context.Context) chaosflags.Configuration {
		return chaosflags.Empty()
	}), chaosrun.WithLogger(chaoslog.NewDiscard()))

	_, err := handler.Invoke(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, seen)
	require.Empty(t, seen)
}

func TestWrapLambda_PropagatesHandlerError(t *testing.T) {
	handler := WrapLambda(func(ctx context.Context, event chaosrun.Event) (interface{}, error) {
		return nil, errBoom
	}, chaosrun.WithConfigProvider(func(ctx context.Context) chaosflags.Configuration {
		return chaosflags.Empty()
	}), chaosrun.WithLogger(chaoslog.NewDiscard()))

	_, err := handler.Invoke(context.Background(), []byte(`{}`))
	require.Error(t, err)
}
