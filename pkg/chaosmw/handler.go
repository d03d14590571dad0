// Package chaosmw provides the two integration adapters named in the
// component design: a direct wrap of an AWS Lambda-style handler, and a
// before/after/onError hook triple for middleware frameworks that own
// their own request lifecycle.
package chaosmw

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosrun"
)

// LambdaFunc is the shape of a JSON-in/JSON-out AWS Lambda handler
// function, the common case for github.com/aws/aws-lambda-go/lambda.
type LambdaFunc func(ctx context.Context, event chaosrun.Event) (interface{}, error)

// WrapLambda wraps fn with the failure-injection pipeline and returns a
// value implementing lambda.Handler, ready to pass to lambda.StartHandler.
func WrapLambda(fn LambdaFunc, opts ...chaosrun.Option) lambda.Handler {
	return &lambdaHandler{wrapped: chaosrun.Wrap(chaosrun.Handler(fn), opts...)}
}

type lambdaHandler struct {
	wrapped chaosrun.Handler
}

func (h *lambdaHandler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	var event chaosrun.Event
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
	}
	if event == nil {
		event = chaosrun.Event{}
	}

	result, err := h.wrapped(ctx, event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}
