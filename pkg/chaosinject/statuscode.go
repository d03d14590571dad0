package chaosinject

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// StatusCode builds the terminating response returned in place of the
// handler's own result.
func StatusCode(code int, deps Deps) Response {
	if code == 0 {
		code = 500
	}
	deps.log().Info(chaoslog.ActionInject, "injecting status code", zap.Int("status_code", code))
	return Response{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       fmt.Sprintf(`{"message":"Injected status code %d"}`, code),
	}
}
