package chaosinject

import (
	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// Exception builds the error the orchestrator raises in place of the
// handler's result. It never returns nil.
func Exception(message string, deps Deps) *InjectedError {
	if message == "" {
		message = "Injected exception"
	}
	deps.log().Info(chaoslog.ActionInject, "injecting exception", zap.String("message", message))
	return &InjectedError{Message: message}
}
