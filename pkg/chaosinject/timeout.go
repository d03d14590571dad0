package chaosinject

import (
	"time"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// Timeout sleeps toward deadline, leaving exactly bufferMs of headroom
// before it, floored at zero. The intent is for the host to kill the
// invocation for exceeding its own deadline shortly after the runtime
// resumes — the buffer gives just enough time for the runtime to
// observe the resumption before the platform's own watchdog fires.
func Timeout(deadline time.Time, bufferMs int, deps Deps, sleep SleepFunc) {
	if sleep == nil {
		sleep = time.Sleep
	}
	remaining := time.Until(deadline) - time.Duration(bufferMs)*time.Millisecond
	if remaining < 0 {
		remaining = 0
	}
	deps.log().Info(chaoslog.ActionInject, "injecting timeout", zap.Duration("sleep", remaining))
	sleep(remaining)
}
