package chaosinject

import (
	"time"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// SleepFunc is a test seam for the latency and timeout primitives.
type SleepFunc func(time.Duration)

// Latency sleeps a uniform random duration in [min, max] milliseconds
// and logs the delay actually chosen.
func Latency(minMs, maxMs int, deps Deps, sleep SleepFunc) {
	if sleep == nil {
		sleep = time.Sleep
	}
	delay := minMs
	if maxMs > minMs {
		delay = minMs + deps.rng().Intn(maxMs-minMs+1)
	}
	deps.log().Info(chaoslog.ActionInject, "injecting latency", zap.Int("delay_ms", delay))
	sleep(time.Duration(delay) * time.Millisecond)
}
