// Package chaosrun implements the orchestrator: the per-invocation
// pipeline that ties the config loader, resolver, match evaluator, and
// failure primitives together around a wrapped handler.
package chaosrun

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosconfig"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosinject"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosinject/denylist"
	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosplan"
)

// Event is the invocation payload, decoded to a generic tree so the
// match evaluator can walk arbitrary dotted paths through it.
type Event = map[string]interface{}

// Handler is the pipeline's own function shape: a decoded event in, an
// arbitrary result and error out. Both integration adapters (see
// chaosmw) translate their own framework's shape to and from this one.
type Handler func(ctx context.Context, event Event) (interface{}, error)

// Wrap builds a Handler that runs the full failure-injection pipeline
// around inner.
func Wrap(inner Handler, opts ...Option) Handler {
	o := &options{}
	for _, apply := range opts {
		apply(o)
	}
	fillDefaults(o)

	return func(ctx context.Context, event Event) (interface{}, error) {
		return runInvocation(ctx, inner, event, o)
	}
}

func defaultDeadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(time.Hour)
}

func runInvocation(ctx context.Context, inner Handler, event Event, o *options) (result interface{}, err error) {
	// Every record this invocation produces carries the same correlation
	// ID, so a single invocation's log lines can be grepped out of a
	// container's interleaved output even when concurrent invocations
	// share the same log stream.
	log := o.log.With(zap.String("invocation_id", uuid.NewString()))
	deps := chaosinject.Deps{Rand: o.rng, Log: log}

	// Pre-cleanup runs even when the kill switch is engaged, so a prior
	// invocation's leftover diskspace files or an active denylist never
	// leak into a container that has since had injection disabled.
	chaosinject.ClearDiskSpace(deps)
	denylist.Clear(log)

	if chaosconfig.KillSwitchEngaged() {
		return inner(ctx, event)
	}

	cfg := o.configProvider(ctx)
	resolved := chaosplan.ResolveFailures(cfg)
	if len(resolved) == 0 {
		return inner(ctx, event)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error(chaoslog.ActionError, "invocation panicked", zap.Any("panic", r))
			chaosinject.ClearDiskSpace(deps)
			denylist.Clear(log)
			panic(r)
		}
	}()

	var corruption *chaosplan.ResolvedFailure
	deadline := o.deadline(ctx)

	for i := range resolved {
		rf := resolved[i]
		if rf.Mode == chaosflags.ModeCorruption {
			c := rf
			corruption = &c
			continue
		}
		if !gate(rf, event, deps) {
			continue
		}
		if logDryRun(o.dryRun, log, rf) {
			continue
		}

		switch rf.Mode {
		case chaosflags.ModeLatency:
			chaosinject.Latency(rf.Flag.Latency.MinLatencyMs, rf.Flag.Latency.MaxLatencyMs, deps, nil)
		case chaosflags.ModeTimeout:
			chaosinject.Timeout(deadline, rf.Flag.Timeout.TimeoutBufferMs, deps, nil)
		case chaosflags.ModeDiskSpace:
			chaosinject.DiskSpace(rf.Flag.DiskSpace.DiskSpaceMB, deps)
		case chaosflags.ModeDenylist:
			denylist.Install(rf.Flag.Denylist.Patterns, log)
		case chaosflags.ModeStatusCode:
			// A short-circuited success is not one of the denylist's three
			// removal conditions (next-invocation pre-cleanup, error
			// cleanup, explicit reset), so any denylist installed earlier
			// in this same pre-phase loop is left active.
			resp := chaosinject.StatusCode(rf.Flag.StatusCode.StatusCode, deps)
			return resp, nil
		case chaosflags.ModeException:
			// Exception short-circuits by returning an error, which is
			// the denylist's error-cleanup removal condition.
			injected := chaosinject.Exception(rf.Flag.Exception.ExceptionMsg, deps)
			log.Error(chaoslog.ActionError, "invocation failed", zap.Error(injected))
			chaosinject.ClearDiskSpace(deps)
			denylist.Clear(log)
			return nil, injected
		}
	}

	result, err = inner(ctx, event)

	if err != nil {
		log.Error(chaoslog.ActionError, "invocation failed", zap.Error(err))
		chaosinject.ClearDiskSpace(deps)
		denylist.Clear(log)
		return result, err
	}

	if corruption != nil && gate(*corruption, event, deps) && !logDryRun(o.dryRun, log, *corruption) {
		flagBody := corruption.Flag.Corruption.Body
		result = chaosinject.Corrupt(flagBody, result, deps)
	}

	// A denylist installed during this invocation is left active on
	// ordinary success: it outlives a single invocation and is only
	// removed by the next invocation's pre-cleanup, the error path
	// above, or an explicit reset.
	return result, nil
}

// gate applies the match-condition and percentage-roll checks common to
// every resolved failure.
func gate(rf chaosplan.ResolvedFailure, event Event, deps chaosinject.Deps) bool {
	if len(rf.Flag.Match) > 0 && !chaosplan.Matches(event, rf.Flag.Match) {
		return false
	}
	roll := deps.RollPercent()
	return roll < rf.Percentage
}

func logDryRun(dryRun bool, log *chaoslog.Logger, rf chaosplan.ResolvedFailure) bool {
	if !dryRun {
		return false
	}
	log.Info(chaoslog.ActionDryRun, "would inject failure", zap.String("mode", string(rf.Mode)))
	return true
}
