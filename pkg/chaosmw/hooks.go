package chaosmw

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
	"github.com/gunnargrosch/failure-lambda/pkg/chaosrun"
)

// Token carries per-invocation state between Before and the later
// After/OnError call, standing in for the request-ID-keyed map the
// original proxy uses to bridge its own two-phase runtime-API
// intercept. Callers thread it through their own middleware's request
// context or state bag; its fields are unexported.
type Token struct {
	deps       chaosinject.Deps
	deadline   time.Time
	dryRun     bool
	log        *chaoslog.Logger
	corruption *chaosplan.ResolvedFailure
}

// Hooks exposes the same pipeline as Wrap, split into three calls so an
// external middleware chain can splice injection into its own request
// lifecycle instead of adopting the direct handler-wrapping shape.
type Hooks struct {
	cfg *chaosrun.Config
}

// NewHooks builds a Hooks value from the same Option set Wrap accepts.
func NewHooks(opts ...chaosrun.Option) *Hooks {
	return &Hooks{cfg: chaosrun.NewConfig(opts...)}
}

// Before runs the pre-handler phase. If shortCircuited is true, the
// caller must skip its downstream handler entirely and respond with
// result (or err) directly, then must NOT call After for this
// invocation — mirroring the orchestrator's own statuscode/exception
// short-circuit.
func (h *Hooks) Before(ctx context.Context, event chaosrun.Event) (token *Token, shortCircuited bool, result interface{}, err error) {
	log := h.cfg.Log().With(zap.String("invocation_id", uuid.NewString()))
	deps := chaosinject.Deps{Rand: h.cfg.Rand(), Log: log}

	chaosinject.ClearDiskSpace(deps)
	denylist.Clear(log)

	token = &Token{deps: deps, deadline: h.cfg.Deadline(ctx), dryRun: h.cfg.DryRun(), log: log}

	if chaosconfig.KillSwitchEngaged() {
		return token, false, nil, nil
	}

	cfg := h.cfg.Provider()(ctx)
	resolved := chaosplan.ResolveFailures(cfg)

	for i := range resolved {
		rf := resolved[i]
		if rf.Mode == chaosflags.ModeCorruption {
			c := rf
			token.corruption = &c
			continue
		}
		if !gate(rf, event, deps) {
			continue
		}
		if token.dryRun {
			log.Info(chaoslog.ActionDryRun, "would inject failure", zap.String("mode", string(rf.Mode)))
			continue
		}

		switch rf.Mode {
		case chaosflags.ModeLatency:
			chaosinject.Latency(rf.Flag.Latency.MinLatencyMs, rf.Flag.Latency.MaxLatencyMs, deps, nil)
		case chaosflags.ModeTimeout:
			chaosinject.Timeout(token.deadline, rf.Flag.Timeout.TimeoutBufferMs, deps, nil)
		case chaosflags.ModeDiskSpace:
			chaosinject.DiskSpace(rf.Flag.DiskSpace.DiskSpaceMB, deps)
		case chaosflags.ModeDenylist:
			denylist.Install(rf.Flag.Denylist.Patterns, log)
		case chaosflags.ModeStatusCode:
			// A short-circuited success is not one of the denylist's three
			// removal conditions, so any denylist installed earlier in
			// this same pre-phase loop is left active.
			resp := chaosinject.StatusCode(rf.Flag.StatusCode.StatusCode, deps)
			return token, true, resp, nil
		case chaosflags.ModeException:
			// Exception short-circuits by returning an error, which is
			// the denylist's error-cleanup removal condition.
			chaosinject.ClearDiskSpace(deps)
			denylist.Clear(log)
			return token, true, nil, chaosinject.Exception(rf.Flag.Exception.ExceptionMsg, deps)
		}
	}

	return token, false, nil, nil
}

// After runs the post-handler corruption phase and must be called
// exactly once for every Before call that did not short-circuit.
func (h *Hooks) After(ctx context.Context, token *Token, event chaosrun.Event, result interface{}) (interface{}, error) {
	if token == nil {
		return result, nil
	}
	if token.corruption != nil && gate(*token.corruption, event, token.deps) && !dryRunLogged(token) {
		result = chaosinject.Corrupt(token.corruption.Flag.Corruption.Body, result, token.deps)
	}
	// A denylist installed during this invocation is left active on
	// ordinary success; see the ModeStatusCode case in Before.
	return result, nil
}

// OnError runs cleanup for an invocation whose downstream handler
// returned an error instead of a result.
func (h *Hooks) OnError(ctx context.Context, token *Token, err error) {
	if token == nil {
		return
	}
	chaosinject.ClearDiskSpace(token.deps)
	denylist.Clear(token.log)
}

func gate(rf chaosplan.ResolvedFailure, event chaosrun.Event, deps chaosinject.Deps) bool {
	if len(rf.Flag.Match) > 0 && !chaosplan.Matches(event, rf.Flag.Match) {
		return false
	}
	return deps.RollPercent() < rf.Percentage
}

func dryRunLogged(token *Token) bool {
	if !token.dryRun {
		return false
	}
	token.log.Info(chaoslog.ActionDryRun, "would inject failure", zap.String("mode", string(chaosflags.ModeCorruption)))
	return true
}
