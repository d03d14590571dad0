// Package chaosplan resolves a parsed configuration into an ordered
// execution plan and evaluates the dotted-path match predicates that
// gate each entry at invocation time.
package chaosplan

import "github.com/gunnargrosch/failure-lambda/pkg/chaosflags"

// CanonicalOrder is the fixed dispatch order for resolved failures,
// independent of the order modes appear in the source configuration.
// Non-terminating perturbations run first so they remain observable
// even when a later terminator short-circuits the invocation;
// statuscode precedes exception so the two can't mask one another;
// corruption runs last because it is the only post-handler mode.
var CanonicalOrder = []chaosflags.Mode{
	chaosflags.ModeLatency,
	chaosflags.ModeTimeout,
	chaosflags.ModeDiskSpace,
	chaosflags.ModeDenylist,
	chaosflags.ModeStatusCode,
	chaosflags.ModeException,
	chaosflags.ModeCorruption,
}

// ResolvedFailure is one entry of an execution plan.
type ResolvedFailure struct {
	Mode       chaosflags.Mode
	Percentage int
	Flag       chaosflags.Flag
}

// ResolveFailures filters cfg to enabled entries, clamps each
// percentage, and returns them in CanonicalOrder.
func ResolveFailures(cfg chaosflags.Configuration) []ResolvedFailure {
	var resolved []ResolvedFailure
	for _, mode := range CanonicalOrder {
		flag, ok := cfg[mode]
		if !ok || !flag.Enabled {
			continue
		}
		resolved = append(resolved, ResolvedFailure{
			Mode:       mode,
			Percentage: chaosflags.ClampPercentage(flag.Percentage),
			Flag:       flag,
		})
	}
	return resolved
}
