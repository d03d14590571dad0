// Package chaosinject implements the failure primitives: one routine
// per failure mode, each taking the resolved flag's fields and returning
// whatever the orchestrator needs to act on (a sleep having already
// happened, a response object, an error, a side effect already applied,
// or a corrupted copy of the handler's result). Primitives never consult the match evaluator or the
// percentage roll themselves — the orchestrator gates each call before
// it happens.
package chaosinject

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// InjectedError distinguishes a deliberately raised exception from an
// error the wrapped handler produced on its own.
type InjectedError struct {
	Message string
}

func (e *InjectedError) Error() string { return e.Message }

// Response is the structured result produced by the statuscode
// primitive: a terminating, well-formed response object.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Deps bundles the test seams every primitive that needs randomness or
// logging accepts, mirroring the orchestrator's own WithRand/WithLogger
// options.
type Deps struct {
	Rand *rand.Rand
	Log  *chaoslog.Logger
}

func (d Deps) log() *chaoslog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return chaoslog.Default()
}

var (
	defaultRandOnce sync.Once
	defaultRand     *rand.Rand
)

// defaultRNG lazily constructs the process-wide, time-seeded generator
// used whenever a caller doesn't supply its own — production paths
// always take this branch; tests supply Deps.Rand for determinism.
func defaultRNG() *rand.Rand {
	defaultRandOnce.Do(func() {
		defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	})
	return defaultRand
}

func (d Deps) rng() *rand.Rand {
	if d.Rand != nil {
		return d.Rand
	}
	return defaultRNG()
}

// RollPercent draws a value in [0, 100), the standard percentage-gate
// roll shared by the orchestrator for every failure mode.
func (d Deps) RollPercent() int {
	return d.rng().Intn(100)
}
