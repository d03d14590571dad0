package chaosrun

import (
	"context"
	"math/rand"
	"time"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosconfig"
	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// ConfigProvider returns the configuration to resolve for one
// invocation. The default provider is a *chaosconfig.Loader; tests and
// the hook adapter can substitute anything satisfying this signature.
type ConfigProvider func(ctx context.Context) chaosflags.Configuration

// DeadlineFunc returns the invocation's deadline, used by the timeout
// primitive. By default it is the context's own deadline
// (ctx.Deadline()), or one hour from now when the context has none;
// WithDeadline supplies a different source.
type DeadlineFunc func(ctx context.Context) time.Time

type options struct {
	configProvider ConfigProvider
	dryRun         bool
	rng            *rand.Rand
	deadline       DeadlineFunc
	log            *chaoslog.Logger
}

// Option configures a wrapped handler.
type Option func(*options)

// WithConfigProvider overrides how the wrapped handler obtains its
// configuration for each invocation.
func WithConfigProvider(p ConfigProvider) Option {
	return func(o *options) { o.configProvider = p }
}

// WithDryRun causes every resolved failure to be logged but not
// actually applied — useful for validating a configuration change
// against real traffic before it takes effect.
func WithDryRun(dryRun bool) Option {
	return func(o *options) { o.dryRun = dryRun }
}

// WithRand overrides the random source used for percentage rolls and
// the latency/corruption primitives, for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithDeadline overrides how the wrapped handler determines the
// invocation deadline for the timeout primitive.
func WithDeadline(f DeadlineFunc) Option {
	return func(o *options) { o.deadline = f }
}

// WithLogger overrides the logger used for every record this
// invocation produces.
func WithLogger(log *chaoslog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Config is the resolved, ready-to-use option set produced by applying
// a series of Option values. It is exposed so the hook-based adapter in
// package chaosmw can drive the same underlying primitives Wrap uses
// without re-implementing option defaulting.
type Config struct {
	o options
}

// NewConfig applies opts and fills in the same defaults Wrap does.
func NewConfig(opts ...Option) *Config {
	o := &options{}
	for _, apply := range opts {
		apply(o)
	}
	fillDefaults(o)
	return &Config{o: *o}
}

func fillDefaults(o *options) {
	if o.log == nil {
		o.log = chaoslog.Default()
	}
	if o.deadline == nil {
		o.deadline = defaultDeadline
	}
	if o.configProvider == nil {
		loader := chaosconfig.NewLoader(o.log)
		o.configProvider = loader.GetConfig
	}
}

// Provider returns the effective ConfigProvider.
func (c *Config) Provider() ConfigProvider { return c.o.configProvider }

// DryRun reports whether resolved failures should be logged but not applied.
func (c *Config) DryRun() bool { return c.o.dryRun }

// Rand returns the configured random source, or nil for the
// package-wide default.
func (c *Config) Rand() *rand.Rand { return c.o.rng }

// Deadline resolves the invocation deadline for ctx.
func (c *Config) Deadline(ctx context.Context) time.Time { return c.o.deadline(ctx) }

// Log returns the configured logger.
func (c *Config) Log() *chaoslog.Logger { return c.o.log }
