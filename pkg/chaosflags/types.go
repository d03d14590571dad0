// Package chaosflags implements the typed failure-flag model: the
// discriminated variant per failure mode, its JSON parsing, and the
// field-level validator (including the ReDoS structural guard) that
// gates every flag before it can enter a resolved plan.
//
// The design intentionally mirrors the pointer-suboption shape used for
// tagged variants elsewhere in the fault-injection ecosystem: a single
// envelope carries the fields common to every mode, and exactly one of
// the mode-specific pointer fields is populated per entry.
package chaosflags

// Mode identifies a failure mode. The set is closed; unrecognized keys
// in a configuration document are ignored rather than rejected.
type Mode string

const (
	ModeLatency    Mode = "latency"
	ModeTimeout    Mode = "timeout"
	ModeException  Mode = "exception"
	ModeStatusCode Mode = "statuscode"
	ModeDiskSpace  Mode = "diskspace"
	ModeDenylist   Mode = "denylist"
	ModeCorruption Mode = "corruption"
)

// AllModes lists every recognized mode. Order here carries no meaning;
// see chaosplan.CanonicalOrder for the fixed execution order.
var AllModes = []Mode{
	ModeLatency, ModeTimeout, ModeException, ModeStatusCode,
	ModeDiskSpace, ModeDenylist, ModeCorruption,
}

// Operator names a match-condition comparison.
type Operator string

const (
	OpEq         Operator = "eq"
	OpExists     Operator = "exists"
	OpStartsWith Operator = "startsWith"
	OpRegex      Operator = "regex"
)

// MatchCondition is one predicate evaluated against the invocation event.
type MatchCondition struct {
	Path     string   `json:"path" yaml:"path"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    *string  `json:"value,omitempty" yaml:"value,omitempty"`
}

// EffectiveOperator returns the condition's operator, defaulting to eq.
func (c MatchCondition) EffectiveOperator() Operator {
	if c.Operator == "" {
		return OpEq
	}
	return c.Operator
}

// LatencyFlag adds a bounded random sleep before the handler runs.
type LatencyFlag struct {
	MinLatencyMs int `json:"min_latency" yaml:"min_latency"`
	MaxLatencyMs int `json:"max_latency" yaml:"max_latency"`
}

// TimeoutFlag sleeps toward the invocation's deadline.
type TimeoutFlag struct {
	TimeoutBufferMs int `json:"timeout_buffer_ms" yaml:"timeout_buffer_ms"`
}

// ExceptionFlag raises a synthetic error in place of the handler's result.
type ExceptionFlag struct {
	ExceptionMsg string `json:"exception_msg" yaml:"exception_msg"`
}

// StatusCodeFlag short-circuits the invocation with a fixed HTTP status.
type StatusCodeFlag struct {
	StatusCode int `json:"status_code" yaml:"status_code"`
}

// DiskSpaceFlag fills /tmp with a file of the given size.
type DiskSpaceFlag struct {
	DiskSpaceMB int `json:"disk_space" yaml:"disk_space"`
}

// DenylistFlag blocks DNS resolution for hostnames matching any pattern.
type DenylistFlag struct {
	Patterns []string `json:"deny_list" yaml:"deny_list"`
}

// CorruptionFlag replaces or mangles the handler's response body.
type CorruptionFlag struct {
	Body *string `json:"body" yaml:"body"`
}

// Flag is one entry of a Configuration: the common envelope plus exactly
// one populated mode-specific payload selected by Mode.
type Flag struct {
	Mode       Mode             `json:"-" yaml:"-"`
	Enabled    bool             `json:"enabled" yaml:"enabled"`
	Percentage int              `json:"percentage" yaml:"percentage"`
	Match      []MatchCondition `json:"match,omitempty" yaml:"match,omitempty"`

	Latency    *LatencyFlag    `json:"-" yaml:"-"`
	Timeout    *TimeoutFlag    `json:"-" yaml:"-"`
	Exception  *ExceptionFlag  `json:"-" yaml:"-"`
	StatusCode *StatusCodeFlag `json:"-" yaml:"-"`
	DiskSpace  *DiskSpaceFlag  `json:"-" yaml:"-"`
	Denylist   *DenylistFlag   `json:"-" yaml:"-"`
	Corruption *CorruptionFlag `json:"-" yaml:"-"`
}

// Configuration is the full set of flags parsed from a config document,
// keyed by mode.
type Configuration map[Mode]Flag

// Empty returns a zero-length, non-nil configuration — the value the
// loader must return on any fetch or parse failure.
func Empty() Configuration {
	return Configuration{}
}

// ClampPercentage clamps p to the inclusive range [0, 100].
func ClampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
