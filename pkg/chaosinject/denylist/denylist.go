// Package denylist implements the resolver interceptor: a Go-native
// replacement for the LD_PRELOAD getaddrinfo() shim the original
// implementation uses to block DNS resolution for the C-family runtimes.
// Go's own resolver is pure Go and never calls into libc, so an
// LD_PRELOAD hook has no effect on it — a limitation the original
// project's own dns_intercept.c documents explicitly. This package
// instead substitutes net.DefaultResolver with one whose Dial hook
// inspects and, for matching queries, forges the wire-level DNS
// response before it ever reaches the caller.
package denylist

import (
	"net"
	"regexp"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

var (
	captureOnce    sync.Once
	originalDialer *net.Resolver

	patternsVal atomic.Value // holds []*regexp.Regexp
	activeFlag  atomic.Bool
)

func init() {
	patternsVal.Store([]*regexp.Regexp{})
}

// Install compiles patterns and activates interception for any hostname
// they match, replacing net.DefaultResolver on first use. A repeat call
// only replaces the active pattern set — it never re-wraps an
// already-wrapped resolver. Invalid patterns are logged and skipped;
// one bad pattern never disables the others.
func Install(patterns []string, log *chaoslog.Logger) {
	if log == nil {
		log = chaoslog.Default()
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn(chaoslog.ActionBlock, "skipping invalid denylist pattern", zap.String("pattern", p), zap.Error(err))
			continue
		}
		compiled = append(compiled, re)
	}
	patternsVal.Store(compiled)

	wasActive := activeFlag.Swap(true)
	if !wasActive {
		installResolver()
	}
	log.Info(chaoslog.ActionBlock, "denylist active", zap.Int("pattern_count", len(compiled)))
}

// Clear deactivates interception and restores the original resolver.
func Clear(log *chaoslog.Logger) {
	if !activeFlag.Swap(false) {
		return
	}
	if log == nil {
		log = chaoslog.Default()
	}
	patternsVal.Store([]*regexp.Regexp{})
	restoreResolver()
	log.Info(chaoslog.ActionClear, "denylist cleared")
}

// Active reports whether interception is currently installed.
func Active() bool {
	return activeFlag.Load()
}

// Blocks is the pure predicate over the active pattern set: it never
// touches net.DefaultResolver or performs I/O, so it can be exercised
// in isolation from the wire-level plumbing.
func Blocks(hostname string) bool {
	if !Active() {
		return false
	}
	patterns := patternsVal.Load().([]*regexp.Regexp)
	for _, re := range patterns {
		if re.MatchString(hostname) {
			return true
		}
	}
	return false
}

func installResolver() {
	captureOnce.Do(func() {
		originalDialer = net.DefaultResolver
	})
	net.DefaultResolver = &net.Resolver{
		PreferGo: true,
		Dial:     interceptingDial,
	}
}

func restoreResolver() {
	if originalDialer != nil {
		net.DefaultResolver = originalDialer
	}
}
