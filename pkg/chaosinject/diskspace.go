package chaosinject

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// DiskSpacePrefix names every file this primitive creates, so cleanup
// can find them without tracking filenames across invocations.
const DiskSpacePrefix = "diskspace-failure-"

const diskChunkSize = 1 << 20 // 1 MiB; avoids one large allocation per fill.

// tmpDir is a var, not a const, so tests can redirect writes away from
// the real /tmp.
var tmpDir = os.TempDir

// DiskSpace writes a megabyteCount-MiB file under /tmp in 1 MiB chunks.
// Failures are logged, never returned — a full or read-only filesystem
// must not abort the invocation.
func DiskSpace(megabyteCount int, deps Deps) {
	name := fmt.Sprintf("%s%d-%08x.tmp", DiskSpacePrefix, time.Now().UnixMilli(), deps.rng().Uint32())
	path := filepath.Join(tmpDir(), name)

	f, err := os.Create(path)
	if err != nil {
		deps.log().Error(chaoslog.ActionInject, "failed to create diskspace file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	chunk := make([]byte, diskChunkSize)
	remaining := int64(megabyteCount) * 1024 * 1024
	for remaining > 0 {
		n := int64(len(chunk))
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(chunk[:n]); err != nil {
			deps.log().Error(chaoslog.ActionInject, "failed writing diskspace file", zap.String("path", path), zap.Error(err))
			return
		}
		remaining -= n
	}
	deps.log().Info(chaoslog.ActionInject, "injecting diskspace", zap.String("path", path), zap.Int("megabytes", megabyteCount))
}

// ClearDiskSpace removes every file under /tmp with DiskSpacePrefix. It
// is called unconditionally at the start of each invocation, so a
// failed or skipped roll in a prior invocation never leaks disk usage
// into the next one.
func ClearDiskSpace(deps Deps) {
	dir := tmpDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), DiskSpacePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		deps.log().Info(chaoslog.ActionClear, "removed diskspace failure files", zap.Int("count", removed))
	}
}
