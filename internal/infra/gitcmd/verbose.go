package gitcmd

import (
	"sync/atomic"

	"github.com/tasuku43/wsm/internal/infra/output"
)

var verbose atomic.Bool

// SetVerbose echoes every git invocation as a "$ git ..." log line.
func SetVerbose(v bool) {
	verbose.Store(v)
}

func IsVerbose() bool {
	return verbose.Load()
}

func Logf(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	output.Logf("$ "+format, args...)
}
