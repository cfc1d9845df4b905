//go:build linux

package executor

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// applyLimits sets resource ceilings on a running process. It runs right
// after spawn, so the child executes briefly before the limits take effect.
func applyLimits(pid int, l Limits) error {
	var errs []error
	set := func(name string, resource int, value uint64) {
		if value == 0 {
			return
		}
		rl := unix.Rlimit{Cur: value, Max: value}
		if err := unix.Prlimit(pid, resource, &rl, nil); err != nil {
			errs = append(errs, fmt.Errorf("prlimit %s: %w", name, err))
		}
	}

	set("cpu", unix.RLIMIT_CPU, l.CPUSeconds)
	set("as", unix.RLIMIT_AS, l.MemoryBytes)
	set("fsize", unix.RLIMIT_FSIZE, l.FileSizeBytes)
	set("nproc", unix.RLIMIT_NPROC, l.Processes)

	return errors.Join(errs...)
}

// maxRSSKB returns the peak resident set size of a finished process.
func maxRSSKB(state *os.ProcessState) int {
	if ru, ok := state.SysUsage().(*syscall.Rusage); ok {
		return int(ru.Maxrss) // kilobytes on Linux
	}
	return 0
}
