package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long Wait blocks on pipes still held open by
// grandchildren after the process group has been killed.
const waitDelay = 500 * time.Millisecond

// passthroughEnv is the part of the host environment visible to user code.
var passthroughEnv = []string{
	"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR",
	"GOCACHE", "GOPATH", "GOROOT", "GOMODCACHE",
}

// process is the raw outcome of one child process.
type process struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
	TimedOut bool
	MaxRSSKB int
}

// spawn runs argv in dir, feeding stdin and capturing both streams, bounded by
// the engine timeout. A non-zero exit is not an error; only failures to start
// or wait for the child are. limits, when set, are applied right after start.
func (e *Engine) spawn(ctx context.Context, argv []string, dir string, env []string, stdin string, limits *Limits) (*process, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = strings.NewReader(stdin)

	// Capture one byte past the cap so truncation can be detected.
	stdout := &limitedBuffer{limit: e.cfg.MaxOutputBytes + 1}
	stderr := &limitedBuffer{limit: e.cfg.MaxOutputBytes + 1}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Own process group, so a timeout kills everything the program forked.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return killProcessGroup(cmd.Process) }
	cmd.WaitDelay = waitDelay

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", filepath.Base(argv[0]), err)
	}

	if limits != nil {
		if err := applyLimits(cmd.Process.Pid, *limits); err != nil {
			e.logger.Warn("Failed to apply resource limits",
				zap.Int("pid", cmd.Process.Pid),
				zap.Error(err),
			)
		}
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(startTime)

	// Reap background children left behind by a program that exited normally.
	_ = killProcessGroup(cmd.Process)

	p := &process{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}
	if cmd.ProcessState != nil {
		p.MaxRSSKB = maxRSSKB(cmd.ProcessState)
	}

	e.logger.Debug("Child process finished",
		zap.String("command", filepath.Base(argv[0])),
		zap.Duration("elapsed", elapsed),
		zap.Bool("stdout_truncated", stdout.truncated),
		zap.Bool("stderr_truncated", stderr.truncated),
		zap.NamedError("wait_error", waitErr),
	)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		p.TimedOut = true
		p.ExitCode = -1
		return p, nil
	}

	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("wait %s: %w", filepath.Base(argv[0]), waitErr)
		}
	}

	p.ExitCode = exitCode(cmd.ProcessState)
	return p, nil
}

// killProcessGroup SIGKILLs every process in the group led by p.
func killProcessGroup(p *os.Process) error {
	if p == nil {
		return nil
	}
	err := syscall.Kill(-p.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

// exitCode reports the process exit status, or the negated signal number when
// the process was killed by a signal.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

// buildEnv returns the sanitized host environment plus extra.
func buildEnv(extra []string) []string {
	env := make([]string, 0, len(passthroughEnv)+len(extra))
	for _, key := range passthroughEnv {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return append(env, extra...)
}

// limitedBuffer is a bytes.Buffer that stops accepting writes after a limit.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (lb *limitedBuffer) Write(p []byte) (n int, err error) {
	if lb.truncated {
		return len(p), nil // discard silently
	}

	remaining := lb.limit - lb.buf.Len()
	if remaining <= 0 {
		lb.truncated = true
		return len(p), nil
	}

	if len(p) > remaining {
		lb.truncated = true
		lb.buf.Write(p[:remaining])
		return len(p), nil
	}

	return lb.buf.Write(p)
}

func (lb *limitedBuffer) String() string {
	return lb.buf.String()
}
