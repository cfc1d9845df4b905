package executor

import (
	"math"
	"time"
)

const (
	// DefaultTimeout bounds each build and run step.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxOutputBytes caps stdout and stderr independently.
	DefaultMaxOutputBytes = 10000

	// DefaultMaxFileSizeBytes is the largest file a program may write.
	DefaultMaxFileSizeBytes = 64 << 20
)

// Config holds the read-only settings shared by every runner.
type Config struct {
	Timeout        time.Duration
	MaxOutputBytes int

	// TempDir is where per-execution workspaces are created. Empty means
	// os.TempDir().
	TempDir string

	Toolchains Toolchains
	Limits     Limits

	// MaxConcurrent caps simultaneous executions. Zero means unlimited.
	MaxConcurrent int
}

// Toolchains names the executables each runner invokes. Bare names are
// resolved through PATH.
type Toolchains struct {
	Python string
	Node   string
	Go     string
	Cxx    string
}

// Limits are resource ceilings applied to the run step. Zero disables a limit.
type Limits struct {
	// CPUSeconds defaults to the timeout rounded up plus one second.
	CPUSeconds    uint64
	MemoryBytes   uint64
	FileSizeBytes uint64
	Processes     uint64
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		MaxOutputBytes: DefaultMaxOutputBytes,
		Toolchains:     DefaultToolchains(),
		Limits: Limits{
			FileSizeBytes: DefaultMaxFileSizeBytes,
		},
	}
}

// DefaultToolchains returns the executable names looked up in PATH.
func DefaultToolchains() Toolchains {
	return Toolchains{
		Python: "python3",
		Node:   "node",
		Go:     "go",
		Cxx:    "g++",
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	def := DefaultToolchains()
	if c.Toolchains.Python == "" {
		c.Toolchains.Python = def.Python
	}
	if c.Toolchains.Node == "" {
		c.Toolchains.Node = def.Node
	}
	if c.Toolchains.Go == "" {
		c.Toolchains.Go = def.Go
	}
	if c.Toolchains.Cxx == "" {
		c.Toolchains.Cxx = def.Cxx
	}
	if c.Limits.CPUSeconds == 0 {
		c.Limits.CPUSeconds = uint64(math.Ceil(c.Timeout.Seconds())) + 1
	}
	return c
}
