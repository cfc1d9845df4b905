package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

const (
	// TruncationMarker is appended to output or error text cut at the cap.
	TruncationMarker = "\n... (output truncated)"

	// compilationErrorPrefix marks compiler diagnostics in the error field.
	compilationErrorPrefix = "Compilation Error:\n"
)

func unsupportedResult(language string) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error: fmt.Sprintf("Unsupported language: %s. Supported: %s",
			strings.ToLower(language), domain.SupportedNames()),
		ExitCode: -1,
		Status:   domain.StatusUnsupportedLanguage,
	}
}

func toolchainMissingResult(tc Toolchain) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error:    fmt.Sprintf("%s not found: %s", tc.Name, tc.Hint),
		ExitCode: -1,
		Status:   domain.StatusToolchainMissing,
	}
}

func artifactErrorResult(err error) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error:    "Execution error: " + err.Error(),
		ExitCode: -1,
		Status:   domain.StatusArtifactError,
	}
}

func infraErrorResult(err error) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error:    "Execution error: " + err.Error(),
		ExitCode: -1,
		Status:   domain.StatusInternalError,
	}
}

func timeoutResult(timeout time.Duration) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error: fmt.Sprintf("Execution timed out after %s seconds",
			strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)),
		ExecutionTimeSeconds: roundMillis(timeout),
		ExitCode:             -1,
		Status:               domain.StatusTimeout,
	}
}

func compilationErrorResult(p *process) *domain.ExecutionResult {
	diagnostics := p.Stderr
	if diagnostics == "" {
		diagnostics = p.Stdout
	}
	return &domain.ExecutionResult{
		Error:    compilationErrorPrefix + diagnostics,
		ExitCode: p.ExitCode,
		Status:   domain.StatusCompilationError,
	}
}

func completedResult(p *process) *domain.ExecutionResult {
	status := domain.StatusSuccess
	if p.ExitCode != 0 {
		status = domain.StatusRuntimeError
	}
	return &domain.ExecutionResult{
		Success:              p.ExitCode == 0,
		Output:               p.Stdout,
		Error:                p.Stderr,
		ExecutionTimeSeconds: roundMillis(p.Elapsed),
		ExitCode:             p.ExitCode,
		Status:               status,
		MemoryUsedKB:         p.MaxRSSKB,
	}
}

// truncate keeps the first max bytes of s and appends TruncationMarker when s
// is longer than max.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + TruncationMarker
}

func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
