package domain

// ExecutionStatus classifies how an execution ended (or where a queued job is).
type ExecutionStatus string

const (
	StatusQueued              ExecutionStatus = "QUEUED"
	StatusCompiling           ExecutionStatus = "COMPILING"
	StatusRunning             ExecutionStatus = "RUNNING"
	StatusSuccess             ExecutionStatus = "SUCCESS"
	StatusRuntimeError        ExecutionStatus = "RUNTIME_ERROR"
	StatusCompilationError    ExecutionStatus = "COMPILATION_ERROR"
	StatusTimeout             ExecutionStatus = "TIMEOUT"
	StatusToolchainMissing    ExecutionStatus = "TOOLCHAIN_MISSING"
	StatusUnsupportedLanguage ExecutionStatus = "UNSUPPORTED_LANGUAGE"
	StatusArtifactError       ExecutionStatus = "ARTIFACT_ERROR"
	StatusInternalError       ExecutionStatus = "INTERNAL_ERROR"
)

// IsTerminal returns true if the status represents a final state.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusRuntimeError, StatusCompilationError, StatusTimeout,
		StatusToolchainMissing, StatusUnsupportedLanguage, StatusArtifactError,
		StatusInternalError:
		return true
	}
	return false
}

// ExecutionRequest is one snippet to run. It has no identity beyond the call.
type ExecutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Stdin    string `json:"stdin"`
}

// ExecutionResult is the normalized outcome of an execution. Every failure mode
// fills every field, so callers never see gaps.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error"`

	// ExecutionTimeSeconds is wall-clock time rounded to the millisecond.
	ExecutionTimeSeconds float64 `json:"executionTime"`
	ExitCode             int     `json:"returnCode"`

	Status       ExecutionStatus `json:"status"`
	MemoryUsedKB int             `json:"-"`
}
