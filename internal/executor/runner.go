package executor

import (
	"github.com/Harsh-BH/pairexec/internal/domain"
)

// Toolchain is the external executable a runner depends on.
type Toolchain struct {
	Name string
	// Hint is shown to the user when Name cannot be found.
	Hint string
}

// Runner knows how one language is materialized, built and run. The engine
// owns the workspace lifecycle; a runner only describes commands.
type Runner interface {
	Language() domain.Language
	Toolchain() Toolchain
	// SourceFile is the file name the code is written to inside the workspace.
	SourceFile() string
	Compiled() bool
	// BuildCommand returns the compiler argv, or nil when there is no build step.
	BuildCommand(toolchain string, ws *Workspace) []string
	RunCommand(toolchain string, ws *Workspace) []string
	// Env lists variables added on top of the sanitized base environment.
	Env() []string
}

// InterpretedRunner runs the source file directly with its toolchain.
type InterpretedRunner struct {
	Lang   domain.Language
	Tool   Toolchain
	Source string
	// Args go between the toolchain and the source path, e.g. "run" for go.
	Args     []string
	ExtraEnv []string
}

var _ Runner = (*InterpretedRunner)(nil)

func (r *InterpretedRunner) Language() domain.Language { return r.Lang }
func (r *InterpretedRunner) Toolchain() Toolchain      { return r.Tool }
func (r *InterpretedRunner) SourceFile() string        { return r.Source }
func (r *InterpretedRunner) Compiled() bool            { return false }
func (r *InterpretedRunner) Env() []string             { return r.ExtraEnv }

func (r *InterpretedRunner) BuildCommand(string, *Workspace) []string { return nil }

func (r *InterpretedRunner) RunCommand(toolchain string, ws *Workspace) []string {
	argv := make([]string, 0, len(r.Args)+2)
	argv = append(argv, toolchain)
	argv = append(argv, r.Args...)
	return append(argv, ws.SourcePath())
}

// CompiledRunner compiles the source into the workspace binary and runs it.
type CompiledRunner struct {
	Lang     domain.Language
	Tool     Toolchain
	Source   string
	Flags    []string
	ExtraEnv []string
}

var _ Runner = (*CompiledRunner)(nil)

func (r *CompiledRunner) Language() domain.Language { return r.Lang }
func (r *CompiledRunner) Toolchain() Toolchain      { return r.Tool }
func (r *CompiledRunner) SourceFile() string        { return r.Source }
func (r *CompiledRunner) Compiled() bool            { return true }
func (r *CompiledRunner) Env() []string             { return r.ExtraEnv }

func (r *CompiledRunner) BuildCommand(toolchain string, ws *Workspace) []string {
	argv := make([]string, 0, len(r.Flags)+4)
	argv = append(argv, toolchain)
	argv = append(argv, r.Flags...)
	return append(argv, "-o", ws.BinaryPath(), ws.SourcePath())
}

func (r *CompiledRunner) RunCommand(_ string, ws *Workspace) []string {
	return []string{ws.BinaryPath()}
}

// DefaultRunners returns the runner table for the supported languages.
func DefaultRunners(tc Toolchains) []Runner {
	return []Runner{
		&InterpretedRunner{
			Lang:     domain.LangPython,
			Tool:     Toolchain{Name: tc.Python, Hint: "Python is not installed. Please install Python 3 to run Python code."},
			Source:   "main.py",
			ExtraEnv: []string{"PYTHONIOENCODING=utf-8", "PYTHONDONTWRITEBYTECODE=1"},
		},
		&InterpretedRunner{
			Lang:   domain.LangJavaScript,
			Tool:   Toolchain{Name: tc.Node, Hint: "Node.js is not installed. Please install Node.js to run JavaScript code."},
			Source: "main.js",
		},
		&InterpretedRunner{
			Lang:   domain.LangGo,
			Tool:   Toolchain{Name: tc.Go, Hint: "Go is not installed. Please install Go to run Go code."},
			Source: "main.go",
			Args:   []string{"run"},
		},
		&CompiledRunner{
			Lang:   domain.LangCpp,
			Tool:   Toolchain{Name: tc.Cxx, Hint: "G++ is not installed. Please install g++ to run C++ code."},
			Source: "main.cpp",
			Flags:  []string{"-std=c++17", "-O2"},
		},
	}
}
