package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// binaryName is the compiled program inside a workspace. The workspace
// directory is unique per execution, so the binary is too.
const binaryName = "prog"

// Workspace is the private directory holding every artifact of one
// execution: the source file, the compiled binary and anything the program
// writes to its working directory.
type Workspace struct {
	Dir    string
	source string
}

// NewWorkspace creates a uniquely named directory under base.
func NewWorkspace(base string, lang domain.Language) (*Workspace, error) {
	dir, err := os.MkdirTemp(base, fmt.Sprintf("pairexec-%s-*", lang))
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Materialize writes code to a new file called name. It fails if the file
// already exists.
func (w *Workspace) Materialize(name, code string) error {
	path := filepath.Join(w.Dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create source file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return fmt.Errorf("write source file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close source file: %w", err)
	}
	w.source = path
	return nil
}

// SourcePath is the materialized source file.
func (w *Workspace) SourcePath() string {
	return w.source
}

// BinaryPath is where compiled runners put their output.
func (w *Workspace) BinaryPath() string {
	return filepath.Join(w.Dir, binaryName)
}

// Cleanup removes the workspace and everything in it. Removing a workspace
// that is already gone is not an error.
func (w *Workspace) Cleanup() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	// Programs may have left read-only directories behind.
	_ = filepath.WalkDir(w.Dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = os.Chmod(path, 0o700)
		}
		return nil
	})
	if err := os.RemoveAll(w.Dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove workspace %s: %w", w.Dir, err)
	}
	return nil
}
