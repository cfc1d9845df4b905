package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/executor"
)

var (
	langFlag    string
	stdinFlag   string
	timeoutFlag time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <file|->",
	Short: "Execute a source file",
	Long: `Execute a source file and print what it wrote. The language comes from
--lang or the file extension. Use - to read the program from stdin, in which
case --lang is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Language or alias (python, js, go, cpp, ...)")
	runCmd.Flags().StringVar(&stdinFlag, "stdin", "", "File whose contents are passed as standard input")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Wall-clock limit (overrides EXEC_TIMEOUT)")
	rootCmd.AddCommand(runCmd)
}

var extLanguages = map[string]domain.Language{
	".py":  domain.LangPython,
	".js":  domain.LangJavaScript,
	".mjs": domain.LangJavaScript,
	".go":  domain.LangGo,
	".cpp": domain.LangCpp,
	".cc":  domain.LangCpp,
	".cxx": domain.LangCpp,
}

// languageFor picks the language from the flag, falling back to the extension.
func languageFor(path, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return string(lang), nil
	}
	return "", fmt.Errorf("cannot infer the language of %q, pass --lang", path)
}

// processExitCode maps a result exit code to a shell exit status.
func processExitCode(code int) int {
	switch {
	case code >= 0:
		return code
	case code == -1:
		return 1
	default:
		return 128 - code // killed by signal -code
	}
}

func readSource(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "-" && langFlag == "" {
		return errors.New("--lang is required when reading from stdin")
	}
	lang, err := languageFor(path, langFlag)
	if err != nil {
		return err
	}

	code, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var input string
	if stdinFlag != "" {
		b, err := os.ReadFile(stdinFlag)
		if err != nil {
			return fmt.Errorf("read stdin file: %w", err)
		}
		input = string(b)
	}

	engine, err := newEngine(func(c *executor.Config) {
		if timeoutFlag > 0 {
			c.Timeout = timeoutFlag
		}
	})
	if err != nil {
		return err
	}

	res := engine.Execute(cmd.Context(), &domain.ExecutionRequest{
		Code:     code,
		Language: lang,
		Stdin:    input,
	})
	exitCode = processExitCode(res.ExitCode)

	if jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	if res.Error != "" {
		fmt.Fprint(cmd.ErrOrStderr(), res.Error)
		if !strings.HasSuffix(res.Error, "\n") {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
	if verboseFlag {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] exit %d in %.3fs\n", res.Status, res.ExitCode, res.ExecutionTimeSeconds)
	}
	return nil
}
