package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/config"
	"github.com/Harsh-BH/pairexec/internal/executor"
)

var (
	verboseFlag bool
	jsonFlag    bool
)

// exitCode is what the process returns after a successful command; run sets
// it to the program's exit status.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "pairexec",
	Short: "pairexec - run snippets and completions locally",
	Long: `pairexec runs code through the same execution engine as the API server,
without the HTTP layer. Engine settings come from the EXEC_* environment
variables and .env, like the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log engine activity to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")
}

// newEngine builds an engine from the environment configuration.
func newEngine(overrides func(*executor.Config)) (*executor.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verboseFlag {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	execCfg := cfg.Executor()
	if overrides != nil {
		overrides(&execCfg)
	}
	return executor.NewEngine(execCfg, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
