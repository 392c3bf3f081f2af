package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/core"
	"github.com/sarchlab/cachesim/trace"
)

// configEnv names the environment variable that supplies the default system
// config path.
const configEnv = "CACHESIM_CONFIG"

// errAssertionsFailed makes run exit with a failure after a complete run.
var errAssertionsFailed = errors.New("assertions failed")

// newRootCmd assembles the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cachesim",
		Short: "Simulate an inclusive L1/L2/L3 cache hierarchy shared by several cores.",
		Long: `cachesim runs access traces against a processor whose cores have ` +
			`private L1 and L2 caches and share one L3 cache and main memory. ` +
			`The system is described by the trace header or by a JSON config.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd(), newDescribeCmd(), newConfigCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}

	return 0
}

// configPath returns the --config flag, falling back to CACHESIM_CONFIG.
func configPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config") {
		path, _ := cmd.Flags().GetString("config")
		return path
	}

	return os.Getenv(configEnv)
}

// loadSystemConfig loads the config named by --config or CACHESIM_CONFIG.
// It returns nil when neither is set.
func loadSystemConfig(cmd *cobra.Command) (*core.SystemConfig, error) {
	path := configPath(cmd)
	if path == "" {
		return nil, nil
	}

	config, err := core.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}

	return config, nil
}

func newLogger(verbose bool) *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	}

	return log.New(io.Discard, "", 0)
}

// compileTrace compiles path. The source line of a compilation error is
// printed to the command's error output.
func compileTrace(cmd *cobra.Command, path string) (*trace.Program, error) {
	p, err := trace.CompileFile(path)

	var cerr *trace.CompilationError
	if errors.As(err, &cerr) {
		fmt.Fprintln(cmd.ErrOrStderr(), cerr.Detail())
	}

	return p, err
}
