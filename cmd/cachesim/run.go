package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/record"
	"github.com/sarchlab/cachesim/trace"
)

// autoName as the value of --csv or --db picks a unique file name.
const autoName = "auto"

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run TRACE",
		Short: "Run a trace and print the report.",
		Long: "`run TRACE` builds the system from the trace header, or from " +
			"--config for a trace without one, executes every access and " +
			"prints the cache, memory and hit tables. It fails if any " +
			"assertion in the trace does not hold.",
		Args: cobra.ExactArgs(1),
		RunE: runTrace,
	}

	runCmd.Flags().String("config", "", "System config JSON for traces without a header (default $"+configEnv+")")
	runCmd.Flags().String("csv", "", `Record every access into a CSV file ("`+autoName+`" picks a name)`)
	runCmd.Flags().String("db", "", `Record every access into a SQLite database ("`+autoName+`" picks a name)`)
	runCmd.Flags().BoolP("verbose", "v", false, "Log the construction of the system")

	return runCmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	p, err := compileTrace(cmd, args[0])
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	opts := []trace.Option{trace.WithLogger(newLogger(verbose))}

	if !p.HasHeader() || cmd.Flags().Changed("config") {
		config, err := loadSystemConfig(cmd)
		if err != nil {
			return err
		}

		if config != nil {
			opts = append(opts, trace.WithSystemConfig(config))
		}
	}

	report := trace.NewReport()
	opts = append(opts, trace.WithHook(report))

	writers, recorders, err := openWriters(cmd)
	if err != nil {
		return err
	}

	for _, r := range recorders {
		opts = append(opts, trace.WithHook(r))
	}

	result, runErr := trace.NewInterpreter(opts...).Run(p)

	if err := closeWriters(writers); err != nil {
		return err
	}

	for _, r := range recorders {
		if r.Err() != nil {
			return fmt.Errorf("recording accesses: %w", r.Err())
		}
	}

	if runErr != nil {
		return runErr
	}

	if err := report.Render(cmd.OutOrStdout(), result.Processor); err != nil {
		return err
	}

	return checkAssertions(cmd, result)
}

// openWriters initializes the writers the flags ask for. When one fails, the
// ones already open are closed.
func openWriters(cmd *cobra.Command) ([]record.Writer, []*record.Recorder, error) {
	var pending []record.Writer

	if cmd.Flags().Changed("csv") {
		path, _ := cmd.Flags().GetString("csv")
		pending = append(pending, record.NewCSVWriter(outputName(path)))
	}

	if cmd.Flags().Changed("db") {
		path, _ := cmd.Flags().GetString("db")
		pending = append(pending, record.NewSQLiteWriter(outputName(path)))
	}

	writers := make([]record.Writer, 0, len(pending))
	recorders := make([]*record.Recorder, 0, len(pending))

	for _, w := range pending {
		if err := w.Init(); err != nil {
			return nil, nil, errors.Join(err, closeWriters(writers))
		}

		writers = append(writers, w)
		recorders = append(recorders, record.NewRecorder(w))
	}

	return writers, recorders, nil
}

func closeWriters(writers []record.Writer) error {
	var errs []error
	for _, w := range writers {
		errs = append(errs, w.Close())
	}

	return errors.Join(errs...)
}

func outputName(flag string) string {
	if flag == autoName {
		return ""
	}

	return flag
}

func checkAssertions(cmd *cobra.Command, result *trace.Result) error {
	if result.Passed() {
		return nil
	}

	for _, f := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "assertion failed: %s\n", f)
	}

	return fmt.Errorf("%w: %d of the trace's assertions", errAssertionsFailed, len(result.Failures))
}
