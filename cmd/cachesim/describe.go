package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/core"
)

func newDescribeCmd() *cobra.Command {
	describeCmd := &cobra.Command{
		Use:   "describe [TRACE]",
		Short: "Print how every cache level splits an address.",
		Long: "`describe TRACE` uses the trace header. Without a trace the " +
			"system comes from --config, or the default system.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := describedConfig(cmd, args)
			if err != nil {
				return err
			}

			proc, err := core.MakeBuilder().WithConfig(*config).Build()
			if err != nil {
				return err
			}

			return describe(cmd.OutOrStdout(), proc)
		},
	}

	describeCmd.Flags().String("config", "", "System config JSON (default $"+configEnv+")")

	return describeCmd
}

func describedConfig(cmd *cobra.Command, args []string) (*core.SystemConfig, error) {
	if len(args) == 1 {
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("give either a trace or --config, not both")
		}

		p, err := compileTrace(cmd, args[0])
		if err != nil {
			return nil, err
		}

		return p.SystemConfig()
	}

	config, err := loadSystemConfig(cmd)
	if err != nil || config != nil {
		return config, err
	}

	return core.DefaultSystemConfig(), nil
}

func describe(w io.Writer, proc *core.Processor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Level\tCapacity\tWays\tLine\tSets\tTag bits\tLookup bits\tOffset bits")
	for _, l := range proc.Hierarchy().Levels() {
		c := l.Cache
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			l.Name, c.Capacity(), c.Associativity(), c.LineSize(), c.NumSets(),
			c.TagWidth(), c.LookupWidth(), c.OffsetWidth())
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	mm := proc.MainMemory()
	fmt.Fprintf(w, "\nMain memory: %d bytes RAM, %d bytes virtual, %d bytes total\n",
		mm.RAMSize(), mm.VMSize(), mm.TotalSize())
	fmt.Fprintf(w, "Cores: %d\n", proc.NumCores())

	return nil
}
