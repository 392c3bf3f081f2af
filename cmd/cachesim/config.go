package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/core"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create system config files.",
	}

	dumpCmd := &cobra.Command{
		Use:   "dump TRACE",
		Short: "Write the system described by a trace header as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := compileTrace(cmd, args[0])
			if err != nil {
				return err
			}

			config, err := p.SystemConfig()
			if err != nil {
				return err
			}

			return writeConfig(cmd, config)
		},
	}

	defaultCmd := &cobra.Command{
		Use:   "default",
		Short: "Write the default system config as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(cmd, core.DefaultSystemConfig())
		},
	}

	for _, c := range []*cobra.Command{dumpCmd, defaultCmd} {
		c.Flags().StringP("output", "o", "", "Output file (default stdout)")
	}

	configCmd.AddCommand(dumpCmd, defaultCmd)

	return configCmd
}

// writeConfig saves config to --output, or prints it.
func writeConfig(cmd *cobra.Command, config *core.SystemConfig) error {
	out, _ := cmd.Flags().GetString("output")
	if out != "" {
		if err := config.SaveConfig(out); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "System config written to %s\n", out)

		return nil
	}

	return printConfig(cmd.OutOrStdout(), config)
}

func printConfig(w io.Writer, config *core.SystemConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(config)
}
