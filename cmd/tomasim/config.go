package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/timing/latency"
)

var configOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the default timing configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := latency.DefaultTimingConfig().SaveConfig(configOut); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configOut)
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configOut, "out", "o", "timing.json", "output path")
	rootCmd.AddCommand(configCmd)
}
