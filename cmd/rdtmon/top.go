package main

import (
	"fmt"

	"rdtmon/internal/monitor"
	"rdtmon/internal/tui"

	"github.com/spf13/cobra"
)

var (
	topCores    []string
	topPIDs     []string
	topInterval int
)

func init() {
	rootCmd.AddCommand(cmdTop)

	cmdTop.Flags().StringArrayVarP(&topCores, "mon-core", "m", nil, "Core event selection, e.g. \"llc:0,2;mbl:[0-3]\" (repeatable)")
	cmdTop.Flags().StringArrayVarP(&topPIDs, "mon-pid", "p", nil, "Process event selection, e.g. \"all:1234\" (repeatable)")
	cmdTop.Flags().IntVarP(&topInterval, "interval", "i", monitor.DefaultInterval, "Sampling interval in 100ms units")
}

var cmdTop = &cobra.Command{
	Use:   "top",
	Short: "Launch the interactive terminal UI",
	Long:  `Samples the selected cores or processes at the configured interval and shows them in a live table ranked by cache occupancy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMonitor(monitorOptions{
			cores:    topCores,
			pids:     topPIDs,
			interval: topInterval,
			monTime:  "inf",
			topLike:  true,
		})
		if err != nil {
			return err
		}
		defer m.Close()

		if err := tui.Run(m); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
