package main

import (
	"fmt"
	"os"
	"time"

	"rdtmon/internal/config"
	"rdtmon/internal/provider"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdCaps)
}

var cmdCaps = &cobra.Command{
	Use:   "caps",
	Short: "Show the monitoring capabilities detected on this system",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		probeSpin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stdout))
		probeSpin.Suffix = " Probing monitoring capabilities..."
		probeSpin.Start()
		caps, err := provider.NewResctrl(cfg.ResctrlPath, cfg.CPUPath).Capabilities()
		probeSpin.Stop()
		if err != nil {
			return err
		}

		if len(caps.Events) == 0 {
			fmt.Fprintln(os.Stdout, "No monitoring events supported")
			return nil
		}
		fmt.Fprintln(os.Stdout, "Supported monitoring events:")
		for _, info := range caps.Events {
			pids := "no"
			if info.PIDSupport {
				pids = "yes"
			}
			fmt.Fprintf(os.Stdout, "  %-4s scale=%.0f pid-support=%s\n", info.Event, info.ScaleFactor, pids)
		}

		sockets := make(map[int]bool)
		for _, c := range caps.Cores {
			sockets[c.Socket] = true
		}
		fmt.Fprintf(os.Stdout, "Online cores: %d (sockets: %d)\n", len(caps.Cores), len(sockets))
		return nil
	},
}
