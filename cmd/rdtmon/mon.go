package main

import (
	"rdtmon/internal/config"
	"rdtmon/internal/monitor"
	"rdtmon/internal/provider"

	"github.com/spf13/cobra"
)

var (
	monCores    []string
	monPIDs     []string
	monInterval int
	monTime     string
	monTop      bool
	monFile     string
	monFileType string
)

func init() {
	rootCmd.AddCommand(cmdMon)

	cmdMon.Flags().StringArrayVarP(&monCores, "mon-core", "m", nil, "Core event selection, e.g. \"llc:0,2;mbl:[0-3]\" (repeatable)")
	cmdMon.Flags().StringArrayVarP(&monPIDs, "mon-pid", "p", nil, "Process event selection, e.g. \"all:1234\" (repeatable)")
	cmdMon.Flags().IntVarP(&monInterval, "interval", "i", monitor.DefaultInterval, "Sampling interval in 100ms units")
	cmdMon.Flags().StringVarP(&monTime, "mon-time", "t", "inf", "Run duration in seconds, or \"inf\"")
	cmdMon.Flags().BoolVarP(&monTop, "mon-top", "T", false, "Rank rows by cache occupancy, heaviest first")
	cmdMon.Flags().StringVarP(&monFile, "mon-file", "o", "", "Output file (default stdout)")
	cmdMon.Flags().StringVarP(&monFileType, "mon-file-type", "u", "text", "Output format: text, xml or csv")
}

// monitorOptions carries one run's CLI selections into the setup path
// shared by mon and top.
type monitorOptions struct {
	cores    []string
	pids     []string
	interval int
	monTime  string
	fileType string
	output   string
	topLike  bool
}

// buildMonitor turns CLI selections into a started monitoring run.
// Selection parsing happens before any hardware access so bad input
// fails without touching the resource-monitoring interface.
func buildMonitor(opts monitorOptions) (*monitor.Monitor, error) {
	timeout, err := monitor.ParseTimeout(opts.monTime)
	if err != nil {
		return nil, err
	}
	format, err := monitor.ParseFormat(opts.fileType)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	reg := monitor.NewRegistry(cfg.CoreCapacity, cfg.PIDCapacity)
	for _, spec := range opts.cores {
		if err := reg.AddCoreSpec(spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range opts.pids {
		if err := reg.AddPIDSpec(spec); err != nil {
			return nil, err
		}
	}

	prov := provider.NewResctrl(cfg.ResctrlPath, cfg.CPUPath)
	return monitor.Setup(prov, reg, monitor.MonitorConfig{
		Interval: opts.interval,
		Timeout:  timeout,
		TopLike:  opts.topLike,
		Format:   format,
		Output:   opts.output,
	})
}

var cmdMon = &cobra.Command{
	Use:   "mon",
	Short: "Sample monitoring counters and print them at a fixed interval",
	Long:  `Groups the selected cores or processes, samples cache occupancy and memory bandwidth counters on every interval, and renders the frames as text, xml or csv until interrupted or the run duration elapses. With no selection every online core is monitored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMonitor(monitorOptions{
			cores:    monCores,
			pids:     monPIDs,
			interval: monInterval,
			monTime:  monTime,
			fileType: monFileType,
			output:   monFile,
			topLike:  monTop,
		})
		if err != nil {
			return err
		}
		defer m.Close()
		return m.Run()
	},
}
