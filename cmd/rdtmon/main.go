package main

import (
	"log"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rdtmon [command]",
	Short: "rdtmon: cache and memory bandwidth monitor",
	Long:  `rdtmon reads hardware resource-monitoring counters and reports last-level cache occupancy and memory bandwidth for CPU core groups or individual processes.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
