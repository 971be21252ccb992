package main

import (
	"github.com/spf13/cobra"
)

var (
	iterations int
	memProfile string
	pprofAddr  string
	format     string
)

var rootCmd = &cobra.Command{
	Use:   "subrcprof",
	Short: "Profile allocation behaviour of subrc handles",
	Long: `subrcprof builds, clones, reads and releases subrc handles in a loop
and reports allocations and timing. It can also write a heap profile and
expose net/http/pprof while it runs.`,
	SilenceUsage: true,
	RunE:         runProfile,
}

func init() {
	rootCmd.Flags().IntVarP(&iterations, "iterations", "n", 10000, "Handles to build per mode")
	rootCmd.Flags().StringVar(&memProfile, "mem-profile", "", "Write a heap profile to this file")
	rootCmd.Flags().StringVar(&pprofAddr, "pprof-addr", "", "Serve net/http/pprof on this address (e.g. localhost:6060)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text or yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
