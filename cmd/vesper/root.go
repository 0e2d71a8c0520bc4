package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vesper",
	Short: "Vesper - HTTP(S) server host with admission control",
	Long: `Vesper is an HTTP(S) server host with built-in admission control.

It binds one or more listeners (TCP or UNIX socket), rejects traffic
early when the process is overloaded, decorates responses with
precomputed CORS and security headers, and shuts down within a bounded
drain window. Lifecycle and rejection events can be persisted to a
local audit database.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
