package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 0 success, 1 configuration error, 2 fatal adapter error at
// startup, 3 store corruption.
const (
	exitOK            = 0
	exitConfigError   = 1
	exitAdapterFatal  = 2
	exitStoreCorrupt  = 3
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "premovescan",
	Short: "Pre-pump accumulation scanner for crypto perpetual futures",
	Long: `premovescan periodically ingests market microstructure data across
perpetual-futures venues, scores symbols for quiet pre-pump accumulation,
derives adaptive trade levels, and monitors registered positions.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "premovescan.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
