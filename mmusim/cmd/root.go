// Package cmd provides the command-line interface for mmusim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mmusim",
	Short: "mmusim simulates the address translation path of a paged MMU.",
	Long: `mmusim simulates the address translation path of a paged MMU: ` +
		`a 4-level page table, a TLB and a physically addressed L1 cache. ` +
		`Settings are read from flags, from MMUSIM_* environment variables ` +
		`and from a .env file, in that order of precedence.`,
	SilenceUsage: true,
}

var cfg = defaultConfig()

func init() {
	loadDotEnv()

	cobra.CheckErr(cfg.loadEnv())

	cfg.bindFlags(rootCmd.PersistentFlags())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exit hooks, such as flushing the trace database, run before
// the process ends.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
