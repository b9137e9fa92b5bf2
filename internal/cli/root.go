// Package cli defines the photofit command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// cfgFile is the path to the config file when set via --config.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "photofit",
		Short: "Fit FvCB photosynthesis parameters to A-Ci gas-exchange data",
		Long: `photofit estimates Vcmax, Jmax, Rd and optionally TPU from measured
A-Ci curves, with automatic fallback from nonlinear to bilinear estimation.
Use 'fit --help' for fitting options.`,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./photofit.yaml)")
}
