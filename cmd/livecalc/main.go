// Command livecalc runs nested-stochastic life-insurance valuations
// from a YAML run configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitOK         = 0
	exitUsageError = 1
	exitRunFailure = 2
)

var rootCmd = &cobra.Command{
	Use:   "livecalc",
	Short: "Nested-stochastic actuarial valuation engine",
	Long: `livecalc values a life-insurance policy portfolio across a grid of
interest-rate scenarios, reporting portfolio-level NPV statistics
(mean, standard deviation, percentiles, CTE95).`,
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if ce, ok := err.(*cliError); ok {
			os.Exit(ce.code)
		}
		os.Exit(exitUsageError)
	}
}
