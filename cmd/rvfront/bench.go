package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rvfront/benchmarks"
)

var benchOpts struct {
	csv      bool
	json     bool
	noICache bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the built-in front-end workloads",
	Long: `Bench runs a fixed set of small programs with scripted jump and
write-back stimulus and reports fetch, decode and I-cache statistics.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := benchmarks.DefaultConfig()
		config.EnableICache = !benchOpts.noICache
		config.Output = cmd.OutOrStdout()
		config.Logger = logrus.StandardLogger()

		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

		results, err := harness.RunAll()
		if err != nil {
			return err
		}

		switch {
		case benchOpts.json:
			return harness.PrintJSON(results)
		case benchOpts.csv:
			harness.PrintCSV(results)
		default:
			harness.PrintResults(results)
		}
		return nil
	},
}

func init() {
	flags := benchCmd.Flags()
	flags.BoolVar(&benchOpts.csv, "csv", false, "Output results in CSV format")
	flags.BoolVar(&benchOpts.json, "json", false, "Output results in JSON format")
	flags.BoolVar(&benchOpts.noICache, "no-icache", false, "Disable instruction cache simulation")
	rootCmd.AddCommand(benchCmd)
}
