package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rvfront/script"
)

var scriptCmd = &cobra.Command{
	Use:   "script <program> <file.lua>",
	Short: "Drive the front end from a Lua stimulus script",
	Long: `Script loads the program and hands clock, reset and the input ports to
a Lua script. The front end starts with reset asserted; the script calls
release() and tick() to run it.
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(opts, args[0], logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		engine := script.New(s.core, s.logger)
		if err := engine.RunFile(cmd.Context(), args[1]); err != nil {
			return err
		}

		printStats(cmd.OutOrStdout(), s)
		if opts.verbose > 0 {
			dumpState(cmd.OutOrStdout(), s)
		}
		return s.Close()
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
