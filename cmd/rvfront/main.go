// Package main provides the entry point for rvfront.
// rvfront is a cycle-accurate model of a RISC-V pipeline front end: PC
// sequencing, instruction fetch, immediate generation, control decode,
// register reads and the IF/ID register.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	cycles     uint64
	vcdPath    string
	elf        bool
	icache     bool
	verbose    int
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "rvfront",
	Short: "Cycle-accurate RISC-V front-end simulator",
	Long: `rvfront simulates the fetch/decode front end of a minimal RISC-V
pipeline. Programs are text files with one 32-character binary instruction
per line, or RISC-V ELF executables with --elf.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetOutput(cmd.ErrOrStderr())
		logrus.SetLevel(logLevel(opts.verbose))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to simulation configuration JSON file")
	flags.Uint64Var(&opts.cycles, "cycles", 0, "Cycles to run after reset (default from config)")
	flags.StringVar(&opts.vcdPath, "vcd", "", "Write a VCD waveform to this file")
	flags.BoolVar(&opts.elf, "elf", false, "Program is a RISC-V ELF executable")
	flags.BoolVar(&opts.icache, "icache", false, "Enable the instruction cache model")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase verbosity (-v info, -vv debug)")
}

func logLevel(verbose int) logrus.Level {
	switch {
	case verbose >= 2:
		return logrus.DebugLevel
	case verbose == 1:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
