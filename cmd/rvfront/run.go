package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sarchlab/rvfront/timing/core"
	"github.com/sarchlab/rvfront/timing/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a program for a fixed number of cycles",
	Long: `Run holds reset for the configured number of edges, releases it and
prints the front-end outputs after every clock edge.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(opts, args[0], logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := runBatch(cmd, s); err != nil {
			return err
		}
		return s.Close()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, s *session) error {
	out := cmd.OutOrStdout()
	s.core.PowerOn(s.cfg.ResetCycles)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	writeCycleHeader(tw)

	for i := uint64(0); i < s.cfg.MaxCycles; i++ {
		err := s.core.Run(cmd.Context(), 1)
		if errors.Is(err, core.ErrFetchFault) {
			s.logger.WithError(err).Warn("run stopped")
			break
		}
		if err != nil {
			return err
		}
		writeCycle(tw, s.core.Stats().Cycles, s.core.Pipeline.Outputs())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printStats(out, s)

	if opts.verbose > 0 {
		dumpState(out, s)
	}
	return nil
}

func writeCycleHeader(w io.Writer) {
	fmt.Fprintln(w, "cycle\tpc\tinstruction\timmediate\tif_id\trda\trdb\tcontrol\t")
}

func writeCycle(w io.Writer, cycle uint64, o pipeline.Outputs) {
	ctrl := o.Control.String()
	if o.Undefined {
		ctrl += " (held)"
	}
	fmt.Fprintf(w, "%d\t%d\t0x%08x\t0x%08x\t0x%016x\t%d\t%d\t%s\t\n",
		cycle, o.PC, o.Instruction, o.Immediate, o.IFID, o.RDA, o.RDB, ctrl)
}

func printStats(w io.Writer, s *session) {
	stats := s.core.Stats()
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Total Cycles:      %d\n", stats.Cycles)
	fmt.Fprintf(w, "Reset Cycles:      %d\n", stats.ResetCycles)
	fmt.Fprintf(w, "Fetches:           %d\n", stats.Fetches)
	fmt.Fprintf(w, "Jumps:             %d\n", stats.Jumps)
	fmt.Fprintf(w, "Undefined opcodes: %d\n", stats.UndefinedOpcodes)
	fmt.Fprintf(w, "Register writes:   %d\n", stats.RegWrites)
	if s.core.Faulted() {
		fmt.Fprintf(w, "Stopped on fetch fault at pc %d\n", s.core.Pipeline.PC())
	}

	if s.core.Pipeline.UseICache() {
		ic := s.core.Pipeline.ICacheStats()
		fmt.Fprintf(w, "\nI-Cache:\n")
		fmt.Fprintf(w, "  Reads:    %d\n", ic.Reads)
		fmt.Fprintf(w, "  Hits:     %d\n", ic.Hits)
		fmt.Fprintf(w, "  Misses:   %d\n", ic.Misses)
		fmt.Fprintf(w, "  Hit rate: %.2f%%\n", 100*ic.HitRate())
		fmt.Fprintf(w, "  Latency:  %d cycles\n", s.core.Pipeline.Stats().FetchLatency)
	}
}

// dumpState pretty-prints the final outputs and register file.
func dumpState(w io.Writer, s *session) {
	printer := pp.New()
	printer.SetOutput(w)
	printer.SetColoringEnabled(isTerminal(w))

	_, _ = printer.Println(s.core.Pipeline.Outputs())
	_, _ = printer.Println(s.core.RegFile().Snapshot())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
