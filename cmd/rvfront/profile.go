package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rvfront/timing/core"
)

type profileOptions struct {
	cpuProfile string
	memProfile string
	duration   time.Duration
	cycles     uint64
}

var profOpts profileOptions

var profileCmd = &cobra.Command{
	Use:   "profile <program>",
	Short: "Measure simulation speed, optionally under pprof",
	Long: `Profile clocks the front end for a large number of cycles, restarting
the program through reset whenever the PC leaves the instruction store, and
reports simulated cycles per second.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(opts, args[0], logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if profOpts.cpuProfile != "" {
			f, err := os.Create(profOpts.cpuProfile)
			if err != nil {
				return fmt.Errorf("failed to create CPU profile: %w", err)
			}
			defer func() { _ = f.Close() }()

			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("failed to start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), profOpts.duration)
		defer cancel()

		result, err := profileRun(ctx, s, profOpts.cycles)
		if err != nil {
			return err
		}

		if profOpts.memProfile != "" {
			if err := writeHeapProfile(profOpts.memProfile); err != nil {
				return err
			}
		}

		result.print(cmd.OutOrStdout())
		return s.Close()
	},
}

func init() {
	flags := profileCmd.Flags()
	flags.StringVar(&profOpts.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flags.StringVar(&profOpts.memProfile, "memprofile", "", "Write memory profile to file")
	flags.DurationVar(&profOpts.duration, "duration", 30*time.Second, "Maximum wall time to run")
	flags.Uint64Var(&profOpts.cycles, "max-cycles", 1000000, "Cycles to simulate")
	rootCmd.AddCommand(profileCmd)
}

type profileResult struct {
	cycles   uint64
	restarts uint64
	elapsed  time.Duration
	timedOut bool
}

// profileRun clocks up to cycles edges, reset edges included. A fetch fault
// restarts the program through the configured reset sequence.
func profileRun(ctx context.Context, s *session, cycles uint64) (profileResult, error) {
	var r profileResult
	start := time.Now()

	// Reset clears the core statistics; the edge count spans restarts.
	first := s.core.Edges()
	ran := func() uint64 { return s.core.Edges() - first }
	s.core.PowerOn(s.cfg.ResetCycles)

	for ran() < cycles {
		err := s.core.Run(ctx, cycles-ran())
		if err == nil {
			break
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			r.timedOut = true
			break
		}
		if !errors.Is(err, core.ErrFetchFault) {
			return r, err
		}

		s.core.Reset(false)
		if ran() >= cycles {
			break
		}
		s.core.PowerOn(s.cfg.ResetCycles)
		r.restarts++
	}

	r.cycles = ran()
	r.elapsed = time.Since(start)
	return r, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}

func (r profileResult) print(w io.Writer) {
	fmt.Fprintf(w, "\nProfiling Results:\n")
	fmt.Fprintf(w, "Cycles simulated: %d\n", r.cycles)
	fmt.Fprintf(w, "Program restarts: %d\n", r.restarts)
	fmt.Fprintf(w, "Elapsed time: %v\n", r.elapsed)
	if r.timedOut {
		fmt.Fprintf(w, "Stopped at the time limit\n")
	}
	if r.cycles > 0 && r.elapsed > 0 {
		fmt.Fprintf(w, "Cycles/second: %.0f\n", float64(r.cycles)/r.elapsed.Seconds())
	}
}
