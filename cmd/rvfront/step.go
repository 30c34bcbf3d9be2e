package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/signal"
)

var stepCmd = &cobra.Command{
	Use:   "step <program>",
	Short: "Step the front end one clock edge at a time",
	Long: `Step opens a terminal viewer. Keys:
  n, space   one clock edge
  r          toggle reset
  s          clear the jump select
  q, ctrl-c  quit
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("step needs an interactive terminal")
		}

		// Log lines would corrupt the screen.
		logger := logrus.New()
		logger.SetOutput(&logBuffer)
		logger.SetLevel(logLevel(opts.verbose))

		s, err := newSession(opts, args[0], logger)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		s.core.PowerOn(s.cfg.ResetCycles)

		if err := runViewer(s); err != nil {
			return err
		}
		return s.Close()
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
}

var logBuffer lineBuffer

// lineBuffer keeps the last few log lines for the status view.
type lineBuffer struct {
	lines []string
}

const maxLogLines = 8

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.lines = append(b.lines, string(p))
	if len(b.lines) > maxLogLines {
		b.lines = b.lines[len(b.lines)-maxLogLines:]
	}
	return len(p), nil
}

type viewer struct {
	s *session
}

func runViewer(s *session) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}
	defer g.Close()

	v := &viewer{s: s}
	g.SetManagerFunc(v.layout)

	bindings := []struct {
		key     interface{}
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{'n', v.step},
		{gocui.KeySpace, v.step},
		{'r', v.toggleReset},
		{'s', v.sequential},
	}
	for _, b := range bindings {
		if err := g.SetKeybinding("", b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (v *viewer) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	split := maxX / 2

	if view, err := g.SetView("outputs", 0, 0, split-1, maxY-12); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		view.Title = "Front end"
	}

	if view, err := g.SetView("registers", split, 0, maxX-1, maxY-12); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		view.Title = "Registers"
	}

	if view, err := g.SetView("status", 0, maxY-11, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		view.Title = "Status  [n] step  [r] reset  [s] sequential  [q] quit"
	}

	return v.render(g)
}

func (v *viewer) render(g *gocui.Gui) error {
	outView, err := g.View("outputs")
	if err != nil {
		return err
	}
	outView.Clear()

	pipe := v.s.core.Pipeline
	o := pipe.Outputs()
	fmt.Fprintf(outView, " cycle        %d\n", v.s.core.Stats().Cycles)
	fmt.Fprintf(outView, " reset        %s\n", pipe.Phase())
	fmt.Fprintf(outView, " pc           %d\n", o.PC)
	fmt.Fprintf(outView, " pc_addr      %d\n", o.PCAddr)
	fmt.Fprintf(outView, " instruction  0x%08x  %032b\n", o.Instruction, o.Instruction)
	fmt.Fprintf(outView, " format       %s\n", o.Format)
	fmt.Fprintf(outView, " immediate    0x%08x  %d\n", o.Immediate, int32(o.Immediate))
	fmt.Fprintf(outView, " if_id        0x%016x\n", o.IFID)
	fmt.Fprintf(outView, " rda / rdb    %d / %d\n", o.RDA, o.RDB)
	fmt.Fprintf(outView, " control      %s\n", o.Control)
	if o.Undefined {
		fmt.Fprintf(outView, "              undefined opcode, control held\n")
	}
	if v.s.core.Faulted() {
		fmt.Fprintf(outView, " FETCH FAULT\n")
	}

	regView, err := g.View("registers")
	if err != nil {
		return err
	}
	regView.Clear()
	regs := v.s.core.RegFile().Snapshot()
	for i := 0; i < emu.NumRegs; i += 2 {
		fmt.Fprintf(regView, " x%-2d %10d    x%-2d %10d\n", i, regs[i], i+1, regs[i+1])
	}

	statusView, err := g.View("status")
	if err != nil {
		return err
	}
	statusView.Clear()
	for _, line := range logBuffer.lines {
		fmt.Fprint(statusView, line)
	}

	return nil
}

func (v *viewer) step(g *gocui.Gui, _ *gocui.View) error {
	v.s.core.Tick()
	return v.render(g)
}

func (v *viewer) toggleReset(g *gocui.Gui, _ *gocui.View) error {
	pipe := v.s.core.Pipeline
	if pipe.Phase() == signal.PhaseRun {
		pipe.AssertReset()
	} else {
		pipe.ReleaseReset()
	}
	return v.render(g)
}

func (v *viewer) sequential(g *gocui.Gui, _ *gocui.View) error {
	v.s.core.Pipeline.ClearJump()
	return v.render(g)
}

func quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}
