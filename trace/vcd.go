// Package trace records front-end outputs as a Value Change Dump (VCD)
// waveform, one time step per clock edge.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/rvfront/insts"
	"github.com/sarchlab/rvfront/timing/pipeline"
	"github.com/sarchlab/rvfront/timing/signal"
)

// Timescale is the VCD time unit of one clock edge.
const Timescale = "1ns"

type probe struct {
	name  string
	id    string
	width int
	get   func(pipeline.Outputs) uint64

	last    uint64
	written bool
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func defaultProbes() []*probe {
	return []*probe{
		{name: "valid", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Valid) }},
		{name: "pc", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.PC) }},
		{name: "pc_addr", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.PCAddr) }},
		{name: "instruction", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.Instruction) }},
		{name: "im_gen", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.Immediate) }},
		{name: "if_id", width: pipeline.IFIDRegBits, get: func(o pipeline.Outputs) uint64 { return o.IFID }},
		{name: "rda", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.RDA) }},
		{name: "rdb", width: insts.CPUBits, get: func(o pipeline.Outputs) uint64 { return uint64(o.RDB) }},
		{name: "alu_src", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.ALUSrc) }},
		{name: "mem_to_rgs", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.MemToReg) }},
		{name: "reg_wr", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.RegWrite) }},
		{name: "mem_rd", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.MemRead) }},
		{name: "mem_wr", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.MemWrite) }},
		{name: "brnch", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Control.Branch) }},
		{name: "alu_op", width: 3, get: func(o pipeline.Outputs) uint64 { return uint64(o.Control.ALUOp) }},
		{name: "undefined", width: 1, get: func(o pipeline.Outputs) uint64 { return b2u(o.Undefined) }},
	}
}

// identifier returns the printable VCD identifier for index i.
func identifier(i int) string {
	const first, span = '!', '~' - '!' + 1
	id := ""
	for {
		id += string(rune(first + i%span))
		i /= span
		if i == 0 {
			return id
		}
		i--
	}
}

// VCDWriter writes a VCD stream. Sample must be called with
// non-decreasing times.
type VCDWriter struct {
	w      *bufio.Writer
	scope  string
	probes []*probe

	headerDone bool
	lastTime   uint64
	err        error
}

// NewVCDWriter creates a writer whose variables live in the given scope.
func NewVCDWriter(w io.Writer, scope string) *VCDWriter {
	probes := defaultProbes()
	for i, p := range probes {
		p.id = identifier(i)
	}
	return &VCDWriter{
		w:      bufio.NewWriter(w),
		scope:  scope,
		probes: probes,
	}
}

func (v *VCDWriter) printf(format string, args ...any) {
	if v.err != nil {
		return
	}
	_, v.err = fmt.Fprintf(v.w, format, args...)
}

func (v *VCDWriter) writeHeader() {
	v.printf("$version rvfront $end\n")
	v.printf("$timescale %s $end\n", Timescale)
	v.printf("$scope module %s $end\n", v.scope)
	for _, p := range v.probes {
		v.printf("$var wire %d %s %s $end\n", p.width, p.id, p.name)
	}
	v.printf("$upscope $end\n")
	v.printf("$enddefinitions $end\n")
	v.headerDone = true
}

func (v *VCDWriter) writeValue(p *probe, value uint64) {
	if p.width == 1 {
		v.printf("%d%s\n", value&1, p.id)
		return
	}
	s := signal.New(p.width, value)
	v.printf("b%s %s\n", strconv.FormatUint(s.Value(), 2), p.id)
}

// Sample records out at time t. Only values that changed since the
// previous sample are written.
func (v *VCDWriter) Sample(t uint64, out pipeline.Outputs) error {
	if !v.headerDone {
		v.writeHeader()
		v.printf("#%d\n$dumpvars\n", t)
		for _, p := range v.probes {
			p.last = p.get(out)
			p.written = true
			v.writeValue(p, p.last)
		}
		v.printf("$end\n")
		v.lastTime = t
		return v.err
	}

	if t < v.lastTime {
		return fmt.Errorf("vcd time %d before %d", t, v.lastTime)
	}

	stamped := false
	for _, p := range v.probes {
		value := p.get(out)
		if p.written && value == p.last {
			continue
		}
		if !stamped {
			v.printf("#%d\n", t)
			stamped = true
		}
		p.last = value
		p.written = true
		v.writeValue(p, value)
	}
	v.lastTime = t

	return v.err
}

// Flush writes buffered output.
func (v *VCDWriter) Flush() error {
	if v.err != nil {
		return v.err
	}
	return v.w.Flush()
}
