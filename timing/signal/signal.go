// Package signal provides the bit-vector and reset primitives shared by every
// front-end component.
//
// A Signal is a fixed-width unsigned value. All slicing uses inclusive
// [hi:lo] bit positions and must stay inside [0, width). A Register is a
// Signal whose new value only becomes visible at a clock edge.
package signal

import "fmt"

// MaxWidth is the widest signal that can be represented.
const MaxWidth = 64

// Signal is a fixed-width unsigned value.
type Signal struct {
	width uint8
	value uint64
}

// New creates a signal of the given width holding v truncated to width.
func New(width int, v uint64) Signal {
	if width <= 0 || width > MaxWidth {
		panic(fmt.Sprintf("signal: invalid width %d", width))
	}
	s := Signal{width: uint8(width)}
	s.Set(v)
	return s
}

// Width returns the number of bits in the signal.
func (s Signal) Width() int {
	return int(s.width)
}

// Value returns the unsigned value of the signal.
func (s Signal) Value() uint64 {
	return s.value
}

// Set replaces the value, discarding bits above the width.
func (s *Signal) Set(v uint64) {
	s.value = v & s.mask()
}

// Bit returns bit i as 0 or 1.
func (s Signal) Bit(i int) uint64 {
	s.check(i, i)
	return (s.value >> uint(i)) & 1
}

// Slice returns bits [hi:lo] shifted down to bit 0.
func (s Signal) Slice(hi, lo int) uint64 {
	s.check(hi, lo)
	return (s.value >> uint(lo)) & fieldMask(hi-lo+1)
}

// SetBit writes bit i.
func (s *Signal) SetBit(i int, b uint64) {
	s.SetSlice(i, i, b)
}

// SetSlice writes v into bits [hi:lo], leaving all other bits untouched.
func (s *Signal) SetSlice(hi, lo int, v uint64) {
	s.check(hi, lo)
	m := fieldMask(hi-lo+1) << uint(lo)
	s.value = (s.value &^ m) | ((v << uint(lo)) & m)
}

// String formats the signal as a Verilog-style sized hex literal.
func (s Signal) String() string {
	return fmt.Sprintf("%d'h%x", s.width, s.value)
}

func (s Signal) mask() uint64 {
	return fieldMask(int(s.width))
}

func (s Signal) check(hi, lo int) {
	if lo < 0 || hi < lo || hi >= int(s.width) {
		panic(fmt.Sprintf("signal: slice [%d:%d] out of range for width %d",
			hi, lo, s.width))
	}
}

func fieldMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

// Register is a clocked signal. SetNext stages a value that Commit makes
// visible; reads between edges always see the committed value.
type Register struct {
	cur     Signal
	next    Signal
	pending bool
}

// NewRegister creates a register of the given width and initial value.
func NewRegister(width int, v uint64) *Register {
	s := New(width, v)
	return &Register{cur: s, next: s}
}

// Value returns the committed value.
func (r *Register) Value() uint64 {
	return r.cur.Value()
}

// Signal returns the committed value as a Signal.
func (r *Register) Signal() Signal {
	return r.cur
}

// SetNext stages v for the next Commit.
func (r *Register) SetNext(v uint64) {
	r.next.Set(v)
	r.pending = true
}

// Commit makes the staged value visible. It reports whether a value was
// staged since the previous edge.
func (r *Register) Commit() bool {
	if !r.pending {
		return false
	}
	r.cur = r.next
	r.pending = false
	return true
}

// Force overwrites both the committed and staged value.
func (r *Register) Force(v uint64) {
	r.cur.Set(v)
	r.next = r.cur
	r.pending = false
}
