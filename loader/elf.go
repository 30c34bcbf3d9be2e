// Package loader reads programs for the instruction store, either from the
// text format (one binary word per line) or from a RISC-V ELF executable.
package loader

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNotRISCV is returned for an ELF file that is not a 32-bit
// little-endian RISC-V executable.
var ErrNotRISCV = errors.New("not a 32-bit little-endian RISC-V ELF file")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the byte address where this segment should be loaded.
	VirtAddr uint32
	// Words contains the segment file contents as little-endian words. A
	// trailing partial word is zero-padded.
	Words []uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program.
type Program struct {
	// EntryPoint is the byte address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments, ordered by address.
	Segments []Segment
}

// Text returns the executable segments concatenated in address order. The
// instruction store is word addressed from zero, so gaps between segments
// are not preserved.
func (p *Program) Text() []uint32 {
	var words []uint32
	for _, seg := range p.Segments {
		if seg.Flags&SegmentFlagExecute == 0 {
			continue
		}
		words = append(words, seg.Words...)
	}
	return words
}

// LoadELF parses a RISC-V ELF executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("%s: %v %v: %w", path, f.Class, f.Data, ErrNotRISCV)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%s: machine type %v: %w", path, f.Machine, ErrNotRISCV)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Words:    bytesToWords(data),
			Flags:    flags,
		})
	}

	sort.SliceStable(prog.Segments, func(i, j int) bool {
		return prog.Segments[i].VirtAddr < prog.Segments[j].VirtAddr
	})

	return prog, nil
}

func bytesToWords(data []byte) []uint32 {
	words := make([]uint32, (len(data)+3)/4)
	for i := range words {
		var buf [4]byte
		copy(buf[:], data[i*4:])
		words[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return words
}
