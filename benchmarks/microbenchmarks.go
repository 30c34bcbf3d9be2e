package benchmarks

import "github.com/sarchlab/rvfront/timing/pipeline"

// GetMicrobenchmarks returns the standard set of front-end workloads.
// Each benchmark targets one fetch or decode characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		sequentialFetch(),
		tightLoop(),
		setConflict(),
		mixedFormats(),
		undefinedOpcodes(),
		registerWriteBack(),
	}
}

func repeat(n int, pattern ...uint32) []uint32 {
	out := make([]uint32, 0, n)
	for len(out) < n {
		out = append(out, pattern...)
	}
	return out[:n]
}

// 1. Sequential fetch - straight-line code, one miss per cache line
func sequentialFetch() Benchmark {
	return Benchmark{
		Name:        "sequential_fetch",
		Description: "128 straight-line R-format words - measures cold line fills",
		Program:     repeat(128, EncodeRType(3, 5, 6)),
		Cycles:      128,
	}
}

// 2. Tight loop - the testbench jumps back to 0 every 8 edges
func tightLoop() Benchmark {
	return Benchmark{
		Name:        "tight_loop",
		Description: "8-word loop driven by the jump input - measures warm hits",
		Program: repeat(16,
			EncodeLoad(1, 2, 4),
			EncodeRType(3, 1, 2),
			EncodeStore(2, 3, 8),
			EncodeRType(4, 3, 1),
		),
		Cycles:   256,
		Stimulus: everyN(8, 0),
	}
}

// 3. Set conflict - jump targets that share one cache set
func setConflict() Benchmark {
	// A 256-byte stride maps every target to set 0 of the default
	// 16-set cache.
	targets := []uint32{0, 64, 128, 192}
	return Benchmark{
		Name:        "set_conflict",
		Description: "Round-robin jumps to four lines of one 2-way set - measures thrashing",
		Program:     repeat(256, EncodeRType(3, 5, 6)),
		Cycles:      128,
		Stimulus: func(pipe *pipeline.Pipeline, cycle uint64) {
			pipe.SetJump(targets[cycle%uint64(len(targets))])
		},
	}
}

// 4. Mixed formats - every control table entry in turn
func mixedFormats() Benchmark {
	return Benchmark{
		Name:        "mixed_formats",
		Description: "Rotating R/I/S/SB words - exercises every immediate layout",
		Program: repeat(128,
			EncodeRType(3, 5, 6),
			EncodeLoad(5, 10, -4),
			EncodeStore(10, 5, 12),
			EncodeBranch(1, 2, -16),
		),
		Cycles: 128,
	}
}

// 5. Undefined opcodes - words outside the control table
func undefinedOpcodes() Benchmark {
	// addi x1, x1, 1 is not decoded by the control unit
	const addi = uint32(0x00108093)
	return Benchmark{
		Name:        "undefined_opcodes",
		Description: "Alternating load and addi - counts held control vectors",
		Program:     repeat(64, EncodeLoad(1, 2, 0), addi),
		Cycles:      64,
	}
}

// 6. Register write-back - the testbench writes a register every edge
func registerWriteBack() Benchmark {
	return Benchmark{
		Name:        "register_writeback",
		Description: "Add stream reading x5 while the write port updates it - measures read-after-write",
		Program:     repeat(64, EncodeRType(3, 5, 6)),
		Cycles:      64,
		Stimulus: func(pipe *pipeline.Pipeline, cycle uint64) {
			pipe.SetWriteBack(5, uint32(cycle), true)
		},
	}
}

// everyN returns a stimulus that selects target once every n edges.
func everyN(n uint64, target uint32) Stimulus {
	return func(pipe *pipeline.Pipeline, cycle uint64) {
		if cycle > 0 && cycle%n == 0 {
			pipe.SetJump(target)
		} else {
			pipe.ClearJump()
		}
	}
}
