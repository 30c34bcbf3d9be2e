package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/insts"
)

var (
	// ErrMalformedLine is returned for a program line that is not a
	// 32-character binary string.
	ErrMalformedLine = errors.New("malformed instruction line")
	// ErrStoreTooSmall is returned when a program has more words than the
	// instruction store holds. It is the same value the store itself
	// reports.
	ErrStoreTooSmall = emu.ErrStoreTooSmall
)

// Parse reads a text program: one instruction per line written as a
// CPUBits-character binary string, most significant bit first. Blank lines
// are skipped. A size > 0 bounds the number of words.
func Parse(r io.Reader, size int) ([]uint32, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		word, err := parseWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if size > 0 && len(words) == size {
			return nil, fmt.Errorf("line %d: store holds %d words: %w",
				lineNo, size, ErrStoreTooSmall)
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return words, nil
}

func parseWord(line string) (uint32, error) {
	if len(line) != insts.CPUBits {
		return 0, fmt.Errorf("%q has %d characters, want %d: %w",
			line, len(line), insts.CPUBits, ErrMalformedLine)
	}

	v, err := strconv.ParseUint(line, 2, insts.CPUBits)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", line, ErrMalformedLine)
	}
	return uint32(v), nil
}

// Load reads a text program from path. See Parse.
func Load(path string, size int) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Format writes words in the text program format.
func Format(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%032b\n", word); err != nil {
			return err
		}
	}
	return bw.Flush()
}
