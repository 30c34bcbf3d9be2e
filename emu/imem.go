package emu

import (
	"errors"
	"fmt"
)

// ErrStoreTooSmall is returned when a program has more words than the
// instruction store holds.
var ErrStoreTooSmall = errors.New("program does not fit instruction store")

// DefaultStoreSize is the number of words in a default instruction store.
const DefaultStoreSize = 128

// InstructionStore is a read-only, word-addressed program memory.
// Its contents are fixed when it is created.
type InstructionStore struct {
	words []uint32
}

// NewInstructionStore creates a store holding a copy of words, zero-padded
// to size entries. A size of 0 sizes the store to the program. It fails if
// the program does not fit.
func NewInstructionStore(words []uint32, size int) (*InstructionStore, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid instruction store size %d", size)
	}
	if size == 0 {
		size = len(words)
	}
	if len(words) > size {
		return nil, fmt.Errorf("program has %d words but store holds %d: %w",
			len(words), size, ErrStoreTooSmall)
	}
	if size == 0 {
		return nil, fmt.Errorf("instruction store is empty")
	}

	s := &InstructionStore{words: make([]uint32, size)}
	copy(s.words, words)
	return s, nil
}

// Size returns the number of words in the store.
func (s *InstructionStore) Size() int {
	return len(s.words)
}

// Read returns the word at addr. The boolean is false if addr is outside
// the store.
func (s *InstructionStore) Read(addr uint32) (uint32, bool) {
	if uint64(addr) >= uint64(len(s.words)) {
		return 0, false
	}
	return s.words[addr], true
}

// Words returns a copy of the stored program.
func (s *InstructionStore) Words() []uint32 {
	out := make([]uint32, len(s.words))
	copy(out, s.words)
	return out
}
