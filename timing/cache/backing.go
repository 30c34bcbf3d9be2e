package cache

import (
	"github.com/sarchlab/rvfront/emu"
)

// WordBytes is the size of one instruction word in bytes.
const WordBytes = 4

// StoreBacking exposes a word-addressed emu.InstructionStore as a
// byte-addressed BackingStore. Bytes outside the store read as zero.
type StoreBacking struct {
	store *emu.InstructionStore
}

// NewStoreBacking creates a new StoreBacking adapter.
func NewStoreBacking(store *emu.InstructionStore) *StoreBacking {
	return &StoreBacking{store: store}
}

// Read fetches data from the instruction store.
func (m *StoreBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		a := addr + uint64(i)
		if a/WordBytes > 0xFFFFFFFF {
			continue
		}
		word, ok := m.store.Read(uint32(a / WordBytes))
		if !ok {
			continue
		}
		data[i] = byte(word >> (8 * (a % WordBytes)))
	}
	return data
}
