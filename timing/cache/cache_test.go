package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		store   *emu.InstructionStore
		backing *cache.StoreBacking
	)

	BeforeEach(func() {
		words := make([]uint32, 32)
		for i := range words {
			words[i] = 0x1000 + uint32(i)
		}
		var err error
		store, err = emu.NewInstructionStore(words, 0)
		Expect(err).NotTo(HaveOccurred())
		backing = cache.NewStoreBacking(store)

		// 64B, 2-way, 16B lines: 2 sets of 2 blocks
		config := cache.Config{
			Size:          64,
			Associativity: 2,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   10,
		}
		c = cache.New(config, backing)
	})

	Describe("StoreBacking", func() {
		It("should expose words as little-endian bytes", func() {
			Expect(backing.Read(4, 4)).To(Equal([]byte{0x01, 0x10, 0x00, 0x00}))
		})

		It("should read zero beyond the store", func() {
			Expect(backing.Read(32*4, 4)).To(Equal([]byte{0, 0, 0, 0}))
		})
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			result := c.Read(0, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Data).To(Equal(uint64(0x1000)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			c.Read(0, 4)

			result := c.Read(0, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(result.Data).To(Equal(uint64(0x1000)))
		})

		It("should hit on other words in the same line", func() {
			c.Read(0, 4)

			result := c.Read(12, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint64(0x1003)))
			Expect(c.Stats().HitRate()).To(BeNumerically("==", 0.5))
		})
	})

	Describe("Eviction", func() {
		It("should evict the LRU block when a set is full", func() {
			// Byte addresses 0, 32 and 64 all map to set 0.
			c.Read(0, 4)
			c.Read(32, 4)
			c.Read(0, 4)

			result := c.Read(64, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint64(32)))
			Expect(result.Data).To(Equal(uint64(0x1010)))

			Expect(c.Read(0, 4).Hit).To(BeTrue())
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})
	})

	Describe("Invalidate and Reset", func() {
		It("should miss after invalidation", func() {
			c.Read(0, 4)
			c.Invalidate(8)
			Expect(c.Read(0, 4).Hit).To(BeFalse())
		})

		It("should clear lines and statistics on reset", func() {
			c.Read(0, 4)
			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Read(0, 4).Hit).To(BeFalse())
		})

		It("should keep lines when only statistics are reset", func() {
			c.Read(0, 4)
			c.ResetStats()
			Expect(c.Read(0, 4).Hit).To(BeTrue())
		})
	})

	Describe("Default configuration", func() {
		It("should create the L1I config", func() {
			config := cache.DefaultL1IConfig()
			Expect(config.Size).To(Equal(512))
			Expect(config.Associativity).To(Equal(2))
			Expect(config.BlockSize).To(Equal(16))
		})
	})
})
