package pipeline

import (
	"github.com/sarchlab/rvfront/timing/cache"
)

// CachedFetchStage accounts instruction fetches against an instruction
// cache model. The word itself always comes from the FetchStage.
type CachedFetchStage struct {
	cache *cache.Cache

	accessed bool
	lastAddr uint32
	latency  uint64
}

// NewCachedFetchStage creates a new cached fetch stage.
func NewCachedFetchStage(icache *cache.Cache) *CachedFetchStage {
	return &CachedFetchStage{cache: icache}
}

// NewCycle starts a new cycle. The first access of a cycle is always
// counted.
func (s *CachedFetchStage) NewCycle() {
	s.accessed = false
}

// Access looks addr up in the cache and returns the latency it would cost.
// Repeated accesses to the same address within one cycle are not counted
// again.
func (s *CachedFetchStage) Access(addr uint32) uint64 {
	if s.accessed && s.lastAddr == addr {
		return 0
	}
	result := s.cache.Read(uint64(addr)*cache.WordBytes, cache.WordBytes)
	s.accessed = true
	s.lastAddr = addr
	s.latency += result.Latency
	return result.Latency
}

// Latency returns the accumulated fetch latency.
func (s *CachedFetchStage) Latency() uint64 {
	return s.latency
}

// CacheStats returns the I-cache statistics.
func (s *CachedFetchStage) CacheStats() cache.Statistics {
	return s.cache.Stats()
}

// Reset clears the cache and accumulated latency.
func (s *CachedFetchStage) Reset() {
	s.cache.Reset()
	s.accessed = false
	s.latency = 0
}
