package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvfront/timing/cache"
	"github.com/sarchlab/rvfront/timing/pipeline"
)

var _ = Describe("CachedFetchStage", func() {
	var stage *pipeline.CachedFetchStage

	BeforeEach(func() {
		store := newTestStore(1, 2, 3, 4, 5, 6, 7, 8)
		icache := cache.New(cache.DefaultL1IConfig(), cache.NewStoreBacking(store))
		stage = pipeline.NewCachedFetchStage(icache)
	})

	It("should charge a miss then hits within one line", func() {
		stage.NewCycle()
		Expect(stage.Access(0)).To(Equal(uint64(10)))
		stage.NewCycle()
		Expect(stage.Access(1)).To(Equal(uint64(1)))
		Expect(stage.Latency()).To(Equal(uint64(11)))
	})

	It("should count an address once per cycle", func() {
		stage.NewCycle()
		stage.Access(4)
		Expect(stage.Access(4)).To(BeZero())
		Expect(stage.CacheStats().Reads).To(Equal(uint64(1)))

		stage.NewCycle()
		stage.Access(4)
		Expect(stage.CacheStats().Reads).To(Equal(uint64(2)))
	})

	It("should forget contents and latency on reset", func() {
		stage.NewCycle()
		stage.Access(0)
		stage.Reset()

		Expect(stage.Latency()).To(BeZero())
		stage.NewCycle()
		Expect(stage.Access(0)).To(Equal(uint64(10)))
	})
})
