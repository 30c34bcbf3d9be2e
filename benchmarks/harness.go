// Package benchmarks provides front-end workload infrastructure: small
// programs with clock-by-clock stimulus whose fetch statistics are reported
// for comparison across cache configurations.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/timing/cache"
	"github.com/sarchlab/rvfront/timing/config"
	"github.com/sarchlab/rvfront/timing/core"
	"github.com/sarchlab/rvfront/timing/pipeline"
)

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the number of clock edges after reset release
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Fetches is the number of instructions fetched
	Fetches uint64 `json:"fetches"`

	// Jumps is the number of edges with the jump select asserted
	Jumps uint64 `json:"jumps"`

	// UndefinedOpcodes is the number of fetched words with no control entry
	UndefinedOpcodes uint64 `json:"undefined_opcodes"`

	// FetchFault is true if the PC left the instruction store
	FetchFault bool `json:"fetch_fault"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// FetchLatency is the accumulated I-cache latency (if cache enabled)
	FetchLatency uint64 `json:"fetch_latency,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Stimulus drives the front-end inputs before clock edge cycle.
type Stimulus func(pipe *pipeline.Pipeline, cycle uint64)

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the instruction store contents
	Program []uint32

	// Cycles is the number of edges to run after reset release
	Cycles uint64

	// Stimulus drives jumps and write-back, if set
	Stimulus Stimulus
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableICache enables instruction cache simulation
	EnableICache bool

	// ICache overrides the default cache geometry when EnableICache is set
	ICache *cache.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives per-cycle logs (default: discarded)
	Logger logrus.FieldLogger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableICache: true,
		Output:       os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		config.Logger = logger
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	cfg := config.DefaultSimConfig()
	cfg.StoreSize = len(bench.Program)
	if h.config.EnableICache {
		ic := cache.DefaultL1IConfig()
		if h.config.ICache != nil {
			ic = *h.config.ICache
		}
		cfg.ICache = &ic
	}

	c, err := core.NewCoreFromConfig(cfg, bench.Program, h.config.Logger)
	if err != nil {
		return BenchmarkResult{}, err
	}

	c.PowerOn(cfg.ResetCycles)
	pipe := c.Pipeline
	base := c.Stats().Cycles

	start := time.Now()
	for i := uint64(0); i < bench.Cycles && !c.Faulted(); i++ {
		if bench.Stimulus != nil {
			bench.Stimulus(pipe, i)
		}
		c.Tick()
	}
	wallTime := time.Since(start)

	stats := pipe.Stats()
	result := BenchmarkResult{
		Name:             bench.Name,
		Description:      bench.Description,
		SimulatedCycles:  stats.Cycles - base,
		Fetches:          stats.Fetches,
		Jumps:            stats.Jumps,
		UndefinedOpcodes: stats.UndefinedOpcodes,
		FetchFault:       c.Faulted(),
		WallTime:         wallTime,
	}

	if pipe.UseICache() {
		icStats := pipe.ICacheStats()
		result.ICacheHits = icStats.Hits
		result.ICacheMisses = icStats.Misses
		result.FetchLatency = stats.FetchLatency
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:  %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Fetches:           %d\n", r.Fetches)
		_, _ = fmt.Fprintf(h.config.Output, "  Jumps:             %d\n", r.Jumps)
		_, _ = fmt.Fprintf(h.config.Output, "  Undefined Opcodes: %d\n", r.UndefinedOpcodes)
		if r.FetchFault {
			_, _ = fmt.Fprintf(h.config.Output, "  Stopped on fetch fault\n")
		}
		if h.config.EnableICache {
			_, _ = fmt.Fprintf(h.config.Output, "  I-Cache:\n")
			_, _ = fmt.Fprintf(h.config.Output, "    Hits:    %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "    Misses:  %d\n", r.ICacheMisses)
			_, _ = fmt.Fprintf(h.config.Output, "    Latency: %d\n", r.FetchLatency)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n\n", r.WallTime)
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,fetches,jumps,undefined_opcodes,icache_hits,icache_misses,fetch_latency,fetch_fault")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.Fetches,
			r.Jumps,
			r.UndefinedOpcodes,
			r.ICacheHits,
			r.ICacheMisses,
			r.FetchLatency,
			r.FetchFault,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// ICache is the cache geometry, nil when disabled
	ICache *cache.Config `json:"icache,omitempty"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// ICacheHitRate is the overall hit rate, zero when disabled
	ICacheHitRate float64 `json:"icache_hit_rate"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, hits, misses uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		hits += r.ICacheHits
		misses += r.ICacheMisses
		totalWallTime += r.WallTime
	}

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	meta := ReportMetadata{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.config.EnableICache {
		ic := cache.DefaultL1IConfig()
		if h.config.ICache != nil {
			ic = *h.config.ICache
		}
		meta.ICache = &ic
	}

	report := BenchmarkReport{
		Metadata: meta,
		Results:  results,
		Summary: ReportSummary{
			TotalBenchmarks: len(results),
			TotalCycles:     totalCycles,
			ICacheHitRate:   hitRate,
			TotalWallTime:   totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
