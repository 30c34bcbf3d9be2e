package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/loader"
	"github.com/sarchlab/rvfront/timing/cache"
	"github.com/sarchlab/rvfront/timing/config"
	"github.com/sarchlab/rvfront/timing/core"
	"github.com/sarchlab/rvfront/trace"
)

// session is one configured simulation with its optional waveform sink.
type session struct {
	cfg    *config.SimConfig
	core   *core.Core
	logger logrus.FieldLogger

	vcd     *trace.VCDWriter
	vcdFile *os.File
	vcdErr  error
}

func loadConfig(o options) (*config.SimConfig, error) {
	cfg := config.DefaultSimConfig()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	if o.cycles > 0 {
		cfg.MaxCycles = o.cycles
	}
	if o.icache && cfg.ICache == nil {
		ic := cache.DefaultL1IConfig()
		cfg.ICache = &ic
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadProgram(path string, cfg *config.SimConfig, elf bool) ([]uint32, error) {
	if !elf {
		return loader.Load(path, cfg.StoreSize)
	}

	prog, err := loader.LoadELF(path)
	if err != nil {
		return nil, err
	}
	words := prog.Text()
	if len(words) > cfg.StoreSize {
		return nil, fmt.Errorf("%s: %d words, store holds %d: %w",
			path, len(words), cfg.StoreSize, loader.ErrStoreTooSmall)
	}
	return words, nil
}

func newSession(o options, programPath string, logger logrus.FieldLogger) (*session, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	words, err := loadProgram(programPath, cfg, o.elf)
	if err != nil {
		return nil, err
	}

	c, err := core.NewCoreFromConfig(cfg, words, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		core:   c,
		logger: logger,
	}

	if o.vcdPath != "" {
		f, err := os.Create(o.vcdPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create VCD file: %w", err)
		}
		s.vcdFile = f
		s.vcd = trace.NewVCDWriter(f, "frontend")
		s.sample()
		c.OnTick(s.sample)
	}

	logger.WithFields(logrus.Fields{
		"program": programPath,
		"words":   len(words),
		"store":   cfg.StoreSize,
	}).Info("program loaded")

	return s, nil
}

func (s *session) sample() {
	if s.vcdErr != nil {
		return
	}
	s.vcdErr = s.vcd.Sample(s.core.Edges(), s.core.Pipeline.Outputs())
}

// Close flushes and closes the waveform file. Later calls do nothing.
func (s *session) Close() error {
	if s.vcdFile == nil {
		return nil
	}

	err := s.vcdErr
	if ferr := s.vcd.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.vcdFile.Close(); err == nil {
		err = cerr
	}
	s.vcdFile = nil
	if err != nil {
		return fmt.Errorf("failed to write VCD file: %w", err)
	}
	return nil
}
