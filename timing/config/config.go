// Package config holds the run configuration of a front-end simulation.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/cache"
)

// SimConfig holds the parameters of one simulation run.
type SimConfig struct {
	// StoreSize is the number of words in the instruction store.
	// Default: 128.
	StoreSize int `json:"store_size"`

	// SeedRegisters loads register i with 10+i instead of zero.
	// Default: true.
	SeedRegisters bool `json:"seed_registers"`

	// ResetCycles is how many clock edges reset stays asserted before it is
	// released. Default: 1.
	ResetCycles uint64 `json:"reset_cycles"`

	// MaxCycles bounds a batch run. Default: 10.
	MaxCycles uint64 `json:"max_cycles"`

	// ICache enables the instruction-fetch cache model when set.
	ICache *cache.Config `json:"icache,omitempty"`
}

// DefaultSimConfig returns a SimConfig matching the reference testbench.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		StoreSize:     emu.DefaultStoreSize,
		SeedRegisters: true,
		ResetCycles:   1,
		MaxCycles:     10,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can build a simulation.
func (c *SimConfig) Validate() error {
	if c.StoreSize <= 0 {
		return fmt.Errorf("store_size must be > 0")
	}
	if c.ResetCycles == 0 {
		return fmt.Errorf("reset_cycles must be > 0")
	}
	if c.ICache != nil {
		ic := c.ICache
		if ic.Associativity <= 0 || ic.BlockSize <= 0 {
			return fmt.Errorf("icache associativity and block_size must be > 0")
		}
		if ic.BlockSize%cache.WordBytes != 0 {
			return fmt.Errorf("icache block_size must be a multiple of %d", cache.WordBytes)
		}
		if ic.Size <= 0 || ic.Size%(ic.Associativity*ic.BlockSize) != 0 {
			return fmt.Errorf("icache size must be a positive multiple of associativity*block_size")
		}
	}
	return nil
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	out := *c
	if c.ICache != nil {
		ic := *c.ICache
		out.ICache = &ic
	}
	return &out
}
