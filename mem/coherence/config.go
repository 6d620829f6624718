// Package coherence models a two-core cache hierarchy kept coherent with the
// MESI protocol. Each Core owns private L1 and L2 caches and replays a trace
// on its own goroutine. The Bus owns the shared L3 and serializes every
// interaction between the cores.
package coherence

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache"
)

// Config describes the hierarchy. Sizes are in lines, latencies in cycles.
type Config struct {
	L1Size    int
	L1Latency int
	L2Size    int
	L2Latency int
	L3Size    int
	L3Latency int

	WaysPerSet int

	// WriteBack defers the memory write of a store until the modified line
	// leaves the core. Otherwise every store pays the memory latency.
	WriteBack bool

	// Addresses below FirstTierMemoryBoundary are served with
	// FirstTierMemoryLatency, the others with SecondTierMemoryLatency.
	FirstTierMemoryBoundary int64
	FirstTierMemoryLatency  int
	SecondTierMemoryLatency int

	CoreCount int

	// Seed drives the random replacement of every cache.
	Seed int64
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		L1Size:                  64,
		L1Latency:               1,
		L2Size:                  256,
		L2Latency:               10,
		L3Size:                  1024,
		L3Latency:               40,
		WaysPerSet:              4,
		WriteBack:               true,
		FirstTierMemoryBoundary: 0x800000,
		FirstTierMemoryLatency:  100,
		SecondTierMemoryLatency: 150,
		CoreCount:               2,
		Seed:                    1,
	}
}

// Validate checks that every cache can be built and that the machine has
// exactly two cores.
func (c Config) Validate() error {
	levels := []struct {
		name    string
		size    int
		latency int
	}{
		{"L1", c.L1Size, c.L1Latency},
		{"L2", c.L2Size, c.L2Latency},
		{"L3", c.L3Size, c.L3Latency},
	}

	for _, l := range levels {
		if _, err := cache.NewCache(l.size, c.WaysPerSet, nil); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}

		if l.latency < 0 {
			return &cache.ConfigError{
				Field:  l.name + "Latency",
				Reason: "must not be negative",
			}
		}
	}

	if c.FirstTierMemoryLatency < 0 || c.SecondTierMemoryLatency < 0 {
		return &cache.ConfigError{
			Field:  "MemoryLatency",
			Reason: "must not be negative",
		}
	}

	if c.CoreCount != 2 {
		return &cache.ConfigError{
			Field:  "CoreCount",
			Reason: fmt.Sprintf("only 2 cores are supported, got %d", c.CoreCount),
		}
	}

	return nil
}

// MemoryLatency returns the cycles needed to reach address in memory.
func (c Config) MemoryLatency(address int64) int {
	if address < c.FirstTierMemoryBoundary {
		return c.FirstTierMemoryLatency
	}

	return c.SecondTierMemoryLatency
}
