package coherence

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
)

var _ = Describe("Config", func() {
	It("should accept the default configuration", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("should reject",
		func(mutate func(*Config), field string) {
			cfg := DefaultConfig()
			mutate(&cfg)

			err := cfg.Validate()
			Expect(err).To(HaveOccurred())

			var cfgErr *cache.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal(field))
		},
		Entry("a set count that is not a power of two",
			func(c *Config) { c.L2Size = 12 }, "totalLines"),
		Entry("ways that do not divide the size",
			func(c *Config) { c.WaysPerSet = 3 }, "waysPerSet"),
		Entry("zero ways",
			func(c *Config) { c.WaysPerSet = 0 }, "waysPerSet"),
		Entry("an empty L3",
			func(c *Config) { c.L3Size = 0 }, "totalLines"),
		Entry("a negative latency",
			func(c *Config) { c.L2Latency = -1 }, "L2Latency"),
		Entry("a negative memory latency",
			func(c *Config) { c.SecondTierMemoryLatency = -1 }, "MemoryLatency"),
		Entry("a single core",
			func(c *Config) { c.CoreCount = 1 }, "CoreCount"),
	)

	It("should name the level in the error", func() {
		cfg := DefaultConfig()
		cfg.L3Size = 12

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("L3: ")))
	})

	It("should pick the memory tier by address", func() {
		cfg := DefaultConfig()

		Expect(cfg.MemoryLatency(0)).To(Equal(100))
		Expect(cfg.MemoryLatency(0x7fffff)).To(Equal(100))
		Expect(cfg.MemoryLatency(0x800000)).To(Equal(150))
	})
})
