package simulation

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
	"github.com/sarchlab/cachesim/tracing"
)

var sharedTrace = []trace.Reference{
	trace.Fetch(0x100),
	trace.Load(0x104, 0x40),
	trace.Store(0x108, 0x40),
	trace.Load(0x10c, 0x44),
	trace.Fetch(0x100),
}

var _ = Describe("Simulation", func() {
	It("should reject a bad configuration", func() {
		cfg := coherence.DefaultConfig()
		cfg.WaysPerSet = 0

		_, err := MakeBuilder().WithConfig(cfg).Build()

		var cfgErr *cache.ConfigError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("waysPerSet"))
	})

	It("should reject a trace for a missing core", func() {
		_, err := MakeBuilder().WithCoreTrace(2, sharedTrace).Build()

		Expect(err).To(MatchError(ContainSubstring("core 2")))
	})

	It("should replay the shared trace on every core", func() {
		s, err := MakeBuilder().WithTrace(sharedTrace).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ID()).NotTo(BeEmpty())

		report := s.Run()

		Expect(report.Cores).To(HaveLen(2))
		for _, c := range report.Cores {
			Expect(c.L1.Accesses()).To(Equal(uint64(len(sharedTrace))))
		}

		Expect(s.Run()).To(Equal(report))
		Expect(s.EventCounts()["Complete"]).To(Equal(uint64(2)))
		Expect(s.Terminate()).To(Succeed())
	})

	It("should replay a trace per core", func() {
		s, err := MakeBuilder().
			WithTrace(sharedTrace).
			WithCoreTrace(1, sharedTrace[:2]).
			Build()
		Expect(err).NotTo(HaveOccurred())

		report := s.Run()

		Expect(report.Cores[0].L1.Accesses()).To(Equal(uint64(5)))
		Expect(report.Cores[1].L1.Accesses()).To(Equal(uint64(2)))
	})

	It("should not share builder state between builds", func() {
		base := MakeBuilder().WithCoreTrace(0, sharedTrace)
		_ = base.WithCoreTrace(1, sharedTrace[:1])

		s, err := base.Build()
		Expect(err).NotTo(HaveOccurred())

		report := s.Run()
		Expect(report.Cores[1].L1.Accesses()).To(BeZero())
	})

	It("should log and hook bus events", func() {
		buf := new(bytes.Buffer)
		events := 0

		s, err := MakeBuilder().
			WithTrace(sharedTrace).
			WithEventLogger(log.New(buf, "", 0), false).
			WithHook(hooking.HookFunc(func(hooking.HookCtx) { events++ })).
			WithTracer(tracing.NewEventCountTracer("Extra")).
			Build()
		Expect(err).NotTo(HaveOccurred())

		s.Run()

		Expect(buf.String()).To(ContainSubstring("core 0: complete"))
		Expect(buf.String()).NotTo(ContainSubstring("hit"))
		Expect(events).To(BeNumerically(">", 0))
	})

	It("should track progress on a monitor", func() {
		m := monitoring.NewMonitor()

		s, err := MakeBuilder().
			WithTrace(sharedTrace).
			WithMonitor(m).
			Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Components()).To(HaveLen(4))
		Expect(s.progressBars).To(HaveLen(2))

		s.Run()

		for _, bar := range s.progressBars {
			finished, total := bar.Progress()
			Expect(finished).To(Equal(total))
		}
	})

	It("should record the run", func() {
		name := filepath.Join(GinkgoT().TempDir(), "run")

		recorder, err := datarecording.New(name)
		Expect(err).NotTo(HaveOccurred())

		s, err := MakeBuilder().
			WithTrace(sharedTrace).
			WithDataRecorder(recorder).
			Build()
		Expect(err).NotTo(HaveOccurred())

		s.Run()
		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(name + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		ctx := context.Background()

		n, err := reader.Count(ctx, tracing.TableReport)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		n, err = reader.Count(ctx, tracing.TableMisses)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeNumerically(">", 0))

		n, err = reader.Count(ctx, tracing.TableCoreStats)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})
})
