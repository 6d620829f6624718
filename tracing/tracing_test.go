package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/mem/trace"
)

func newBus() *coherence.Bus {
	bus, err := coherence.NewBus("Bus", coherence.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())

	return bus
}

var _ = Describe("CollectTrace", func() {
	It("should forward bus events to the tracer", func() {
		bus := newBus()
		counter := NewEventCountTracer("Counter")
		CollectTrace(bus, counter)

		bus.Transact(0, func(p *coherence.Port) {
			p.Notify(coherence.DataWrite{Core: 0, Address: 4})
			p.Notify(coherence.StateChange{
				Core: 0, Address: 4, From: cache.Exclusive, To: cache.Shared,
			})
		})

		Expect(counter.Kinds()).To(Equal([]string{"DataWrite", "Exclusive->Shared"}))
	})

	It("should not attach the same tracer twice", func() {
		bus := newBus()
		counter := NewEventCountTracer("Counter")
		CollectTrace(bus, counter)

		Expect(func() { CollectTrace(bus, counter) }).To(Panic())
	})
})

var _ = Describe("EventLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *EventLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	It("should log coherence traffic", func() {
		logger.Trace(coherence.Miss{Core: 1, Reference: trace.Load(0x10, 0x20)})
		logger.Trace(coherence.StateChange{
			Core: 0, Address: 0x20, From: cache.Exclusive, To: cache.Shared,
		})
		logger.Trace(coherence.Eviction{
			Core: 0, Level: coherence.LevelL2, Address: 0x30, State: cache.Modified,
		})
		logger.Trace(coherence.Complete{Core: 1})

		Expect(buf.String()).To(Equal(
			"core 1: miss Read 0x20 @0x10\n" +
				"core 0: 0x20 Exclusive -> Shared\n" +
				"core 0: L2 evicts 0x30 (Modified)\n" +
				"core 1: complete\n"))
	})

	It("should only log hits when verbose", func() {
		logger.Trace(coherence.L1Hit{Core: 0, Address: 1})
		Expect(buf.Len()).To(BeZero())

		logger.Verbose = true
		logger.Trace(coherence.L1Hit{Core: 0, Address: 1})
		logger.Trace(coherence.L2Hit{Core: 0, Address: 1})
		logger.Trace(coherence.DataWrite{Core: 0, Address: 1})

		Expect(buf.String()).To(Equal(
			"core 0: L1 hit 0x1\ncore 0: L2 hit 0x1\ncore 0: write 0x1\n"))
	})
})

var _ = Describe("EventCountTracer", func() {
	It("should count by kind", func() {
		counter := NewEventCountTracer("Counter")

		counter.Trace(coherence.Miss{Reference: trace.Fetch(0)})
		counter.Trace(coherence.Miss{Reference: trace.Fetch(4)})
		counter.Trace(coherence.Eviction{Level: coherence.LevelL1})

		Expect(counter.Name()).To(Equal("Counter"))
		Expect(counter.Count("MissFetchOnly")).To(Equal(uint64(2)))
		Expect(counter.Count("L1Eviction")).To(Equal(uint64(1)))
		Expect(counter.Count("L2Eviction")).To(BeZero())

		snapshot := counter.Snapshot().(map[string]uint64)
		counter.Trace(coherence.Complete{})
		Expect(snapshot).To(HaveLen(2))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)

		recorder.EXPECT().CreateTable(TableTransitions, gomock.Any())
		recorder.EXPECT().CreateTable(TableEvictions, gomock.Any())
		recorder.EXPECT().CreateTable(TableMisses, gomock.Any())

		tracer = NewDBTracer(recorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record state changes in order", func() {
		var entries []transitionEntry

		recorder.EXPECT().
			InsertData(TableTransitions, gomock.Any()).
			Do(func(_ string, e any) {
				entries = append(entries, e.(transitionEntry))
			}).
			Times(2)

		tracer.Trace(coherence.StateChange{
			Core: 1, Address: 0x40, From: cache.Exclusive, To: cache.Shared,
		})
		tracer.Trace(coherence.StateChange{
			Core: 0, Address: 0x40, From: cache.Shared, To: cache.Modified,
		})

		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Seq).To(Equal(uint64(1)))
		Expect(entries[0].Core).To(Equal(1))
		Expect(entries[0].FromState).To(Equal("Exclusive"))
		Expect(entries[0].ToState).To(Equal("Shared"))
		Expect(entries[1].Seq).To(Equal(uint64(2)))
		Expect(entries[0].ID).NotTo(Equal(entries[1].ID))
	})

	It("should record evictions and misses", func() {
		recorder.EXPECT().InsertData(TableEvictions, gomock.Any()).
			Do(func(_ string, e any) {
				entry := e.(evictionEntry)
				Expect(entry.Level).To(Equal("L2"))
				Expect(entry.State).To(Equal("Modified"))
			})
		recorder.EXPECT().InsertData(TableMisses, gomock.Any()).
			Do(func(_ string, e any) {
				entry := e.(missEntry)
				Expect(entry.Kind).To(Equal("Write"))
				Expect(entry.DataAddress).To(Equal(int64(0x20)))
			})

		tracer.Trace(coherence.Eviction{
			Level: coherence.LevelL2, Address: 0x30, State: cache.Modified,
		})
		tracer.Trace(coherence.Miss{Reference: trace.Store(0x10, 0x20)})
	})

	It("should ignore hits", func() {
		tracer.Trace(coherence.L1Hit{})
		tracer.Trace(coherence.DataWrite{})
	})

	It("should record the report", func() {
		var tally coherence.Tally
		tally.Add(cache.Exclusive, cache.Shared)
		tally.Add(cache.Exclusive, cache.Shared)

		report := coherence.Summary{
			Cores:       make([]coherence.CoreStats, 2),
			TotalHits:   3,
			Transitions: tally,
		}

		recorder.EXPECT().CreateTable(TableReport, gomock.Any())
		recorder.EXPECT().CreateTable(TableCoreStats, gomock.Any())
		recorder.EXPECT().CreateTable(TableTransitionCount, gomock.Any())
		recorder.EXPECT().InsertData(TableReport, gomock.Any())
		recorder.EXPECT().InsertData(TableCoreStats, gomock.Any()).Times(2)
		recorder.EXPECT().InsertData(TableTransitionCount, transitionCountEntry{
			Simulation: "sim",
			FromState:  "Exclusive",
			ToState:    "Shared",
			Count:      2,
		})
		recorder.EXPECT().Flush()

		tracer.RecordReport("sim", report)
	})

	It("should flush on terminate", func() {
		recorder.EXPECT().Flush()

		tracer.Terminate()
	})
})
