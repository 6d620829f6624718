package tracing

import (
	"sync"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/sim/id"
)

// The tables written by a DBTracer.
const (
	TableTransitions     = "transitions"
	TableEvictions       = "evictions"
	TableMisses          = "misses"
	TableReport          = "report"
	TableCoreStats       = "core_stats"
	TableTransitionCount = "transition_count"
)

type transitionEntry struct {
	ID        string
	Seq       uint64
	Core      int
	Address   int64
	FromState string
	ToState   string
}

type evictionEntry struct {
	ID      string
	Seq     uint64
	Core    int
	Level   string
	Address int64
	State   string
}

type missEntry struct {
	ID                 string
	Seq                uint64
	Core               int
	Kind               string
	InstructionAddress int64
	DataAddress        int64
}

type reportEntry struct {
	Simulation   string
	TotalHits    uint64
	TotalMisses  uint64
	HitRate      float64
	L3Hits       uint64
	L3Misses     uint64
	MemoryCycles uint64
	TotalCycles  uint64
}

type coreStatsEntry struct {
	Simulation string
	Core       int
	L1Hits     uint64
	L1Misses   uint64
	L2Hits     uint64
	L2Misses   uint64
}

type transitionCountEntry struct {
	Simulation string
	FromState  string
	ToState    string
	Count      uint64
}

// DBTracer stores state changes, evictions and misses into a DataRecorder.
// Seq orders the rows in the order the bus handled the events.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	seq     uint64
}

// NewDBTracer creates a new DBTracer and the tables it writes.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(TableTransitions, transitionEntry{})
	dataRecorder.CreateTable(TableEvictions, evictionEntry{})
	dataRecorder.CreateTable(TableMisses, missEntry{})

	return &DBTracer{backend: dataRecorder}
}

// Trace records the event if it is of a recorded kind.
func (t *DBTracer) Trace(e coherence.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := e.(type) {
	case coherence.StateChange:
		t.seq++
		t.backend.InsertData(TableTransitions, transitionEntry{
			ID:        id.Generate(),
			Seq:       t.seq,
			Core:      e.Core,
			Address:   e.Address,
			FromState: e.From.String(),
			ToState:   e.To.String(),
		})
	case coherence.Eviction:
		t.seq++
		t.backend.InsertData(TableEvictions, evictionEntry{
			ID:      id.Generate(),
			Seq:     t.seq,
			Core:    e.Core,
			Level:   e.Level.String(),
			Address: e.Address,
			State:   e.State.String(),
		})
	case coherence.Miss:
		t.seq++
		t.backend.InsertData(TableMisses, missEntry{
			ID:                 id.Generate(),
			Seq:                t.seq,
			Core:               e.Core,
			Kind:               e.Reference.Kind.String(),
			InstructionAddress: e.Reference.InstructionAddress,
			DataAddress:        e.Reference.DataAddress,
		})
	}
}

// RecordReport writes the final statistics of a simulation and flushes.
func (t *DBTracer) RecordReport(simulation string, r coherence.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.CreateTable(TableReport, reportEntry{})
	t.backend.CreateTable(TableCoreStats, coreStatsEntry{})
	t.backend.CreateTable(TableTransitionCount, transitionCountEntry{})

	t.backend.InsertData(TableReport, reportEntry{
		Simulation:   simulation,
		TotalHits:    r.TotalHits,
		TotalMisses:  r.TotalMisses,
		HitRate:      r.HitRate(),
		L3Hits:       r.L3.Hits,
		L3Misses:     r.L3.Misses,
		MemoryCycles: r.MemoryCycles,
		TotalCycles:  r.TotalCycles,
	})

	for i, c := range r.Cores {
		t.backend.InsertData(TableCoreStats, coreStatsEntry{
			Simulation: simulation,
			Core:       i,
			L1Hits:     c.L1.Hits,
			L1Misses:   c.L1.Misses,
			L2Hits:     c.L2.Hits,
			L2Misses:   c.L2.Misses,
		})
	}

	for from := cache.State(0); from < cache.NumStates; from++ {
		for to := cache.State(0); to < cache.NumStates; to++ {
			n := r.Transitions.Count(from, to)
			if n == 0 {
				continue
			}

			t.backend.InsertData(TableTransitionCount, transitionCountEntry{
				Simulation: simulation,
				FromState:  from.String(),
				ToState:    to.String(),
				Count:      n,
			})
		}
	}

	t.backend.Flush()
}

// Terminate flushes what is still buffered.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
