// Package simulation wires the cores, the bus and the optional recording
// and monitoring services into a runnable simulation.
package simulation

import (
	"sync"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/tracing"
)

// A Simulation replays one trace per core on its own goroutine.
type Simulation struct {
	id  string
	cfg coherence.Config

	bus    *coherence.Bus
	cores  []*coherence.Core
	traces [][]trace.Reference

	counter      *tracing.EventCountTracer
	dbTracer     *tracing.DBTracer
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	progressBars []*monitoring.ProgressBar

	runOnce sync.Once
	report  coherence.Summary
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration of the hierarchy.
func (s *Simulation) Config() coherence.Config {
	return s.cfg
}

// Bus returns the bus of the simulation.
func (s *Simulation) Bus() *coherence.Bus {
	return s.bus
}

// Cores returns the cores, ordered by ID.
func (s *Simulation) Cores() []*coherence.Core {
	return s.cores
}

// EventCounts returns the number of bus events observed so far, by kind.
func (s *Simulation) EventCounts() map[string]uint64 {
	return s.counter.Snapshot().(map[string]uint64)
}

// Components returns what can be inspected while the simulation runs.
func (s *Simulation) Components() []monitoring.Component {
	comps := []monitoring.Component{s.bus, s.counter}
	for _, c := range s.cores {
		comps = append(comps, c)
	}

	return comps
}

// Run replays the traces and returns the final report. The traces are only
// replayed once; later calls return the same report.
func (s *Simulation) Run() coherence.Summary {
	s.runOnce.Do(s.run)

	return s.report
}

func (s *Simulation) run() {
	var wg sync.WaitGroup

	for i, core := range s.cores {
		wg.Add(1)

		go func(core *coherence.Core, refs []trace.Reference) {
			defer wg.Done()

			core.Run(refs)
		}(core, s.traces[i])
	}

	wg.Wait()

	s.report = s.bus.Report()

	if s.dbTracer != nil {
		s.dbTracer.RecordReport(s.id, s.report)
	}

	for _, bar := range s.progressBars {
		s.monitor.CompleteProgressBar(bar)
	}
}

// Terminate releases the data recorder, if any.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
