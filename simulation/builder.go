package simulation

import (
	"fmt"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
	"github.com/sarchlab/cachesim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg          coherence.Config
	traces       map[int][]trace.Reference
	sharedTrace  []trace.Reference
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	eventLogger  *log.Logger
	verboseLog   bool
	tracers      []tracing.Tracer
	busHooks     []hooking.Hook
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:    coherence.DefaultConfig(),
		traces: make(map[int][]trace.Reference),
	}
}

// WithConfig sets the configuration of the hierarchy.
func (b Builder) WithConfig(cfg coherence.Config) Builder {
	b.cfg = cfg
	return b
}

// WithTrace sets the trace replayed by every core that has no trace of its
// own.
func (b Builder) WithTrace(refs []trace.Reference) Builder {
	b.sharedTrace = refs
	return b
}

// WithCoreTrace sets the trace replayed by one core.
func (b Builder) WithCoreTrace(core int, refs []trace.Reference) Builder {
	traces := make(map[int][]trace.Reference, len(b.traces)+1)
	for k, v := range b.traces {
		traces[k] = v
	}

	traces[core] = refs
	b.traces = traces

	return b
}

// WithDataRecorder records coherence traffic and the final report.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

// WithMonitor registers the components and the progress of the simulation
// with a monitor. The builder does not start the monitor's server.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithEventLogger logs bus events. Hits and stores are only logged when
// verbose is set.
func (b Builder) WithEventLogger(logger *log.Logger, verbose bool) Builder {
	b.eventLogger = logger
	b.verboseLog = verbose

	return b
}

// WithTracer attaches a tracer to the bus.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers[:len(b.tracers):len(b.tracers)], t)
	return b
}

// WithHook attaches a hook to the bus.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.busHooks = append(b.busHooks[:len(b.busHooks):len(b.busHooks)], h)
	return b
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	for core := range b.traces {
		if core < 0 || core >= b.cfg.CoreCount {
			return nil, fmt.Errorf("trace given for core %d, but there are %d cores",
				core, b.cfg.CoreCount)
		}
	}

	s := &Simulation{
		id:           xid.New().String(),
		cfg:          b.cfg,
		dataRecorder: b.dataRecorder,
		monitor:      b.monitor,
	}

	bus, err := coherence.NewBus("Bus", b.cfg)
	if err != nil {
		return nil, err
	}

	s.bus = bus

	for i := 0; i < b.cfg.CoreCount; i++ {
		core, err := coherence.NewCore(fmt.Sprintf("Core[%d]", i), i, b.cfg, bus)
		if err != nil {
			return nil, err
		}

		s.cores = append(s.cores, core)
		s.traces = append(s.traces, b.traceOf(i))
	}

	b.attachTracers(s)
	b.attachMonitor(s)

	return s, nil
}

func (b Builder) traceOf(core int) []trace.Reference {
	if refs, ok := b.traces[core]; ok {
		return refs
	}

	return b.sharedTrace
}

func (b Builder) attachTracers(s *Simulation) {
	s.counter = tracing.NewEventCountTracer("Bus.Events")
	tracing.CollectTrace(s.bus, s.counter)

	if b.eventLogger != nil {
		logger := tracing.NewEventLogger(b.eventLogger)
		logger.Verbose = b.verboseLog
		tracing.CollectTrace(s.bus, logger)
	}

	if b.dataRecorder != nil {
		s.dbTracer = tracing.NewDBTracer(b.dataRecorder)
		tracing.CollectTrace(s.bus, s.dbTracer)
	}

	for _, t := range b.tracers {
		tracing.CollectTrace(s.bus, t)
	}

	for _, h := range b.busHooks {
		s.bus.AcceptHook(h)
	}
}

func (b Builder) attachMonitor(s *Simulation) {
	if b.monitor == nil {
		return
	}

	for _, c := range s.Components() {
		b.monitor.RegisterComponent(c)
	}

	for i, core := range s.cores {
		bar := b.monitor.CreateProgressBar(core.Name(), uint64(len(s.traces[i])))
		s.progressBars = append(s.progressBars, bar)

		core.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == coherence.HookPosReferenceDone {
				bar.IncrementFinished(1)
			}
		}))
	}
}
