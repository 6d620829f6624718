package coherence

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// An Agent is a core as seen from the bus. The bus only calls an Agent from
// inside a transaction.
type Agent interface {
	ID() int

	// Snoop moves every valid copy of address to Shared and returns the
	// payload of the first copy found. It returns at most one change.
	Snoop(address int64) (trace.Reference, []StateChange, bool)

	// InvalidateData moves every valid copy of address to Invalid. It
	// returns at most one change.
	InvalidateData(address int64) []StateChange

	Stats() CoreStats
}

// FillSource tells where the data of a fill comes from.
type FillSource int

// The fill sources.
const (
	SourceMemory FillSource = iota
	SourceL3
	SourcePeer
)

func (s FillSource) String() string {
	switch s {
	case SourceMemory:
		return "Memory"
	case SourceL3:
		return "L3"
	case SourcePeer:
		return "Peer"
	default:
		return fmt.Sprintf("FillSource(%d)", int(s))
	}
}

// A FillDecision tells a core what to install after a miss.
type FillDecision struct {
	Source  FillSource
	State   cache.State
	Payload trace.Reference
}

// BusSnapshot is a point-in-time copy of the bus counters.
type BusSnapshot struct {
	L3           LevelStats
	MemoryCycles uint64
	Completed    int
	Transitions  Tally
}

// Bus connects the cores to the shared L3 and to each other. All of its
// state is guarded by one mutex that is held for the whole of a transaction.
type Bus struct {
	hooking.HookableBase

	name string
	cfg  Config

	mu           sync.Mutex
	l3           *cache.Cache
	agents       []Agent
	tally        Tally
	l3Stats      LevelStats
	memoryCycles uint64
	completed    []bool
	numCompleted int
	report       Summary
	done         chan struct{}
}

// NewBus creates a bus with an empty L3.
func NewBus(name string, cfg Config) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	l3, err := cache.NewCache(
		cfg.L3Size,
		cfg.WaysPerSet,
		cache.NewRandomVictimFinder(rng),
	)
	if err != nil {
		return nil, fmt.Errorf("L3: %w", err)
	}

	b := &Bus{
		name:      name,
		cfg:       cfg,
		l3:        l3,
		agents:    make([]Agent, cfg.CoreCount),
		completed: make([]bool, cfg.CoreCount),
		done:      make(chan struct{}),
	}

	return b, nil
}

// Name returns the name of the bus.
func (b *Bus) Name() string {
	return b.name
}

// Config returns the configuration the bus was built with.
func (b *Bus) Config() Config {
	return b.cfg
}

// Connect attaches a core. Each core ID can be connected once.
func (b *Bus) Connect(a Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeCore(a.ID())

	if b.agents[a.ID()] != nil {
		panic(fmt.Sprintf("core %d is already connected", a.ID()))
	}

	b.agents[a.ID()] = a
}

// Transact runs fn while holding the bus. The Port handed to fn is the only
// way to reach the bus operations and stops working when fn returns.
func (b *Bus) Transact(core int, fn func(p *Port)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeCore(core)

	p := &Port{bus: b, core: core, open: true}
	defer func() { p.open = false }()

	fn(p)
}

// Inspect runs fn while holding the bus, so that fn can read the state of
// the bus and of the cores consistently.
func (b *Bus) Inspect(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn()
}

// Done is closed once every core has completed.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Report waits until every core has completed and returns the final
// statistics.
func (b *Bus) Report() Summary {
	<-b.done

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.report
}

// Snapshot returns the current counters of the bus.
func (b *Bus) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BusSnapshot{
		L3:           b.l3Stats,
		MemoryCycles: b.memoryCycles,
		Completed:    b.numCompleted,
		Transitions:  b.tally,
	}
}

// L3 returns the shared cache. It must only be used inside Inspect or a
// transaction.
func (b *Bus) L3() *cache.Cache {
	return b.l3
}

func (b *Bus) mustBeCore(core int) {
	if core < 0 || core >= b.cfg.CoreCount {
		panic(fmt.Sprintf("core %d does not exist", core))
	}
}

func (b *Bus) peerOf(core int) Agent {
	return b.agents[(core+1)%b.cfg.CoreCount]
}

// dispatch handles one event on behalf of core. Only a Miss produces a
// FillDecision.
func (b *Bus) dispatch(core int, e Event) FillDecision {
	var fill FillDecision

	switch e := e.(type) {
	case L1Hit, L2Hit:
	case Miss:
		fill = b.resolveMiss(core, e.Reference)
	case DataWrite:
		if !b.cfg.WriteBack {
			b.chargeMemory(e.Address)
		}
	case StateChange:
		b.changeState(core, e)
	case Eviction:
		if e.Level == LevelL2 {
			b.placeEvicted(e)
		}
	case Complete:
		b.reportCompletion(core)
	default:
		panic(fmt.Sprintf("unknown bus event %T", e))
	}

	b.InvokeHook(hooking.HookCtx{
		Domain: b,
		Pos:    HookPosBusEvent,
		Item:   e,
	})

	return fill
}

func (b *Bus) resolveMiss(core int, ref trace.Reference) FillDecision {
	addr := ref.Address()

	if ref.Kind == trace.Read {
		if payload, ok := b.snoop(core, addr); ok {
			return FillDecision{
				Source:  SourcePeer,
				State:   cache.Shared,
				Payload: payload,
			}
		}

		b.chargeMemory(addr)

		return FillDecision{
			Source:  SourceMemory,
			State:   cache.Exclusive,
			Payload: ref,
		}
	}

	fill := FillDecision{
		Source:  SourceMemory,
		State:   cache.Exclusive,
		Payload: ref,
	}

	if way, ok := b.l3.Lookup(addr); ok &&
		b.l3.Line(b.l3.Index(addr), way).IsValid() {
		b.l3Stats.Hits++
		fill.Source = SourceL3
	} else {
		b.l3Stats.Misses++
	}

	switch ref.Kind {
	case trace.FetchOnly:
		if _, ok := b.snoop(core, addr); ok {
			fill.State = cache.Shared
		}
	case trace.Write:
		b.invalidatePeer(core, addr)
	}

	return fill
}

// snoop asks the peer of core for address and accounts for the resulting
// downgrades.
func (b *Bus) snoop(core int, addr int64) (trace.Reference, bool) {
	peer := b.peerOf(core)
	if peer == nil {
		return trace.Reference{}, false
	}

	payload, changes, ok := peer.Snoop(addr)
	for _, change := range changes {
		b.dispatch(peer.ID(), change)
	}

	return payload, ok
}

func (b *Bus) changeState(core int, e StateChange) {
	b.tally.Add(e.From, e.To)

	if e.From == cache.Modified && b.cfg.WriteBack {
		b.chargeMemory(e.Address)
	}

	if e.To == cache.Modified {
		b.invalidatePeer(core, e.Address)
	}
}

// invalidatePeer removes every copy of addr held by the peer of core.
func (b *Bus) invalidatePeer(core int, addr int64) {
	peer := b.peerOf(core)
	if peer == nil {
		return
	}

	for _, change := range peer.InvalidateData(addr) {
		b.dispatch(peer.ID(), change)
	}
}

func (b *Bus) placeEvicted(e Eviction) {
	if e.State == cache.Modified && b.cfg.WriteBack {
		b.chargeMemory(e.Address)
	}

	index := b.l3.Index(e.Address)

	way, ok := b.l3.Lookup(e.Address)
	if !ok {
		way, ok = b.l3.FindFreeWay(index)
	}

	if !ok {
		way = b.l3.ChooseVictim(index)
	}

	b.l3.Insert(index, way, b.l3.Tag(e.Address), cache.Exclusive, e.Payload)
}

func (b *Bus) reportCompletion(core int) {
	if b.completed[core] {
		panic(fmt.Sprintf("core %d completed twice", core))
	}

	b.completed[core] = true
	b.numCompleted++

	if b.numCompleted < b.cfg.CoreCount {
		return
	}

	stats := make([]CoreStats, 0, len(b.agents))
	for _, a := range b.agents {
		if a == nil {
			stats = append(stats, CoreStats{})
			continue
		}

		stats = append(stats, a.Stats())
	}

	b.report = buildReport(b.cfg, stats, b.l3Stats, b.memoryCycles, b.tally)
	close(b.done)
}

func (b *Bus) chargeMemory(addr int64) {
	b.memoryCycles += uint64(b.cfg.MemoryLatency(addr))
}
