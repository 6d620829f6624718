package coherence

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Core owns a split L1 and a private L2 and replays a trace against them.
// Its caches and counters are only touched while the bus is held, either by
// its own goroutine or by the bus on behalf of the peer.
type Core struct {
	hooking.HookableBase

	name string
	id   int
	bus  *Bus

	l1i *cache.Cache
	l1d *cache.Cache
	l2  *cache.Cache

	stats CoreStats
}

// NewCore creates a core and connects it to the bus. The three private caches
// share one random source seeded from cfg.Seed and the core ID.
func NewCore(name string, id int, cfg Config, bus *Bus) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed + int64(id) + 1))
	victimFinder := cache.NewRandomVictimFinder(rng)

	c := &Core{
		name: name,
		id:   id,
		bus:  bus,
	}

	var err error

	c.l1i, err = cache.NewCache(cfg.L1Size, cfg.WaysPerSet, victimFinder)
	if err != nil {
		return nil, fmt.Errorf("L1I: %w", err)
	}

	c.l1d, err = cache.NewCache(cfg.L1Size, cfg.WaysPerSet, victimFinder)
	if err != nil {
		return nil, fmt.Errorf("L1D: %w", err)
	}

	c.l2, err = cache.NewCache(cfg.L2Size, cfg.WaysPerSet, victimFinder)
	if err != nil {
		return nil, fmt.Errorf("L2: %w", err)
	}

	bus.Connect(c)

	return c, nil
}

// ID returns the index of the core on the bus.
func (c *Core) ID() int {
	return c.id
}

// Name returns the name of the core.
func (c *Core) Name() string {
	return c.name
}

// Stats returns the counters of the core. It must be called while the bus
// is held or after the core has completed.
func (c *Core) Stats() CoreStats {
	return c.stats
}

// Snapshot returns a copy of the counters. It takes the bus and must not be
// called from inside a transaction or a bus hook.
func (c *Core) Snapshot() any {
	var stats CoreStats

	c.bus.Inspect(func() { stats = c.stats })

	return stats
}

// Run replays refs in order and then reports completion to the bus.
func (c *Core) Run(refs []trace.Reference) {
	for _, ref := range refs {
		c.Access(ref)
	}

	c.bus.Transact(c.id, func(p *Port) {
		p.Notify(Complete{Core: c.id})
	})
}

// Access performs one reference as a single bus transaction.
func (c *Core) Access(ref trace.Reference) {
	c.bus.Transact(c.id, func(p *Port) {
		c.process(p, ref)
	})

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosReferenceDone,
		Item:   ref,
	})
}

// State returns the strongest state among the valid copies of address held
// by the core, or Invalid. It must be called while the bus is held or after
// the core has completed.
func (c *Core) State(address int64) cache.State {
	state := cache.Invalid

	for _, l := range c.levels() {
		way, ok := lookupValid(l, address)
		if !ok {
			continue
		}

		if s := l.Line(l.Index(address), way).State; s > state {
			state = s
		}
	}

	return state
}

// Snoop moves every valid copy of address to Shared. It is called by the bus
// on behalf of the peer core. However many private levels hold the line, the
// core reports at most one change, from the strongest state it held.
func (c *Core) Snoop(address int64) (trace.Reference, []StateChange, bool) {
	payload, from, found := c.setState(address, cache.Shared)
	if !found || from == cache.Shared {
		return payload, nil, found
	}

	return payload, []StateChange{{
		Core:    c.id,
		Address: address,
		From:    from,
		To:      cache.Shared,
	}}, true
}

// InvalidateData moves every valid copy of address to Invalid. It is called
// by the bus when the peer core writes address. Like Snoop, it reports at
// most one change.
func (c *Core) InvalidateData(address int64) []StateChange {
	_, from, found := c.setState(address, cache.Invalid)
	if !found {
		return nil
	}

	return []StateChange{{
		Core:    c.id,
		Address: address,
		From:    from,
		To:      cache.Invalid,
	}}
}

// setState moves every valid copy of address to state. It returns the
// payload of the first copy and the strongest state held before.
func (c *Core) setState(
	address int64,
	state cache.State,
) (payload trace.Reference, strongest cache.State, found bool) {
	for _, l := range c.levels() {
		way, ok := lookupValid(l, address)
		if !ok {
			continue
		}

		index := l.Index(address)
		line := l.Line(index, way)

		if !found {
			payload = line.Payload
			found = true
		}

		if line.State > strongest {
			strongest = line.State
		}

		l.SetState(index, way, state)
	}

	return payload, strongest, found
}

func (c *Core) levels() []*cache.Cache {
	return []*cache.Cache{c.l1i, c.l1d, c.l2}
}

func (c *Core) process(p *Port, ref trace.Reference) {
	addr := ref.Address()

	l1 := c.l1d
	if !ref.IsData() {
		l1 = c.l1i
	}

	if way, ok := lookupValid(l1, addr); ok {
		c.stats.L1.Hits++
		p.Notify(L1Hit{Core: c.id, Address: addr})
		c.write(p, l1, ref, way)

		return
	}

	c.stats.L1.Misses++

	var way int

	if l2Way, ok := lookupValid(c.l2, addr); ok {
		c.stats.L2.Hits++
		p.Notify(L2Hit{Core: c.id, Address: addr})

		line := c.l2.Evict(c.l2.Index(addr), l2Way)
		way = c.install(p, l1, addr, line.State, line.Payload)
	} else {
		c.stats.L2.Misses++

		fill := p.ResolveMiss(ref)
		way = c.install(p, l1, addr, fill.State, fill.Payload)
	}

	c.write(p, l1, ref, way)
}

// write applies a store to the line that now holds the reference in l1. It
// does nothing for loads and fetches.
func (c *Core) write(p *Port, l1 *cache.Cache, ref trace.Reference, way int) {
	if ref.Kind != trace.Write {
		return
	}

	addr := ref.Address()
	index := l1.Index(addr)
	from := l1.Line(index, way).State

	p.Notify(DataWrite{Core: c.id, Address: addr})

	if from == cache.Modified {
		return
	}

	l1.SetState(index, way, cache.Modified)
	p.Notify(StateChange{
		Core:    c.id,
		Address: addr,
		From:    from,
		To:      cache.Modified,
	})
}

func (c *Core) install(
	p *Port,
	l1 *cache.Cache,
	addr int64,
	state cache.State,
	payload trace.Reference,
) int {
	way := c.makeRoom(p, l1, LevelL1, addr)
	l1.Insert(l1.Index(addr), way, l1.Tag(addr), state, payload)

	return way
}

// makeRoom returns the way of l that is going to hold addr. A stale copy of
// addr is reused, then a free way, and only then a random victim is evicted.
func (c *Core) makeRoom(p *Port, l *cache.Cache, level Level, addr int64) int {
	if way, ok := l.Lookup(addr); ok {
		return way
	}

	index := l.Index(addr)

	if way, ok := l.FindFreeWay(index); ok {
		return way
	}

	way := l.ChooseVictim(index)

	victim := l.Evict(index, way)
	if victim.IsValid() {
		c.spill(p, level, l.Address(index, victim.Tag), victim)
	}

	return way
}

// spill moves a line evicted from level one step down. Lines leaving L2 are
// handed to the bus.
func (c *Core) spill(p *Port, level Level, addr int64, line cache.Line) {
	p.Notify(Eviction{
		Core:    c.id,
		Level:   level,
		Address: addr,
		State:   line.State,
		Payload: line.Payload,
	})

	if level == LevelL2 {
		return
	}

	index := c.l2.Index(addr)
	way := c.makeRoom(p, c.l2, LevelL2, addr)

	// The instruction and data copies of one address can meet in L2.
	state := line.State
	if held := c.l2.Line(index, way); held.IsValid() && held.State > state {
		state = held.State
	}

	c.l2.Insert(index, way, c.l2.Tag(addr), state, line.Payload)
}

func lookupValid(l *cache.Cache, addr int64) (int, bool) {
	way, ok := l.Lookup(addr)
	if !ok || !l.Line(l.Index(addr), way).IsValid() {
		return 0, false
	}

	return way, true
}
