package coherence

import "github.com/sarchlab/cachesim/mem/trace"

// A Port is a core's handle on the bus for the duration of one transaction.
// It cannot be created outside of Bus.Transact.
type Port struct {
	bus  *Bus
	core int
	open bool
}

// Core returns the ID of the core that owns the transaction.
func (p *Port) Core() int {
	return p.core
}

// Notify hands an event to the bus.
func (p *Port) Notify(e Event) {
	p.mustBeOpen()
	p.bus.dispatch(p.core, e)
}

// ResolveMiss asks the bus where the data for a reference that missed every
// private level comes from.
func (p *Port) ResolveMiss(ref trace.Reference) FillDecision {
	p.mustBeOpen()

	return p.bus.dispatch(p.core, Miss{Core: p.core, Reference: ref})
}

func (p *Port) mustBeOpen() {
	if p == nil || !p.open {
		panic("bus port used outside of a transaction")
	}
}
