package coherence

import (
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// HookPosBusEvent marks that the bus has handled an Event. The hook context
// Item is the Event.
var HookPosBusEvent = &hooking.HookPos{Name: "BusEvent"}

// HookPosReferenceDone marks that a core has finished a reference. The hook
// context Item is the trace.Reference.
var HookPosReferenceDone = &hooking.HookPos{Name: "ReferenceDone"}

// An Event is something a core reports to the bus. The set of events is
// closed; only the types in this file implement it.
type Event interface {
	busEvent()
}

// L1Hit reports that an access was served by a core's L1.
type L1Hit struct {
	Core    int
	Address int64
}

// L2Hit reports that an access missed L1 and was served by L2.
type L2Hit struct {
	Core    int
	Address int64
}

// Miss reports that an access missed both private levels.
type Miss struct {
	Core      int
	Reference trace.Reference
}

// Level identifies a private cache level of a core.
type Level int

// The private levels that can evict.
const (
	LevelL1 Level = iota + 1
	LevelL2
)

func (l Level) String() string {
	switch l {
	case LevelL1:
		return "L1"
	case LevelL2:
		return "L2"
	default:
		return "L?"
	}
}

// Eviction reports a valid line leaving a level. Lines leaving L1 move to
// L2; lines leaving L2 are placed in the shared L3 by the bus.
type Eviction struct {
	Core    int
	Level   Level
	Address int64
	State   cache.State
	Payload trace.Reference
}

// DataWrite reports a store.
type DataWrite struct {
	Core    int
	Address int64
}

// StateChange reports a line of a core changing its MESI state.
type StateChange struct {
	Core    int
	Address int64
	From    cache.State
	To      cache.State
}

// Complete reports that a core has replayed its whole trace.
type Complete struct {
	Core int
}

func (L1Hit) busEvent()       {}
func (L2Hit) busEvent()       {}
func (Miss) busEvent()        {}
func (Eviction) busEvent()    {}
func (DataWrite) busEvent()   {}
func (StateChange) busEvent() {}
func (Complete) busEvent()    {}
