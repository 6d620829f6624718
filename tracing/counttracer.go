package tracing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/cachesim/mem/coherence"
)

// EventCountTracer counts the events handled by a bus, by kind. State
// changes are counted by transition, such as "Exclusive->Shared".
type EventCountTracer struct {
	name string

	lock   sync.Mutex
	counts map[string]uint64
}

// NewEventCountTracer creates a new EventCountTracer.
func NewEventCountTracer(name string) *EventCountTracer {
	return &EventCountTracer{
		name:   name,
		counts: make(map[string]uint64),
	}
}

// Name returns the name of the tracer.
func (t *EventCountTracer) Name() string {
	return t.name
}

// Trace counts the event.
func (t *EventCountTracer) Trace(e coherence.Event) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.counts[eventKind(e)]++
}

// Count returns how many events of the kind were observed.
func (t *EventCountTracer) Count(kind string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[kind]
}

// Kinds returns the observed kinds, sorted.
func (t *EventCountTracer) Kinds() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	kinds := make([]string, 0, len(t.counts))
	for k := range t.counts {
		kinds = append(kinds, k)
	}

	sort.Strings(kinds)

	return kinds
}

// Snapshot returns a copy of the counters.
func (t *EventCountTracer) Snapshot() any {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make(map[string]uint64, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}

	return counts
}

func eventKind(e coherence.Event) string {
	switch e := e.(type) {
	case coherence.L1Hit:
		return "L1Hit"
	case coherence.L2Hit:
		return "L2Hit"
	case coherence.Miss:
		return "Miss" + e.Reference.Kind.String()
	case coherence.Eviction:
		return e.Level.String() + "Eviction"
	case coherence.DataWrite:
		return "DataWrite"
	case coherence.StateChange:
		return e.From.String() + "->" + e.To.String()
	case coherence.Complete:
		return "Complete"
	default:
		return fmt.Sprintf("%T", e)
	}
}
