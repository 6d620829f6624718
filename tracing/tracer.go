// Package tracing turns the events handled by a coherence bus into logs,
// counters and database records.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/cachesim/mem/coherence"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Tracer observes the events handled by a bus. Trace is called while the
// bus is held, so a Tracer never sees two events at the same time from the
// same bus.
type Tracer interface {
	Trace(e coherence.Event)
}

// CollectTrace lets the tracer observe every event handled by the domain. A
// tracer can only be attached to a domain once.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.t == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

type traceHook struct {
	t Tracer
}

// Func forwards bus events to the tracer and ignores the other positions.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != coherence.HookPosBusEvent {
		return
	}

	h.t.Trace(ctx.Item.(coherence.Event))
}
