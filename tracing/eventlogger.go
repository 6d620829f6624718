package tracing

import (
	"log"

	"github.com/sarchlab/cachesim/mem/coherence"
)

// EventLogger writes one line per bus event into a logger.
type EventLogger struct {
	logger *log.Logger

	// Verbose also logs hits and stores.
	Verbose bool
}

// NewEventLogger returns an EventLogger that writes into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Trace logs the event.
func (l *EventLogger) Trace(e coherence.Event) {
	switch e := e.(type) {
	case coherence.L1Hit:
		if l.Verbose {
			l.logger.Printf("core %d: L1 hit 0x%x", e.Core, e.Address)
		}
	case coherence.L2Hit:
		if l.Verbose {
			l.logger.Printf("core %d: L2 hit 0x%x", e.Core, e.Address)
		}
	case coherence.DataWrite:
		if l.Verbose {
			l.logger.Printf("core %d: write 0x%x", e.Core, e.Address)
		}
	case coherence.Miss:
		l.logger.Printf("core %d: miss %s", e.Core, e.Reference)
	case coherence.Eviction:
		l.logger.Printf("core %d: %s evicts 0x%x (%s)",
			e.Core, e.Level, e.Address, e.State)
	case coherence.StateChange:
		l.logger.Printf("core %d: 0x%x %s -> %s",
			e.Core, e.Address, e.From, e.To)
	case coherence.Complete:
		l.logger.Printf("core %d: complete", e.Core)
	}
}
