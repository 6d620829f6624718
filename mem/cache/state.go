package cache

import "fmt"

// State is the MESI coherence state of a cache line.
type State int

// The MESI states. Invalid is the zero value.
const (
	Invalid State = iota
	Shared
	Exclusive
	Modified
)

// NumStates is the number of MESI states.
const NumStates = 4

func (s State) String() string {
	switch s {
	case Invalid:
		return "Invalid"
	case Shared:
		return "Shared"
	case Exclusive:
		return "Exclusive"
	case Modified:
		return "Modified"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsValid returns true if a line in this state can satisfy an access.
func (s State) IsValid() bool {
	return s != Invalid
}
