// Package trace defines the memory references replayed by the simulator and
// a reader for the textual trace format.
package trace

import "fmt"

// NoAddress marks an absent address field.
const NoAddress int64 = -1

// Kind is the operation a Reference performs.
type Kind int

// The operation kinds. The values match the op field of the trace format.
const (
	FetchOnly Kind = -1
	Read      Kind = 0
	Write     Kind = 1
)

func (k Kind) String() string {
	switch k {
	case FetchOnly:
		return "FetchOnly"
	case Read:
		return "Read"
	case Write:
		return "Write"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Reference is one event of a memory trace. It is passed around by value
// and never modified after it is created.
type Reference struct {
	InstructionAddress int64
	DataAddress        int64
	Kind               Kind
}

// Fetch creates a Reference that only fetches an instruction.
func Fetch(instAddr int64) Reference {
	return Reference{
		InstructionAddress: instAddr,
		DataAddress:        NoAddress,
		Kind:               FetchOnly,
	}
}

// Load creates a Reference that reads dataAddr.
func Load(instAddr, dataAddr int64) Reference {
	return Reference{
		InstructionAddress: instAddr,
		DataAddress:        dataAddr,
		Kind:               Read,
	}
}

// Store creates a Reference that writes dataAddr.
func Store(instAddr, dataAddr int64) Reference {
	return Reference{
		InstructionAddress: instAddr,
		DataAddress:        dataAddr,
		Kind:               Write,
	}
}

// IsData returns true if the reference touches the data caches.
func (r Reference) IsData() bool {
	return r.Kind == Read || r.Kind == Write
}

// Address returns the address the reference looks up in the caches: the data
// address for loads and stores, the instruction address otherwise.
func (r Reference) Address() int64 {
	if r.IsData() {
		return r.DataAddress
	}

	return r.InstructionAddress
}

func (r Reference) String() string {
	if r.IsData() {
		return fmt.Sprintf("%s 0x%x @0x%x",
			r.Kind, r.DataAddress, r.InstructionAddress)
	}

	return fmt.Sprintf("%s 0x%x", r.Kind, r.InstructionAddress)
}
