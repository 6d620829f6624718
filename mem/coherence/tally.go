package coherence

import "github.com/sarchlab/cachesim/mem/cache"

// A Tally counts MESI transitions, indexed by [from][to].
type Tally [cache.NumStates][cache.NumStates]uint64

// Add counts one transition.
func (t *Tally) Add(from, to cache.State) {
	t[from][to]++
}

// Count returns how many times from changed to to.
func (t Tally) Count(from, to cache.State) uint64 {
	return t[from][to]
}

// ExclusiveToShared returns the number of E->S transitions.
func (t Tally) ExclusiveToShared() uint64 {
	return t.Count(cache.Exclusive, cache.Shared)
}

// ExclusiveToInvalid returns the number of E->I transitions.
func (t Tally) ExclusiveToInvalid() uint64 {
	return t.Count(cache.Exclusive, cache.Invalid)
}

// ExclusiveToModified returns the number of E->M transitions.
func (t Tally) ExclusiveToModified() uint64 {
	return t.Count(cache.Exclusive, cache.Modified)
}

// SharedToInvalid returns the number of S->I transitions.
func (t Tally) SharedToInvalid() uint64 {
	return t.Count(cache.Shared, cache.Invalid)
}

// SharedToModified returns the number of S->M transitions.
func (t Tally) SharedToModified() uint64 {
	return t.Count(cache.Shared, cache.Modified)
}
