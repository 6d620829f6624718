// Package cache provides a set-associative cache storage that keeps track of
// tags, MESI states and payloads.
//
// The Cache does not know about timing or coherence. It only knows what is
// stored where. Coherence is the business of the mem/coherence package.
package cache

import (
	"math/bits"

	"github.com/sarchlab/cachesim/mem/trace"
)

// EmptyTag is the tag of a slot that holds nothing.
const EmptyTag int64 = -1

// A Line is the content of one slot of the cache.
type Line struct {
	Tag     int64
	State   State
	Payload trace.Reference
}

// IsEmpty returns true if the slot holds nothing.
func (l Line) IsEmpty() bool {
	return l.Tag == EmptyTag
}

// IsValid returns true if the slot holds a line that can satisfy an access.
func (l Line) IsValid() bool {
	return !l.IsEmpty() && l.State.IsValid()
}

// A Cache is a fixed number of lines organized in sets of numWays ways. An
// address maps to set address&(numSets-1) and is stored with tag
// address>>log2(numSets).
type Cache struct {
	numLines    int
	numWays     int
	numSets     int
	log2NumSets int

	lines        []Line
	victimFinder VictimFinder
}

// NewCache creates a cache with totalLines lines split into sets of
// waysPerSet ways. The number of sets must be a power of two.
func NewCache(
	totalLines, waysPerSet int,
	victimFinder VictimFinder,
) (*Cache, error) {
	if err := validateGeometry(totalLines, waysPerSet); err != nil {
		return nil, err
	}

	numSets := totalLines / waysPerSet

	c := &Cache{
		numLines:     totalLines,
		numWays:      waysPerSet,
		numSets:      numSets,
		log2NumSets:  bits.TrailingZeros(uint(numSets)),
		lines:        make([]Line, totalLines),
		victimFinder: victimFinder,
	}

	c.Reset()

	return c, nil
}

func validateGeometry(totalLines, waysPerSet int) error {
	switch {
	case totalLines <= 0:
		return &ConfigError{Field: "totalLines", Reason: "must be positive"}
	case waysPerSet <= 0:
		return &ConfigError{Field: "waysPerSet", Reason: "must be positive"}
	case totalLines%waysPerSet != 0:
		return &ConfigError{
			Field:  "waysPerSet",
			Reason: "must evenly divide the number of lines",
		}
	}

	numSets := totalLines / waysPerSet
	if numSets&(numSets-1) != 0 {
		return &ConfigError{
			Field:  "totalLines",
			Reason: "the number of sets must be a power of two",
		}
	}

	return nil
}

// Reset empties every slot.
func (c *Cache) Reset() {
	for i := range c.lines {
		c.lines[i] = Line{Tag: EmptyTag}
	}
}

// NumLines returns the capacity of the cache in lines.
func (c *Cache) NumLines() int {
	return c.numLines
}

// NumWays returns the associativity.
func (c *Cache) NumWays() int {
	return c.numWays
}

// NumSets returns the number of sets.
func (c *Cache) NumSets() int {
	return c.numSets
}

// Index returns the set that address maps to.
func (c *Cache) Index(address int64) int {
	return int(address & int64(c.numSets-1))
}

// Tag returns the tag that address is stored with.
func (c *Cache) Tag(address int64) int64 {
	return address >> c.log2NumSets
}

// Address rebuilds the address stored in set index with tag.
func (c *Cache) Address(index int, tag int64) int64 {
	return tag<<c.log2NumSets | int64(index)
}

// Lookup returns the way of the set that holds the tag of address, regardless
// of the line's state.
func (c *Cache) Lookup(address int64) (way int, ok bool) {
	index := c.Index(address)
	tag := c.Tag(address)

	for way, line := range c.set(index) {
		if line.Tag == tag {
			return way, true
		}
	}

	return 0, false
}

// FindFreeWay returns a way of the set at index that holds nothing.
func (c *Cache) FindFreeWay(index int) (way int, ok bool) {
	for way, line := range c.set(index) {
		if line.IsEmpty() {
			return way, true
		}
	}

	return 0, false
}

// ChooseVictim picks the way to evict from the set at index.
func (c *Cache) ChooseVictim(index int) int {
	return c.victimFinder.FindVictim(c, index)
}

// Insert overwrites the given slot.
func (c *Cache) Insert(
	index, way int,
	tag int64,
	state State,
	payload trace.Reference,
) {
	c.lines[c.slot(index, way)] = Line{
		Tag:     tag,
		State:   state,
		Payload: payload,
	}
}

// Line returns the content of the given slot.
func (c *Cache) Line(index, way int) Line {
	return c.lines[c.slot(index, way)]
}

// SetState changes the MESI state of the line in the given slot.
func (c *Cache) SetState(index, way int, state State) {
	c.lines[c.slot(index, way)].State = state
}

// Evict empties the given slot and returns what it held.
func (c *Cache) Evict(index, way int) Line {
	slot := c.slot(index, way)
	line := c.lines[slot]
	c.lines[slot] = Line{Tag: EmptyTag}

	return line
}

// ValidLines counts the non-empty slots of the set at index.
func (c *Cache) ValidLines(index int) int {
	n := 0

	for _, line := range c.set(index) {
		if !line.IsEmpty() {
			n++
		}
	}

	return n
}

func (c *Cache) set(index int) []Line {
	start := index * c.numWays
	return c.lines[start : start+c.numWays]
}

func (c *Cache) slot(index, way int) int {
	if way < 0 || way >= c.numWays {
		panic("way out of range")
	}

	return index*c.numWays + way
}
