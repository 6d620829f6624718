// Package id generates identifiers for recorded simulation entities.
package id

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

// NewSequentialIDGenerator returns a generator that counts up from 1. The
// IDs are deterministic across runs.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator returns a generator backed by xid. The IDs are
// globally unique but not deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}

var (
	defaultMu        sync.Mutex
	defaultGenerator IDGenerator
)

// Generate returns an ID from the default generator, which is sequential
// unless SetDefault was called.
func Generate() string {
	defaultMu.Lock()
	if defaultGenerator == nil {
		defaultGenerator = NewSequentialIDGenerator()
	}
	g := defaultGenerator
	defaultMu.Unlock()

	return g.Generate()
}

// SetDefault replaces the default generator.
func SetDefault(g IDGenerator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultGenerator = g
}
