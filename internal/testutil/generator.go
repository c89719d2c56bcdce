package testutil

import (
	"fmt"
	"sync"
	"time"
)

// FixedTime is the clock reading returned by SequenceGenerator.
var FixedTime = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// FixedTimestamp is FixedTime formatted the way diagrams store timestamps.
const FixedTimestamp = "2024-01-02T03:04:05.000Z"

// SequenceGenerator issues ids "<prefix>-1", "<prefix>-2", ... and always
// reports FixedTime. It satisfies diagram.Generator.
type SequenceGenerator struct {
	Prefix string

	mu sync.Mutex
	n  int
}

// NewSequenceGenerator returns a generator whose ids start at prefix-1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// NewID returns the next id in the sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

// Now returns FixedTime.
func (g *SequenceGenerator) Now() time.Time { return FixedTime }

// Issued returns how many ids have been handed out.
func (g *SequenceGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
