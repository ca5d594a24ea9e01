package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
)

// MockIDGenerator returns queued ids first, then a predictable sequence
// ("<prefix>-1", "<prefix>-2", ...)
type MockIDGenerator struct {
	mu     sync.Mutex
	Prefix string
	queued []string
	next   int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a generator with the given sequence prefix
func NewMockIDGenerator(prefix string) *MockIDGenerator {
	return &MockIDGenerator{Prefix: prefix}
}

// NewID returns the next queued id, or the next sequential id
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}

// QueueIDs adds ids to be returned before the sequence resumes
func (g *MockIDGenerator) QueueIDs(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
