package testutil

import (
	"fmt"
	"sync"
)

// FixedIDs returns predetermined artifact IDs for testing.
//
// This enables deterministic artifact output and golden comparison.
// Implements intercept.IDGenerator.
//
// Thread-safety: FixedIDs is safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order. Once they
// are consumed it continues with "artifact-<n>".
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// Generate returns the next ID.
func (g *FixedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.ids) {
		return g.ids[g.idx-1]
	}
	return fmt.Sprintf("artifact-%d", g.idx)
}
