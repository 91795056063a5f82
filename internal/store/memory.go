package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/recap/internal/ir"
)

// Memory is a process-local artifact store with the same matching rules
// as SQLite. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	seq   int64
	byKey map[ir.Key][]ir.Artifact
	ids   map[string]struct{}
	match MatchMode
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := applyOptions(opts)
	return &Memory{
		byKey: make(map[ir.Key][]ir.Artifact),
		ids:   make(map[string]struct{}),
		match: o.match,
	}
}

// Create appends an artifact. Duplicate IDs are silently ignored.
func (m *Memory) Create(_ context.Context, a ir.Artifact) error {
	a, err := prepare(a)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.ids[a.ID]; dup {
		return nil
	}
	m.seq++
	a.Seq = m.seq
	a.Request.Body = slices.Clone(a.Request.Body)
	a.Response.Body = slices.Clone(a.Response.Body)
	a.Request.Attributes = cloneAttributes(a.Request.Attributes)

	m.byKey[a.Key] = append(m.byKey[a.Key], a)
	m.ids[a.ID] = struct{}{}
	return nil
}

// Lookup implements the same policy as SQLite.Lookup.
func (m *Memory) Lookup(_ context.Context, probe ir.Probe) (ir.Artifact, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recorded := m.byKey[probe.Key]
	for i := len(recorded) - 1; i >= 0; i-- {
		if recorded[i].Request.Digest == probe.Digest {
			return copyArtifact(recorded[i]), true, nil
		}
	}
	if m.match == MatchExact || len(recorded) == 0 {
		return ir.Artifact{}, false, nil
	}
	return copyArtifact(recorded[len(recorded)-1]), true, nil
}

// Get retrieves a single artifact by ID.
// Returns ErrNotFound if no artifact has that ID.
func (m *Memory) Get(_ context.Context, id string) (ir.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.ids[id]; !ok {
		return ir.Artifact{}, ErrNotFound
	}
	for _, recorded := range m.byKey {
		for _, a := range recorded {
			if a.ID == id {
				return copyArtifact(a), nil
			}
		}
	}
	return ir.Artifact{}, ErrNotFound
}

// All returns every artifact in recording order.
func (m *Memory) All() []ir.Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ir.Artifact
	for _, recorded := range m.byKey {
		for _, a := range recorded {
			out = append(out, copyArtifact(a))
		}
	}
	slices.SortFunc(out, func(a, b ir.Artifact) int {
		return int(a.Seq - b.Seq)
	})
	return out
}

// Len returns the number of stored artifacts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// copyArtifact detaches returned artifacts from internal storage.
func copyArtifact(a ir.Artifact) ir.Artifact {
	a.Request.Body = slices.Clone(a.Request.Body)
	a.Response.Body = slices.Clone(a.Response.Body)
	a.Request.Attributes = cloneAttributes(a.Request.Attributes)
	return a
}

func cloneAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
