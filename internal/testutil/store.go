package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/recap/internal/ir"
)

// ErrInjected is the failure returned by a FaultyStore.
var ErrInjected = errors.New("injected store failure")

// Fault selects how a FaultyStore operation misbehaves.
type Fault int

const (
	// NoFault delegates to the wrapped store.
	NoFault Fault = iota

	// FailWithError returns ErrInjected.
	FailWithError

	// FailWithPanic panics.
	FailWithPanic
)

// Backend is the store contract FaultyStore wraps.
type Backend interface {
	Create(ctx context.Context, a ir.Artifact) error
	Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error)
}

// FaultyStore wraps a store, counts calls, and injects failures.
//
// Thread-safety: safe for concurrent use if the wrapped store is.
type FaultyStore struct {
	mu          sync.Mutex
	inner       Backend
	createFault Fault
	lookupFault Fault
	creates     int
	lookups     int
	override    *ir.Artifact
}

// NewFaultyStore wraps inner. A nil inner behaves as an always-empty store.
func NewFaultyStore(inner Backend) *FaultyStore {
	return &FaultyStore{inner: inner}
}

// FailCreate sets the fault injected into Create.
func (s *FaultyStore) FailCreate(f Fault) *FaultyStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createFault = f
	return s
}

// FailLookup sets the fault injected into Lookup.
func (s *FaultyStore) FailLookup(f Fault) *FaultyStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupFault = f
	return s
}

// ServeArtifact makes every Lookup return a. Used to feed hand-built
// (including malformed) artifacts to the engine.
func (s *FaultyStore) ServeArtifact(a ir.Artifact) *FaultyStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &a
	return s
}

// Creates returns the number of Create calls, including failed ones.
func (s *FaultyStore) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// Lookups returns the number of Lookup calls, including failed ones.
func (s *FaultyStore) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// Create implements the store contract.
func (s *FaultyStore) Create(ctx context.Context, a ir.Artifact) error {
	s.mu.Lock()
	s.creates++
	fault := s.createFault
	s.mu.Unlock()

	if err := inject(fault); err != nil {
		return err
	}
	if s.inner == nil {
		return nil
	}
	return s.inner.Create(ctx, a)
}

// Lookup implements the store contract.
func (s *FaultyStore) Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error) {
	s.mu.Lock()
	s.lookups++
	fault := s.lookupFault
	override := s.override
	s.mu.Unlock()

	if err := inject(fault); err != nil {
		return ir.Artifact{}, false, err
	}
	if override != nil {
		return *override, true, nil
	}
	if s.inner == nil {
		return ir.Artifact{}, false, nil
	}
	return s.inner.Lookup(ctx, probe)
}

func inject(f Fault) error {
	switch f {
	case FailWithError:
		return ErrInjected
	case FailWithPanic:
		panic(ErrInjected)
	default:
		return nil
	}
}
