package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/recap/internal/ir"
)

// artifactStore is the contract shared by SQLite and Memory.
type artifactStore interface {
	Create(ctx context.Context, a ir.Artifact) error
	Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error)
}

// createTestStore creates a new on-disk store for testing.
func createTestStore(t *testing.T, opts ...Option) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// eachStore runs fn against both implementations.
func eachStore(t *testing.T, fn func(t *testing.T, s artifactStore), opts ...Option) {
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestStore(t, opts...)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory(opts...)) })
}

// createTestArtifact creates a value artifact with minimal required fields.
func createTestArtifact(owner, operation, digest string, body string) ir.Artifact {
	return ir.Artifact{
		Key: ir.MustBuildKey(owner, operation, ir.StrategyPackage),
		Request: ir.Request{
			Owner:      owner,
			Operation:  operation,
			Digest:     digest,
			Attributes: map[string]string{ir.AttrClassName: owner, ir.AttrMethodName: operation},
		},
		Response: ir.Response{Kind: ir.KindValue, Type: "string", Body: []byte(body)},
		Encoding: ir.Encoding{Format: "json", Compression: "none"},
	}
}
