package intercept

import (
	"context"

	"github.com/roach88/recap/internal/ir"
)

// Store is the artifact store the engine records to and replays from.
// Matching on Probe.Digest is the store's concern; a miss is ok=false
// with a nil error.
type Store interface {
	Create(ctx context.Context, a ir.Artifact) error
	Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error)
}

// storeClient is the engine's only path to the Store. Every call returns
// an error instead of panicking.
type storeClient struct {
	store Store
}

func (c storeClient) lookup(ctx context.Context, probe ir.Probe) (a ir.Artifact, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok, err = ir.Artifact{}, false, recovered("store lookup", r)
		}
	}()
	if c.store == nil {
		return ir.Artifact{}, false, nil
	}
	return c.store.Lookup(ctx, probe)
}

func (c storeClient) create(ctx context.Context, a ir.Artifact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("store create", r)
		}
	}()
	if c.store == nil {
		return nil
	}
	return c.store.Create(ctx, a)
}
