package intercept

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recap/internal/ir"
)

type failingStore struct{}

func (failingStore) Create(context.Context, ir.Artifact) error {
	return errors.New("create failed")
}

func (failingStore) Lookup(context.Context, ir.Probe) (ir.Artifact, bool, error) {
	return ir.Artifact{}, false, errors.New("lookup failed")
}

type panickingStore struct{}

func (panickingStore) Create(context.Context, ir.Artifact) error {
	panic("boom")
}

func (panickingStore) Lookup(context.Context, ir.Probe) (ir.Artifact, bool, error) {
	panic(errors.New("boom"))
}

func TestStoreClientReturnsErrors(t *testing.T) {
	c := storeClient{store: failingStore{}}
	_, ok, err := c.lookup(context.Background(), ir.Probe{})
	assert.False(t, ok)
	assert.EqualError(t, err, "lookup failed")
	assert.EqualError(t, c.create(context.Background(), ir.Artifact{}), "create failed")
}

func TestStoreClientRecoversPanics(t *testing.T) {
	c := storeClient{store: panickingStore{}}

	_, ok, err := c.lookup(context.Background(), ir.Probe{})
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store lookup panicked")

	err = c.create(context.Background(), ir.Artifact{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store create panicked: boom")
}

func TestStoreClientNilStore(t *testing.T) {
	c := storeClient{}
	_, ok, err := c.lookup(context.Background(), ir.Probe{})
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, c.create(context.Background(), ir.Artifact{}))
}
