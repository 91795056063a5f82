package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/intercept"
	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
	"github.com/roach88/recap/internal/testutil"
)

func startService(t *testing.T) (*Client, *store.Memory) {
	t.Helper()
	s, mem := newTestServer(t)
	ts := httptest.NewServer(s.Echo())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/"), mem
}

func TestClientRoundTrip(t *testing.T) {
	c, mem := startService(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))
	require.NoError(t, c.Create(ctx, testArtifact("a1")))
	assert.Equal(t, 1, mem.Len())

	got, ok, err := c.Lookup(ctx, ir.Probe{Key: testArtifact("").Key, Digest: "d1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, int64(1), got.Seq)

	byID, err := c.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestClientLookupMissIsNotAnError(t *testing.T) {
	c, _ := startService(t)

	_, ok, err := c.Lookup(context.Background(), ir.Probe{Key: testArtifact("").Key})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientGetNotFound(t *testing.T) {
	c, _ := startService(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientCreateMalformed(t *testing.T) {
	c, _ := startService(t)

	a := testArtifact("a1")
	a.Response.Kind = ""
	err := c.Create(context.Background(), a)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Contains(t, se.Message, "malformed artifact")
}

func TestClientTimeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		ts.Close()
	})

	c := NewClient(ts.URL, WithTimeout(50*time.Millisecond))
	_, _, err := c.Lookup(context.Background(), ir.Probe{Key: "k"})
	require.Error(t, err)
}

func TestClientUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(time.Second))
	err := c.Create(context.Background(), testArtifact("a1"))
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestEngineOverRemoteStore(t *testing.T) {
	c, _ := startService(t)
	e := intercept.New(c, codec.MustNew(codec.WithCompression(codec.CompressionLZ4)),
		intercept.WithLogger(testutil.DiscardLogger()))
	call := intercept.Call{Owner: "PaymentService", Operation: "processPayment", Args: []any{10}}

	record := intercept.WithMode(context.Background(), intercept.Record)
	replay := intercept.WithMode(context.Background(), intercept.Replay)

	got, err := intercept.Invoke(record, e, call, func(context.Context) (string, error) { return "OK", nil })
	require.NoError(t, err)
	require.Equal(t, "OK", got)

	got, err = intercept.Invoke(replay, e, call, func(context.Context) (string, error) {
		return "real", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", got)
}

func TestEngineWithUnreachableRemoteProceeds(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(time.Second))
	e := intercept.New(c, nil, intercept.WithLogger(testutil.DiscardLogger()))
	call := intercept.Call{Owner: "PaymentService", Operation: "processPayment"}

	replay := intercept.WithMode(context.Background(), intercept.Replay)
	got, err := intercept.Invoke(replay, e, call, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
