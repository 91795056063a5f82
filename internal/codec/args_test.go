package codec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsRoundTrip(t *testing.T) {
	args := []any{paymentRequest{Amount: 10, Currency: "EUR"}, "memo", int64(3), nil}
	hints := []reflect.Type{
		reflect.TypeOf(paymentRequest{}),
		reflect.TypeOf(""),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf((*payment)(nil)),
	}

	for name, c := range allCodecs(t) {
		t.Run(name, func(t *testing.T) {
			enc, err := c.EncodeArgs(args)
			require.NoError(t, err)
			assert.Equal(t, 4, enc.Count)
			assert.NotEmpty(t, enc.Body)
			assert.Len(t, enc.Digest, 64)

			got, err := c.DecodeArgs(enc.Body, hints)
			require.NoError(t, err)
			require.Len(t, got, 4)
			assert.Equal(t, args[0], got[0])
			assert.Equal(t, args[1], got[1])
			assert.Equal(t, args[2], got[2])
			assert.Nil(t, got[3].(*payment))
		})
	}
}

func TestArgsEmpty(t *testing.T) {
	for name, c := range allCodecs(t) {
		t.Run(name, func(t *testing.T) {
			for _, args := range [][]any{nil, {}} {
				enc, err := c.EncodeArgs(args)
				require.NoError(t, err)
				assert.Equal(t, 0, enc.Count)
				assert.Empty(t, enc.Body)

				got, err := c.DecodeArgs(enc.Body, nil)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
		})
	}
}

func TestArgsDigest(t *testing.T) {
	plain := MustNew()
	zstd := MustNew(WithCompression(CompressionZstd))

	a, err := plain.EncodeArgs([]any{"x", 1})
	require.NoError(t, err)
	b, err := zstd.EncodeArgs([]any{"x", 1})
	require.NoError(t, err)
	c, err := plain.EncodeArgs([]any{"y", 1})
	require.NoError(t, err)
	empty, err := plain.EncodeArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, a.Digest, b.Digest, "digest is computed before compression")
	assert.NotEqual(t, a.Digest, c.Digest)
	assert.NotEqual(t, a.Digest, empty.Digest)
}

func TestDescribeArgs(t *testing.T) {
	c := MustNew()
	enc, err := c.EncodeArgs([]any{paymentRequest{Amount: 10}, true})
	require.NoError(t, err)

	described, err := c.DescribeArgs(enc.Body)
	require.NoError(t, err)
	require.Len(t, described, 2)
	assert.Equal(t, "codec.paymentRequest", described[0].Type)
	assert.IsType(t, map[string]any{}, described[0].Value)
	assert.Equal(t, "bool", described[1].Type)
	assert.Equal(t, true, described[1].Value)
}

func TestDecodeArgsCorrupt(t *testing.T) {
	_, err := MustNew().DecodeArgs([]byte("{not json"), nil)
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
}

func TestEncodeArgsUnsupported(t *testing.T) {
	_, err := MustNew().EncodeArgs([]any{"ok", func() {}})
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
}
