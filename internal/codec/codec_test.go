package codec

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recap/internal/ir"
)

type paymentRequest struct {
	Amount   int64  `json:"amount" cbor:"amount"`
	Currency string `json:"currency" cbor:"currency"`
}

type payment struct {
	ID     int64             `json:"id" cbor:"id"`
	Status string            `json:"status" cbor:"status"`
	Tags   []string          `json:"tags,omitempty" cbor:"tags,omitempty"`
	Meta   map[string]string `json:"meta,omitempty" cbor:"meta,omitempty"`
}

// allCodecs returns one codec per format/compression combination.
func allCodecs(t *testing.T) map[string]*Codec {
	t.Helper()
	out := map[string]*Codec{}
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
			cd, err := New(WithFormat(f), WithCompression(c))
			require.NoError(t, err)
			out[string(f)+"/"+string(c)] = cd
		}
	}
	return out
}

func TestValueRoundTrip(t *testing.T) {
	values := []any{
		payment{ID: 1, Status: "OK"},
		&payment{ID: 2, Status: "PENDING", Tags: []string{"a", "b"}, Meta: map[string]string{"k": "v"}},
		"hello <world> & friends",
		int64(1) << 62,
		true,
		[]string{"x", "y"},
		map[string]int{"a": 1, "b": 2},
		strings.Repeat("compressible ", 200),
	}

	for name, c := range allCodecs(t) {
		t.Run(name, func(t *testing.T) {
			for _, v := range values {
				p, err := c.EncodeValue(v)
				require.NoError(t, err)
				assert.Equal(t, TypeName(v), p.Type)

				got, err := c.DecodeValue(p.Body, reflect.TypeOf(v))
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
		})
	}
}

func TestEncodeValueNilIsEmptyBody(t *testing.T) {
	c := MustNew()

	p, err := c.EncodeValue(nil)
	require.NoError(t, err)
	assert.Empty(t, p.Body)
	assert.Equal(t, "", p.Type)

	var typedNil *payment
	p, err = c.EncodeValue(typedNil)
	require.NoError(t, err)
	assert.Empty(t, p.Body)
	assert.Equal(t, "*codec.payment", p.Type)

	got, err := c.DecodeValue(p.Body, reflect.TypeOf(typedNil))
	require.NoError(t, err)
	assert.Nil(t, got.(*payment))
}

func TestDecodeValueEmptyBodyWithoutHint(t *testing.T) {
	got, err := MustNew().DecodeValue(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeValueWithoutHintKeepsLargeIntegers(t *testing.T) {
	c := MustNew()
	p, err := c.EncodeValue(map[string]int64{"n": 1<<62 + 1})
	require.NoError(t, err)

	got, err := c.DecodeValue(p.Body, nil)
	require.NoError(t, err)
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "4611686018427387905", m["n"].(interface{ String() string }).String())
}

func TestJSONDoesNotEscapeHTML(t *testing.T) {
	p, err := MustNew().EncodeValue("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(p.Body))
}

func TestEncodeValueUnsupportedType(t *testing.T) {
	_, err := MustNew().EncodeValue(make(chan int))
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
}

func TestDecodeValueCorruptBody(t *testing.T) {
	for name, c := range allCodecs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.DecodeValue([]byte{0xff, 0xfe, 0x01}, reflect.TypeOf(payment{}))
			require.Error(t, err)
			assert.True(t, IsCodecError(err))
		})
	}
}

func TestDecodeValueTypeMismatch(t *testing.T) {
	c := MustNew()
	p, err := c.EncodeValue("not a payment")
	require.NoError(t, err)

	_, err = c.DecodeValue(p.Body, reflect.TypeOf(payment{}))
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "decode", ce.Op)
	assert.Equal(t, "codec.payment", ce.Type)
}

func TestNewRejectsUnknownOptions(t *testing.T) {
	_, err := New(WithFormat("xml"))
	assert.Error(t, err)

	_, err = New(WithCompression("brotli"))
	assert.Error(t, err)
}

func TestForEncoding(t *testing.T) {
	writer := MustNew(WithFormat(FormatCBOR), WithCompression(CompressionZstd))
	p, err := writer.EncodeValue(payment{ID: 7, Status: "OK"})
	require.NoError(t, err)

	reader, err := ForEncoding(writer.Encoding())
	require.NoError(t, err)
	got, err := reader.DecodeValue(p.Body, reflect.TypeOf(payment{}))
	require.NoError(t, err)
	assert.Equal(t, payment{ID: 7, Status: "OK"}, got)

	_, err = ForEncoding(ir.Encoding{Format: "xml"})
	assert.True(t, IsCodecError(err))

	// Empty encoding fields default to json/none.
	legacy, err := ForEncoding(ir.Encoding{})
	require.NoError(t, err)
	assert.Equal(t, ir.Encoding{Format: "json", Compression: "none"}, legacy.Encoding())
}

func TestParseFormatAndCompression(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, c)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}
