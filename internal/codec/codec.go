package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/recap/internal/ir"
)

// Format names a wire format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name. The empty string selects json.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR:
		return Format(name), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q", name)
	}
}

// cborEnc uses Core Deterministic Encoding: same logical data always
// produces identical bytes.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		// Untyped targets get map[string]any rather than the CBOR default
		// map[interface{}]interface{}, matching what the json format yields.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Codec encodes and decodes artifact bodies. A Codec is immutable and safe
// for concurrent use.
type Codec struct {
	format      Format
	compression Compression
}

// Option configures a Codec.
type Option func(*Codec)

// WithFormat selects the wire format. Default: json.
func WithFormat(f Format) Option {
	return func(c *Codec) {
		c.format = f
	}
}

// WithCompression selects body compression. Default: none.
func WithCompression(comp Compression) Option {
	return func(c *Codec) {
		c.compression = comp
	}
}

// New creates a Codec. Unknown formats or compressions are rejected.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		format:      FormatJSON,
		compression: CompressionNone,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := ParseFormat(string(c.format)); err != nil {
		return nil, err
	}
	if _, err := ParseCompression(string(c.compression)); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is like New but panics on error.
// Use only in tests or with constant options.
func MustNew(opts ...Option) *Codec {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ForEncoding returns a Codec able to read bodies written under e.
func ForEncoding(e ir.Encoding) (*Codec, error) {
	format, err := ParseFormat(e.Format)
	if err != nil {
		return nil, newError("decode", "", err)
	}
	comp, err := ParseCompression(e.Compression)
	if err != nil {
		return nil, newError("decode", "", err)
	}
	return &Codec{format: format, compression: comp}, nil
}

// Encoding describes this codec for the artifact record.
func (c *Codec) Encoding() ir.Encoding {
	return ir.Encoding{
		Format:      string(c.format),
		Compression: string(c.compression),
	}
}

// Payload is one encoded value together with its type tag.
type Payload struct {
	Type string
	Body []byte
}

// EncodeValue serializes a single value.
//
// A nil value (untyped nil, or a nil pointer, map or slice) produces an
// empty body. That is how "the operation declares a result and returned
// nothing" is recorded, distinct from a void response.
func (c *Codec) EncodeValue(v any) (Payload, error) {
	p := Payload{Type: TypeName(v)}
	if isNil(v) {
		return p, nil
	}

	data, err := c.marshal(v)
	if err != nil {
		return Payload{}, newError("encode", p.Type, err)
	}
	body, err := c.pack(data)
	if err != nil {
		return Payload{}, newError("compress", p.Type, err)
	}
	p.Body = body
	return p, nil
}

// DecodeValue deserializes a body produced by EncodeValue into a value of
// the hinted type. An empty body yields the zero value of hint (nil when
// hint is nil).
func (c *Codec) DecodeValue(body []byte, hint reflect.Type) (any, error) {
	if len(body) == 0 {
		return zero(hint), nil
	}
	data, err := c.unpack(body)
	if err != nil {
		return nil, newError("decompress", typeString(hint), err)
	}
	return c.decodeRaw(data, hint)
}

// decodeRaw unmarshals uncompressed data into a fresh value of hint.
func (c *Codec) decodeRaw(data []byte, hint reflect.Type) (any, error) {
	if len(data) == 0 {
		return zero(hint), nil
	}
	if hint == nil {
		var out any
		if err := c.unmarshal(data, &out); err != nil {
			return nil, newError("decode", "", err)
		}
		return out, nil
	}

	ptr := reflect.New(hint)
	if err := c.unmarshal(data, ptr.Interface()); err != nil {
		return nil, newError("decode", hint.String(), err)
	}
	return ptr.Elem().Interface(), nil
}

func (c *Codec) marshal(v any) ([]byte, error) {
	switch c.format {
	case FormatCBOR:
		return cborEnc.Marshal(v)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		// Encoder adds a trailing newline
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	}
}

func (c *Codec) unmarshal(data []byte, v any) error {
	switch c.format {
	case FormatCBOR:
		return cborDec.Unmarshal(data, v)
	default:
		// UseNumber keeps integers above 2^53 exact in untyped targets.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return err
		}
		if dec.More() {
			return fmt.Errorf("trailing data after JSON value")
		}
		return nil
	}
}

func (c *Codec) pack(data []byte) ([]byte, error) {
	if c.compression == CompressionNone {
		return data, nil
	}
	return frame(data, c.compression)
}

func (c *Codec) unpack(body []byte) ([]byte, error) {
	if c.compression == CompressionNone {
		return body, nil
	}
	return unframe(body)
}

// TypeName returns the type tag recorded for v: its Go type name, or ""
// for an untyped nil.
func TypeName(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func zero(hint reflect.Type) any {
	if hint == nil {
		return nil
	}
	return reflect.Zero(hint).Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
