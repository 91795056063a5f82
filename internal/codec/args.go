package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// digestKey is the BLAKE3 keyed-hash key for argument digests: the ASCII
// domain name, zero-padded to 32 bytes. Changing it invalidates every
// digest already stored.
var digestKey = [32]byte{
	'r', 'e', 'c', 'a', 'p', '.', 'r', 'e', 'q', 'u', 'e', 's', 't', '.',
	'd', 'i', 'g', 'e', 's', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Args is an encoded argument list.
type Args struct {
	Count  int
	Body   []byte // Empty for a zero-argument call
	Digest string // Keyed BLAKE3 over the uncompressed encoding
}

// Arg is one decoded argument with its recorded type tag.
type Arg struct {
	Type  string
	Value any
}

type jsonEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type cborEnvelope struct {
	Type  string          `cbor:"type"`
	Value cbor.RawMessage `cbor:"value,omitempty"`
}

// EncodeArgs serializes an argument list as a sequence of type-tagged
// envelopes. Nil arguments keep their type tag and carry no value.
func (c *Codec) EncodeArgs(args []any) (Args, error) {
	out := Args{Count: len(args)}
	if len(args) == 0 {
		out.Digest = digest(nil)
		return out, nil
	}

	raws := make([][]byte, len(args))
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = TypeName(arg)
		if isNil(arg) {
			continue
		}
		raw, err := c.marshal(arg)
		if err != nil {
			return Args{}, newError("encode", types[i], fmt.Errorf("argument %d: %w", i, err))
		}
		raws[i] = raw
	}

	var data []byte
	var err error
	switch c.format {
	case FormatCBOR:
		envs := make([]cborEnvelope, len(args))
		for i := range args {
			envs[i] = cborEnvelope{Type: types[i], Value: raws[i]}
		}
		data, err = c.marshal(envs)
	default:
		envs := make([]jsonEnvelope, len(args))
		for i := range args {
			envs[i] = jsonEnvelope{Type: types[i], Value: raws[i]}
		}
		data, err = c.marshal(envs)
	}
	if err != nil {
		return Args{}, newError("encode", "[]any", err)
	}

	body, err := c.pack(data)
	if err != nil {
		return Args{}, newError("compress", "[]any", err)
	}
	out.Body = body
	out.Digest = digest(data)
	return out, nil
}

// DecodeArgs reverses EncodeArgs. hints[i] selects the Go type of argument
// i; missing or nil hints decode to generic values. An empty body decodes
// to an empty, non-nil list.
func (c *Codec) DecodeArgs(body []byte, hints []reflect.Type) ([]any, error) {
	decoded, err := c.decodeArgs(body, hints)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(decoded))
	for i, a := range decoded {
		values[i] = a.Value
	}
	return values, nil
}

// DescribeArgs decodes an argument list generically, keeping type tags.
// Used for inspection where the Go types are not available.
func (c *Codec) DescribeArgs(body []byte) ([]Arg, error) {
	return c.decodeArgs(body, nil)
}

func (c *Codec) decodeArgs(body []byte, hints []reflect.Type) ([]Arg, error) {
	if len(body) == 0 {
		return []Arg{}, nil
	}
	data, err := c.unpack(body)
	if err != nil {
		return nil, newError("decompress", "[]any", err)
	}

	var types []string
	var raws [][]byte
	switch c.format {
	case FormatCBOR:
		var envs []cborEnvelope
		if err := c.unmarshal(data, &envs); err != nil {
			return nil, newError("decode", "[]any", err)
		}
		for _, e := range envs {
			types = append(types, e.Type)
			raws = append(raws, e.Value)
		}
	default:
		var envs []jsonEnvelope
		if err := c.unmarshal(data, &envs); err != nil {
			return nil, newError("decode", "[]any", err)
		}
		for _, e := range envs {
			types = append(types, e.Type)
			raws = append(raws, e.Value)
		}
	}

	out := make([]Arg, len(types))
	for i := range types {
		var hint reflect.Type
		if i < len(hints) {
			hint = hints[i]
		}
		v, err := c.decodeRaw(raws[i], hint)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = Arg{Type: types[i], Value: v}
	}
	return out, nil
}

func digest(data []byte) string {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		// Only fails for a key that is not 32 bytes.
		panic("codec: blake3 keyed hash: " + err.Error())
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
