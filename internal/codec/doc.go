// Package codec turns call payloads into opaque artifact bodies and back.
//
// Two wire formats are supported:
//   - json: encoding/json with HTML escaping disabled. Map keys are sorted,
//     struct fields keep declaration order, so the same value always
//     produces the same bytes.
//   - cbor: RFC 8949 Core Deterministic Encoding (sorted map keys, smallest
//     integer encoding, no indefinite-length items).
//
// Bodies may additionally be compressed with zstd or lz4. A compressed body
// is framed with a one-byte tag and the uncompressed length, so a body that
// did not compress well is stored raw under the "none" tag.
//
// Every value is tagged with its Go type name. Decoding is driven by a
// reflect.Type hint supplied by the caller; without a hint values decode
// to generic Go types (map[string]any, []any, json.Number).
//
// The format and compression of every artifact are recorded on the artifact
// itself (ir.Encoding), so a codec built with ForEncoding can read bodies
// written by any earlier configuration.
package codec
