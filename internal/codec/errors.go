package codec

import (
	"errors"
	"fmt"
)

// Error is a serialization or deserialization failure: an unsupported
// type, corrupt bytes, or an unknown encoding.
type Error struct {
	Op   string // "encode", "decode", "compress", "decompress"
	Type string // Go type name involved, if known
	Err  error
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("codec %s %s: %v", e.Op, e.Type, e.Err)
	}
	return fmt.Sprintf("codec %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCodecError reports whether err is, or wraps, a codec Error.
func IsCodecError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

func newError(op, typeName string, err error) *Error {
	return &Error{Op: op, Type: typeName, Err: err}
}
