package ir

import (
	"errors"
	"fmt"
)

// Artifact is the persisted record of one captured call.
//
// Artifacts are write-once. The core never mutates an artifact after
// creation; ordering of repeated recordings is the store's concern (Seq).
type Artifact struct {
	ID       string   `json:"id"`
	Key      Key      `json:"key"`
	Seq      int64    `json:"seq"` // Assigned by the store
	Request  Request  `json:"request"`
	Response Response `json:"response"`
	Encoding Encoding `json:"encoding"`
	Version  string   `json:"version"`
}

// Request is the captured call identity and its serialized arguments.
type Request struct {
	Owner         string            `json:"owner"`
	Operation     string            `json:"operation"`
	Strategy      Strategy          `json:"strategy,omitempty"`
	ArgumentCount int               `json:"argument_count"`
	Digest        string            `json:"digest,omitempty"` // Argument fingerprint for store matching
	Body          []byte            `json:"body,omitempty"`
	Attributes    map[string]string `json:"attributes"`
}

// Response is the captured outcome.
//
// Kind is always present. Body is set only for KindValue (and may be empty
// for a nil value). ErrorType and ErrorMessage are set only for KindError.
type Response struct {
	Kind         Kind   `json:"kind"`
	Type         string `json:"type,omitempty"`
	Body         []byte `json:"body,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Encoding names the codec configuration that produced the bodies.
type Encoding struct {
	Format      string `json:"format"`
	Compression string `json:"compression"`
}

// Probe is a lookup request. Stores match on Key and may use Digest to
// prefer an artifact recorded with the same arguments.
type Probe struct {
	Key    Key    `json:"key"`
	Digest string `json:"digest,omitempty"`
}

// ErrMalformed marks an artifact whose stored shape cannot be trusted.
// It is distinct from a void response: a malformed entry is never replayed.
var ErrMalformed = errors.New("malformed artifact")

// Validate checks the response shape. A void response with a body, an
// error response without a type, or an unknown kind is malformed.
func (r Response) Validate() error {
	switch r.Kind {
	case KindValue:
		if r.ErrorType != "" {
			return fmt.Errorf("%w: value response carries error type %q", ErrMalformed, r.ErrorType)
		}
	case KindVoid:
		if len(r.Body) > 0 {
			return fmt.Errorf("%w: void response carries a body", ErrMalformed)
		}
	case KindError:
		if r.ErrorType == "" {
			return fmt.Errorf("%w: error response without error type", ErrMalformed)
		}
	case "":
		return fmt.Errorf("%w: missing response kind", ErrMalformed)
	default:
		return fmt.Errorf("%w: unknown response kind %q", ErrMalformed, r.Kind)
	}
	return nil
}

// Validate checks the artifact as a whole.
func (a Artifact) Validate() error {
	if a.Key == "" {
		return fmt.Errorf("%w: missing key", ErrMalformed)
	}
	if a.Request.Owner == "" || a.Request.Operation == "" {
		return fmt.Errorf("%w: missing owner or operation", ErrMalformed)
	}
	if a.Request.ArgumentCount < 0 {
		return fmt.Errorf("%w: negative argument count", ErrMalformed)
	}
	return a.Response.Validate()
}
