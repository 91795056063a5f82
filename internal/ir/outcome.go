package ir

import (
	"fmt"
	"time"
)

// Kind is the three-way discriminator carried by every recorded response.
type Kind string

const (
	// KindValue is a completed call with a (possibly empty) value payload.
	KindValue Kind = "value"

	// KindVoid is a completed call whose operation declares no result.
	KindVoid Kind = "void"

	// KindError is a call that failed in the real operation. Only the
	// error type name and message are kept, never a live error.
	KindError Kind = "error"
)

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindValue, KindVoid, KindError:
		return true
	default:
		return false
	}
}

// Outcome is the sealed result of one call. Only Returned, VoidResult and
// Failed implement it.
type Outcome interface {
	Kind() Kind
	outcome()
}

// Returned is a completed call that produced a value. Value may be nil
// when the operation declares a result but returned nothing.
type Returned struct {
	Value any
}

func (Returned) outcome() {}

// Kind implements Outcome.
func (Returned) Kind() Kind { return KindValue }

// VoidResult marks the completion of an operation that declares no result.
//
// At is informational only. Any two VoidResults are equal; matching never
// inspects marker internals.
type VoidResult struct {
	At time.Time
}

func (VoidResult) outcome() {}

// Kind implements Outcome.
func (VoidResult) Kind() Kind { return KindVoid }

// Equal reports marker equivalence. It always returns true.
func (VoidResult) Equal(VoidResult) bool { return true }

func (v VoidResult) String() string {
	return fmt.Sprintf("VoidResult{at=%s}", v.At.Format(time.RFC3339Nano))
}

// Void returns a VoidResult stamped with the current time.
func Void() VoidResult {
	return VoidResult{At: time.Now()}
}

// Failed is a call whose real operation returned an error.
type Failed struct {
	Err error
}

func (Failed) outcome() {}

// Kind implements Outcome.
func (Failed) Kind() Kind { return KindError }

// OutcomeOf classifies the result of a real call. void comes from the
// operation's declared shape, not from inspecting value: a nil value from
// an operation that declares a result is still a Returned.
func OutcomeOf(value any, err error, void bool) Outcome {
	switch {
	case err != nil:
		return Failed{Err: err}
	case void:
		return Void()
	default:
		return Returned{Value: value}
	}
}
