package ir

import (
	"errors"
	"strconv"
)

// ErrAlreadyCompleted is returned when a Descriptor's outcome is set twice.
var ErrAlreadyCompleted = errors.New("descriptor outcome already set")

// Descriptor is the mode-independent representation of one call.
//
// A Descriptor lives for the duration of one intercepted call. Its outcome
// is absent before the call completes and set exactly once after.
type Descriptor struct {
	Owner     string
	Operation string
	Strategy  Strategy
	Args      []any

	outcome Outcome
}

// NewDescriptor creates a Descriptor for a call that is about to run.
// A nil args slice is normalized to an empty one.
func NewDescriptor(owner, operation string, strategy Strategy, args []any) *Descriptor {
	if args == nil {
		args = []any{}
	}
	return &Descriptor{
		Owner:     owner,
		Operation: operation,
		Strategy:  strategy,
		Args:      args,
	}
}

// Key derives the artifact key for this call.
func (d *Descriptor) Key() (Key, error) {
	return BuildKey(d.Owner, d.Operation, d.Strategy)
}

// Name returns the dynamic operation name, e.g. "PaymentService.processPayment".
func (d *Descriptor) Name() string {
	return OperationName(d.Owner, d.Operation, d.Strategy)
}

// Complete records the call's outcome. It fails if an outcome is already
// present or o is nil.
func (d *Descriptor) Complete(o Outcome) error {
	if o == nil {
		return errors.New("descriptor outcome must not be nil")
	}
	if d.outcome != nil {
		return ErrAlreadyCompleted
	}
	d.outcome = o
	return nil
}

// Outcome returns the recorded outcome and whether the call has completed.
func (d *Descriptor) Outcome() (Outcome, bool) {
	return d.outcome, d.outcome != nil
}

// Attributes returns the request metadata written alongside the arguments.
func (d *Descriptor) Attributes() map[string]string {
	attrs := map[string]string{
		AttrClassName:      d.Owner,
		AttrMethodName:     d.Operation,
		AttrParameterCount: strconv.Itoa(len(d.Args)),
	}
	if d.Strategy == StrategyAnnotated {
		attrs[AttrAnnotationType] = AnnotationType
	}
	return attrs
}
