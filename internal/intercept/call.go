package intercept

import (
	"reflect"

	"github.com/roach88/recap/internal/ir"
)

// Call describes one intercepted invocation.
type Call struct {
	Owner     string
	Operation string
	Strategy  ir.Strategy
	Args      []any

	// ResultType is the operation's declared result type. Nil means the
	// operation is void-shaped.
	ResultType reflect.Type
}

// Void reports whether the operation declares no result.
func (c Call) Void() bool {
	return c.ResultType == nil
}

// Name returns the rendered operation name, e.g. "PaymentService.processPayment".
func (c Call) Name() string {
	return ir.OperationName(c.Owner, c.Operation, c.Strategy)
}

func (c Call) descriptor() *ir.Descriptor {
	return ir.NewDescriptor(c.Owner, c.Operation, c.Strategy, c.Args)
}

// ResultOf returns the reflect.Type of T for use as Call.ResultType.
func ResultOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
