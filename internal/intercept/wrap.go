package intercept

import (
	"context"
	"reflect"

	"github.com/roach88/recap/internal/ir"
)

// Invoke runs fn under the record/replay protocol.
//
// On a replay hit fn does not run and the recorded value (or replayed
// error) is returned. Otherwise fn runs, its outcome is offered for
// recording, and its result and error are returned unchanged. When
// c.ResultType is nil it is set to T.
func Invoke[T any](ctx context.Context, e *Engine, c Call, fn func(context.Context) (T, error)) (T, error) {
	if c.ResultType == nil {
		c.ResultType = reflect.TypeFor[T]()
	}

	d := e.BeforeCall(ctx, c)
	switch d.Kind {
	case SkipWithValue:
		if v, ok := d.Value.(T); ok {
			return v, nil
		}
		if d.Value == nil {
			var zero T
			return zero, nil
		}
		// Decoded into a different type than T; run the real call.
		e.logger.Warn("replayed value has unexpected type, proceeding",
			"operation", c.Name(),
			"type", reflect.TypeOf(d.Value).String(),
		)
		d = proceed()
	case SkipWithError:
		var zero T
		return zero, d.Err
	case SkipVoid:
		// BeforeCall never returns SkipVoid for a call with a result type.
		d = proceed()
	}

	v, err := fn(ctx)
	e.AfterCall(ctx, c, d, ir.OutcomeOf(v, err, false))
	return v, err
}

// InvokeVoid runs a void-shaped fn under the record/replay protocol.
// c.ResultType is ignored.
func InvokeVoid(ctx context.Context, e *Engine, c Call, fn func(context.Context) error) error {
	c.ResultType = nil

	d := e.BeforeCall(ctx, c)
	switch d.Kind {
	case SkipVoid:
		return nil
	case SkipWithError:
		return d.Err
	case SkipWithValue:
		d = proceed()
	}

	err := fn(ctx)
	e.AfterCall(ctx, c, d, ir.OutcomeOf(nil, err, true))
	return err
}
