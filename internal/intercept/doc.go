// Package intercept implements the record/replay interception protocol.
//
// A caller that can wrap an operation with before and after hooks drives
// an Engine:
//
//	d := engine.BeforeCall(ctx, call)
//	if !d.Skipped() {
//	    // run the real operation
//	}
//	engine.AfterCall(ctx, call, d, outcome)
//
// Invoke and InvokeVoid run that sequence for a Go function.
//
// The engine never lets a store or codec failure reach the caller. Before
// a call such failures downgrade to Proceed. After a call the record is
// dropped. Both are logged. Errors returned by the real operation pass
// through unchanged.
//
// The record/replay mode is read per call from a ModeSource. The default
// source reads a Mode carried on the context (see WithMode).
package intercept
