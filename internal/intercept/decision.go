package intercept

import "fmt"

// DecisionKind tells the caller whether to run the real operation.
type DecisionKind int

const (
	// Proceed runs the real operation.
	Proceed DecisionKind = iota

	// SkipVoid skips a void-shaped operation. No value is supplied.
	SkipVoid

	// SkipWithValue skips the operation and supplies Decision.Value.
	SkipWithValue

	// SkipWithError skips the operation and supplies Decision.Err, a
	// *ReplayedError reconstructed from the recording.
	SkipWithError
)

func (k DecisionKind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case SkipVoid:
		return "skip-void"
	case SkipWithValue:
		return "skip-with-value"
	case SkipWithError:
		return "skip-with-error"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the result of BeforeCall.
type Decision struct {
	Kind  DecisionKind
	Value any   // Set for SkipWithValue; may be a zero value
	Err   error // Set for SkipWithError
}

// Skipped reports whether the caller must not run the real operation.
func (d Decision) Skipped() bool {
	return d.Kind != Proceed
}

func (d Decision) String() string {
	switch d.Kind {
	case SkipWithValue:
		return fmt.Sprintf("%s(%v)", d.Kind, d.Value)
	case SkipWithError:
		return fmt.Sprintf("%s(%v)", d.Kind, d.Err)
	default:
		return d.Kind.String()
	}
}

func proceed() Decision {
	return Decision{Kind: Proceed}
}
