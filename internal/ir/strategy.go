package ir

// Strategy tags the capture strategy that produced an operation.
// The tag is part of the operation identity: the same method captured by
// two strategies produces two distinct keys.
type Strategy string

const (
	// StrategyPackage is package-wide capture of public operations.
	// It carries no tag.
	StrategyPackage Strategy = ""

	// StrategyAnnotated is capture driven by an explicit opt-in marker
	// on the operation.
	StrategyAnnotated Strategy = "@UseObjectPhase"
)

// AnnotationType is the request attribute value recorded for annotated
// captures.
const AnnotationType = "UseObjectPhase"

// Request attribute names. These mirror the metadata written by earlier
// capture agents so artifacts stay comparable across tools.
const (
	AttrClassName      = "className"
	AttrMethodName     = "methodName"
	AttrParameterCount = "parameterCount"
	AttrAnnotationType = "annotationType"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyPackage, StrategyAnnotated:
		return true
	default:
		return false
	}
}

// String returns a readable name for logs.
func (s Strategy) String() string {
	if s == StrategyPackage {
		return "package"
	}
	return string(s)
}

// OperationName renders the dynamic operation name for a call:
// "Owner.operation", prefixed with "<tag>:" for tagged strategies.
func OperationName(owner, operation string, s Strategy) string {
	name := owner + "." + operation
	if s != StrategyPackage {
		return string(s) + ":" + name
	}
	return name
}
