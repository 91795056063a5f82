package harness

// TraceEvent records what happened at one scenario step.
type TraceEvent struct {
	Step     int    `json:"step"`
	Mode     string `json:"mode"`
	Call     string `json:"call"`
	Decision string `json:"decision"`
	Executed bool   `json:"executed"`
	Value    string `json:"value,omitempty"` // Replayed value as compact JSON
	Error    string `json:"error,omitempty"` // Replayed error message
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
