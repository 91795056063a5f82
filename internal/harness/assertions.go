package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/recap/internal/ir"
)

// evaluate checks every assertion and returns failure messages.
func (h *Harness) evaluate(ctx context.Context, assertions []Assertion, result *Result) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.check(ctx, a, result); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return failures
}

func (h *Harness) check(ctx context.Context, a Assertion, result *Result) error {
	switch a.Type {
	case AssertArtifactCount:
		return h.assertArtifactCount(ctx, a)
	case AssertDecisions:
		return assertDecisions(result.Trace, a)
	case AssertExecuted:
		owner, operation, err := splitCall(a.Call)
		if err != nil {
			return err
		}
		name := ir.OperationName(owner, operation, strategyOf(a.Annotated))
		if got := h.executed[name]; got != a.Count {
			return fmt.Errorf("expected %s to run %d times, ran %d", name, a.Count, got)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) assertArtifactCount(ctx context.Context, a Assertion) error {
	owner, operation, err := splitCall(a.Call)
	if err != nil {
		return err
	}
	key, err := ir.BuildKey(owner, operation, strategyOf(a.Annotated))
	if err != nil {
		return err
	}

	all, err := h.artifacts(ctx)
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	got := 0
	for _, art := range all {
		if art.Key == key {
			got++
		}
	}
	if got != a.Count {
		return fmt.Errorf("expected %d artifacts for %s, found %d", a.Count, a.Call, got)
	}
	return nil
}

func assertDecisions(trace []TraceEvent, a Assertion) error {
	got := make([]string, len(trace))
	for i, event := range trace {
		got[i] = event.Decision
	}
	if !slices.Equal(got, a.Decisions) {
		return fmt.Errorf("expected decisions %v, got %v", a.Decisions, got)
	}
	return nil
}

func strategyOf(annotated bool) ir.Strategy {
	if annotated {
		return ir.StrategyAnnotated
	}
	return ir.StrategyPackage
}
