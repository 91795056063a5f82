package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/intercept"
	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
	"github.com/roach88/recap/internal/testutil"
)

// anyType is the result type for value-returning steps. Replayed values
// decode into their untyped form.
var anyType = reflect.TypeFor[any]()

// Harness executes one scenario.
type Harness struct {
	engine    *intercept.Engine
	artifacts func(context.Context) ([]ir.Artifact, error)
	executed  map[string]int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh store: a Memory store, or a SQLite
// database in a temporary directory that is removed afterwards.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	var matchOpts []store.Option
	if scenario.Match != "" {
		m, err := store.ParseMatchMode(scenario.Match)
		if err != nil {
			return nil, err
		}
		matchOpts = append(matchOpts, store.WithMatchMode(m))
	}

	var (
		backend   intercept.Store
		artifacts func(context.Context) ([]ir.Artifact, error)
	)
	switch scenario.Store {
	case StoreSQLite:
		dir, err := os.MkdirTemp("", "recap-harness-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		defer os.RemoveAll(dir)

		st, err := store.Open(filepath.Join(dir, "harness.db"), matchOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
		backend = st
		artifacts = func(ctx context.Context) ([]ir.Artifact, error) {
			return st.List(ctx, store.ListFilter{})
		}
	default:
		mem := store.NewMemory(matchOpts...)
		backend = mem
		artifacts = func(context.Context) ([]ir.Artifact, error) {
			return mem.All(), nil
		}
	}

	c, err := scenarioCodec(scenario)
	if err != nil {
		return nil, err
	}

	opts := []intercept.Option{
		intercept.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		intercept.WithIDGenerator(testutil.NewFixedIDs()),
	}
	if scenario.ReplayErrors != nil {
		opts = append(opts, intercept.WithErrorReplay(*scenario.ReplayErrors))
	}

	h := &Harness{
		engine:    intercept.New(backend, c, opts...),
		artifacts: artifacts,
		executed:  make(map[string]int),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, msg := range h.evaluate(ctx, scenario.Assertions, result) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioCodec(s *Scenario) (*codec.Codec, error) {
	var opts []codec.Option
	if s.Format != "" {
		f, err := codec.ParseFormat(s.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codec.WithFormat(f))
	}
	if s.Compression != "" {
		comp, err := codec.ParseCompression(s.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codec.WithCompression(comp))
	}
	return codec.New(opts...)
}

// executeStep runs one call through BeforeCall, the simulated operation
// when the engine proceeds, and AfterCall.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	mode, err := parseMode(step.Mode)
	if err != nil {
		return err
	}
	call, err := stepCall(step)
	if err != nil {
		return err
	}
	ctx = intercept.WithMode(ctx, mode)

	d := h.engine.BeforeCall(ctx, call)
	event := TraceEvent{
		Step:     index,
		Mode:     mode.String(),
		Call:     call.Name(),
		Decision: d.Kind.String(),
	}

	switch {
	case !d.Skipped():
		event.Executed = true
		h.executed[call.Name()]++
		h.engine.AfterCall(ctx, call, d, stepOutcome(step))
	case d.Kind == intercept.SkipWithValue:
		data, err := json.Marshal(d.Value)
		if err != nil {
			return fmt.Errorf("render replayed value: %w", err)
		}
		event.Value = string(data)
	case d.Kind == intercept.SkipWithError:
		event.Error = d.Err.Error()
	}
	result.Trace = append(result.Trace, event)

	if step.Expect != "" && step.Expect != event.Decision {
		result.AddError(fmt.Sprintf("step %d (%s): expected decision %s, got %s",
			index, event.Call, step.Expect, event.Decision))
	}
	return nil
}

func stepCall(step Step) (intercept.Call, error) {
	owner, operation, err := splitCall(step.Call)
	if err != nil {
		return intercept.Call{}, err
	}
	c := intercept.Call{
		Owner:     owner,
		Operation: operation,
		Args:      step.Args,
	}
	if step.Annotated {
		c.Strategy = ir.StrategyAnnotated
	}
	if !step.Void {
		c.ResultType = anyType
	}
	return c, nil
}

// stepOutcome is what the real operation produces for step.
func stepOutcome(step Step) ir.Outcome {
	switch {
	case step.Fails != "":
		return ir.Failed{Err: errors.New(step.Fails)}
	case step.Void:
		return ir.Void()
	default:
		return ir.Returned{Value: step.Returns}
	}
}
