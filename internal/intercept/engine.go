package intercept

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/ir"
)

// Engine runs the per-call record/replay protocol.
//
// Thread-safety: an Engine holds no mutable state after construction and
// is safe for concurrent use. The Store's own concurrency rules apply.
type Engine struct {
	store        storeClient
	codec        *codec.Codec
	modes        ModeSource
	logger       *slog.Logger
	ids          IDGenerator
	selector     *Selector
	replayErrors bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithModeSource sets where the per-call mode comes from.
// Default: ContextModeSource.
func WithModeSource(m ModeSource) Option {
	return func(e *Engine) {
		if m != nil {
			e.modes = m
		}
	}
}

// WithErrorReplay sets the policy for recorded errors. When true (the
// default) an error artifact replays as SkipWithError. When false it
// replays as Proceed and the real operation runs.
func WithErrorReplay(enabled bool) Option {
	return func(e *Engine) {
		e.replayErrors = enabled
	}
}

// WithIDGenerator sets how artifact IDs are assigned. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithSelector limits which calls are captured. Default: nil (capture all).
func WithSelector(s *Selector) Option {
	return func(e *Engine) {
		e.selector = s
	}
}

// New creates an Engine over store. A nil codec selects JSON without
// compression.
func New(store Store, c *codec.Codec, opts ...Option) *Engine {
	if c == nil {
		c = codec.MustNew()
	}
	e := &Engine{
		store:        storeClient{store: store},
		codec:        c,
		modes:        ContextModeSource{},
		logger:       slog.Default(),
		ids:          UUIDv7Generator{},
		replayErrors: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Captures reports whether the engine's selector admits c.
func (e *Engine) Captures(c Call) bool {
	return e.selector.Captures(c)
}

// BeforeCall decides whether the caller should run the real operation.
//
// Only replay mode can skip. A miss, a malformed artifact, or any store or
// codec failure returns Proceed. BeforeCall never panics.
func (e *Engine) BeforeCall(ctx context.Context, c Call) Decision {
	if !e.Captures(c) {
		return proceed()
	}
	if !e.modes.Mode(ctx).Replaying {
		return proceed()
	}

	d, err := e.replay(ctx, c)
	if err != nil {
		e.logger.Warn("replay failed, proceeding",
			"owner", c.Owner,
			"operation", c.Name(),
			"key", logKey(c),
			"error", err,
		)
		return proceed()
	}
	return d
}

// AfterCall records the outcome of a call that actually ran.
//
// It is a no-op when d skipped execution, when the mode is not recording,
// or when the selector rejects c. Failures are logged and dropped.
func (e *Engine) AfterCall(ctx context.Context, c Call, d Decision, o ir.Outcome) {
	if d.Skipped() {
		return
	}
	if !e.Captures(c) {
		return
	}
	if !e.modes.Mode(ctx).Recording {
		return
	}

	if err := e.record(ctx, c, o); err != nil {
		e.logger.Warn("record failed, dropping artifact",
			"owner", c.Owner,
			"operation", c.Name(),
			"key", logKey(c),
			"error", err,
		)
	}
}

func (e *Engine) replay(ctx context.Context, c Call) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = proceed(), recovered("replay", r)
		}
	}()

	desc := c.descriptor()
	key, err := desc.Key()
	if err != nil {
		return proceed(), fmt.Errorf("build key: %w", err)
	}
	args, err := e.codec.EncodeArgs(desc.Args)
	if err != nil {
		return proceed(), fmt.Errorf("encode arguments: %w", err)
	}

	a, ok, err := e.store.lookup(ctx, ir.Probe{Key: key, Digest: args.Digest})
	if err != nil {
		return proceed(), fmt.Errorf("lookup %s: %w", key.Short(), err)
	}
	if !ok {
		e.logger.Debug("replay miss", "operation", c.Name(), "key", key.Short())
		return proceed(), nil
	}

	d, err = e.decide(c, a)
	if err != nil {
		return proceed(), fmt.Errorf("artifact %s: %w", a.ID, err)
	}
	e.logger.Debug("replay hit",
		"operation", c.Name(),
		"key", key.Short(),
		"artifact", a.ID,
		"decision", d.Kind.String(),
	)
	return d, nil
}

// decide maps a recorded response onto a Decision. An artifact whose
// response does not fit the call's declared shape is malformed, not void.
func (e *Engine) decide(c Call, a ir.Artifact) (Decision, error) {
	if err := a.Response.Validate(); err != nil {
		return proceed(), err
	}

	switch a.Response.Kind {
	case ir.KindVoid:
		if !c.Void() {
			return proceed(), fmt.Errorf("%w: void response for operation returning %s", ir.ErrMalformed, c.ResultType)
		}
		return Decision{Kind: SkipVoid}, nil

	case ir.KindValue:
		if c.Void() {
			return proceed(), fmt.Errorf("%w: value response for void operation", ir.ErrMalformed)
		}
		dec, err := codec.ForEncoding(a.Encoding)
		if err != nil {
			return proceed(), err
		}
		v, err := dec.DecodeValue(a.Response.Body, c.ResultType)
		if err != nil {
			return proceed(), err
		}
		return Decision{Kind: SkipWithValue, Value: v}, nil

	case ir.KindError:
		if !e.replayErrors {
			return proceed(), nil
		}
		return Decision{
			Kind: SkipWithError,
			Err:  &ReplayedError{Type: a.Response.ErrorType, Message: a.Response.ErrorMessage},
		}, nil
	}
	return proceed(), fmt.Errorf("%w: unknown response kind %q", ir.ErrMalformed, a.Response.Kind)
}

func (e *Engine) record(ctx context.Context, c Call, o ir.Outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("record", r)
		}
	}()

	desc := c.descriptor()
	if err := desc.Complete(o); err != nil {
		return err
	}
	key, err := desc.Key()
	if err != nil {
		return fmt.Errorf("build key: %w", err)
	}
	args, err := e.codec.EncodeArgs(desc.Args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	resp, err := e.response(c, o)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	a := ir.Artifact{
		ID:  e.ids.Generate(),
		Key: key,
		Request: ir.Request{
			Owner:         c.Owner,
			Operation:     c.Operation,
			Strategy:      c.Strategy,
			ArgumentCount: args.Count,
			Digest:        args.Digest,
			Body:          args.Body,
			Attributes:    desc.Attributes(),
		},
		Response: resp,
		Encoding: e.codec.Encoding(),
		Version:  ir.ArtifactVersion,
	}
	if err := e.store.create(ctx, a); err != nil {
		return fmt.Errorf("create %s: %w", key.Short(), err)
	}

	e.logger.Debug("recorded",
		"operation", c.Name(),
		"key", key.Short(),
		"artifact", a.ID,
		"kind", string(resp.Kind),
	)
	return nil
}

// response encodes o. The response kind follows the operation's declared
// shape in both directions: a void-shaped operation records void even if a
// value was passed, and a value-shaped one never records void.
func (e *Engine) response(c Call, o ir.Outcome) (ir.Response, error) {
	switch o := o.(type) {
	case ir.Failed:
		if o.Err == nil {
			return ir.Response{}, errors.New("failed outcome without error")
		}
		return ir.Response{
			Kind:         ir.KindError,
			ErrorType:    errorTypeName(o.Err),
			ErrorMessage: o.Err.Error(),
		}, nil

	case ir.VoidResult:
		if !c.Void() {
			// A value-shaped operation that completed without a value
			// records an empty value, replayed as the zero of ResultType.
			return ir.Response{Kind: ir.KindValue, Type: c.ResultType.String()}, nil
		}
		return ir.Response{Kind: ir.KindVoid}, nil

	case ir.Returned:
		if c.Void() {
			return ir.Response{Kind: ir.KindVoid}, nil
		}
		p, err := e.codec.EncodeValue(o.Value)
		if err != nil {
			return ir.Response{}, err
		}
		typ := p.Type
		if typ == "" {
			typ = c.ResultType.String()
		}
		return ir.Response{Kind: ir.KindValue, Type: typ, Body: p.Body}, nil
	}
	return ir.Response{}, fmt.Errorf("unsupported outcome %T", o)
}

// logKey is the short key of c for log attributes, or "" when no key can
// be derived.
func logKey(c Call) string {
	key, err := ir.BuildKey(c.Owner, c.Operation, c.Strategy)
	if err != nil {
		return ""
	}
	return key.Short()
}
