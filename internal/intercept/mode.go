package intercept

import "context"

// Mode is the session state for one call. Recording and Replaying are
// independent flags; both false is the inert pass-through case.
type Mode struct {
	Recording bool
	Replaying bool
}

var (
	// Inert neither records nor replays.
	Inert = Mode{}

	// Record captures real calls.
	Record = Mode{Recording: true}

	// Replay substitutes recorded results.
	Replay = Mode{Replaying: true}
)

// Active reports whether either flag is set.
func (m Mode) Active() bool {
	return m.Recording || m.Replaying
}

func (m Mode) String() string {
	switch {
	case m.Recording && m.Replaying:
		return "record+replay"
	case m.Recording:
		return "record"
	case m.Replaying:
		return "replay"
	default:
		return "inert"
	}
}

// ModeSource reports the mode for a call. Engines call it once per hook
// and never cache the answer.
type ModeSource interface {
	Mode(ctx context.Context) Mode
}

// ModeFunc adapts a function to ModeSource.
type ModeFunc func(ctx context.Context) Mode

// Mode implements ModeSource.
func (f ModeFunc) Mode(ctx context.Context) Mode {
	return f(ctx)
}

// StaticMode always reports the same mode.
type StaticMode Mode

// Mode implements ModeSource.
func (s StaticMode) Mode(context.Context) Mode {
	return Mode(s)
}

type modeKey struct{}

// WithMode returns a context carrying m.
func WithMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, m)
}

// ModeFrom returns the mode carried on ctx, or Inert.
func ModeFrom(ctx context.Context) Mode {
	if ctx == nil {
		return Inert
	}
	m, _ := ctx.Value(modeKey{}).(Mode)
	return m
}

// ContextModeSource reads the mode set by WithMode.
type ContextModeSource struct{}

// Mode implements ModeSource.
func (ContextModeSource) Mode(ctx context.Context) Mode {
	return ModeFrom(ctx)
}

// FallbackMode reads the mode carried on the context and falls back to
// its own value when the context carries none.
type FallbackMode Mode

// Mode implements ModeSource.
func (f FallbackMode) Mode(ctx context.Context) Mode {
	if ctx != nil {
		if m, ok := ctx.Value(modeKey{}).(Mode); ok {
			return m
		}
	}
	return Mode(f)
}
