package intercept

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeFromContext(t *testing.T) {
	assert.Equal(t, Inert, ModeFrom(context.Background()))
	assert.Equal(t, Record, ModeFrom(WithMode(context.Background(), Record)))

	var src ModeSource = ContextModeSource{}
	assert.Equal(t, Replay, src.Mode(WithMode(context.Background(), Replay)))
	assert.Equal(t, Record, StaticMode(Record).Mode(context.Background()))
}

func TestFallbackMode(t *testing.T) {
	src := FallbackMode(Record)
	assert.Equal(t, Record, src.Mode(context.Background()))
	assert.Equal(t, Inert, src.Mode(WithMode(context.Background(), Inert)), "explicit context mode wins")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "inert", Inert.String())
	assert.Equal(t, "record", Record.String())
	assert.Equal(t, "replay", Replay.String())
	assert.Equal(t, "record+replay", Mode{Recording: true, Replaying: true}.String())
	assert.False(t, Inert.Active())
	assert.True(t, Replay.Active())
}

func TestDecisionSkipped(t *testing.T) {
	assert.False(t, Decision{Kind: Proceed}.Skipped())
	assert.True(t, Decision{Kind: SkipVoid}.Skipped())
	assert.True(t, Decision{Kind: SkipWithValue}.Skipped())
	assert.True(t, Decision{Kind: SkipWithError}.Skipped())
	assert.Equal(t, "skip-with-value(3)", Decision{Kind: SkipWithValue, Value: 3}.String())
}

func TestReplayedError(t *testing.T) {
	err := fmt.Errorf("charge: %w", &ReplayedError{Type: "*payments.DeclinedError", Message: "declined"})
	assert.True(t, IsReplayed(err))
	assert.False(t, IsReplayed(errors.New("x")))
	assert.Equal(t, "*payments.DeclinedError", errorTypeName(err))
	assert.Equal(t, "*errors.errorString", errorTypeName(errors.New("x")))
}
