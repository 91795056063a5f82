package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeyDeterminism(t *testing.T) {
	k1, err := BuildKey("PaymentService", "processPayment", StrategyPackage)
	require.NoError(t, err)

	k2, err := BuildKey("PaymentService", "processPayment", StrategyPackage)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "BuildKey must be deterministic")
	assert.Len(t, string(k1), 64, "SHA-256 hex is 64 characters")
}

// The key is a durable contract: artifacts recorded by one process must be
// found by the next. These values must never change for v1.
func TestBuildKeyStableAcrossVersions(t *testing.T) {
	assert.Equal(t,
		Key("2b0e46e3cf5a65cf4cd2e8ddb6ce4d0909475d32ebf0ef9400edbb33ef8d4077"),
		MustBuildKey("PaymentService", "processPayment", StrategyPackage))
	assert.Equal(t,
		Key("73f36855ff6a22edf8950fbac3f0f017975c627f56946d6530a44990d330fe26"),
		MustBuildKey("PaymentService", "processPayment", StrategyAnnotated))
}

func TestBuildKeyChangesWithIdentity(t *testing.T) {
	base := MustBuildKey("PaymentService", "processPayment", StrategyPackage)

	assert.NotEqual(t, base, MustBuildKey("RefundService", "processPayment", StrategyPackage), "different owner")
	assert.NotEqual(t, base, MustBuildKey("PaymentService", "refund", StrategyPackage), "different operation")
	assert.NotEqual(t, base, MustBuildKey("PaymentService", "processPayment", StrategyAnnotated), "different strategy")
}

func TestBuildKeyNoBoundaryCollision(t *testing.T) {
	// "a.b" + "c" and "a" + "b.c" render the same operation name but are
	// different identities.
	k1 := MustBuildKey("a.b", "c", StrategyPackage)
	k2 := MustBuildKey("a", "b.c", StrategyPackage)
	assert.NotEqual(t, k1, k2)
}

func TestBuildKeyNFCNormalization(t *testing.T) {
	// "é" precomposed (U+00E9) vs decomposed (e + U+0301)
	composed := MustBuildKey("Caf\u00e9", "open", StrategyPackage)
	decomposed := MustBuildKey("Cafe\u0301", "open", StrategyPackage)
	assert.Equal(t, composed, decomposed)
}

func TestBuildKeyRejectsInvalidUTF8(t *testing.T) {
	_, err := BuildKey("Svc\xff", "op", StrategyPackage)
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = BuildKey("Svc", "op\xfe", StrategyPackage)
	require.ErrorIs(t, err, ErrInvalidIdentity)

	assert.Panics(t, func() { MustBuildKey("Svc\xfe", "op", StrategyPackage) })
}

func TestKeyShort(t *testing.T) {
	k := MustBuildKey("PaymentService", "processPayment", StrategyPackage)
	assert.Equal(t, "2b0e46e3cf5a", k.Short())
	assert.Equal(t, "abc", Key("abc").Short())
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "PaymentService.processPayment",
		OperationName("PaymentService", "processPayment", StrategyPackage))
	assert.Equal(t, "@UseObjectPhase:PaymentService.processPayment",
		OperationName("PaymentService", "processPayment", StrategyAnnotated))
}

func TestStrategyValid(t *testing.T) {
	assert.True(t, StrategyPackage.Valid())
	assert.True(t, StrategyAnnotated.Valid())
	assert.False(t, Strategy("@Other").Valid())
	assert.Equal(t, "package", StrategyPackage.String())
}
