package intercept

import (
	"context"
	"testing"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/store"
	"github.com/roach88/recap/internal/testutil"
)

type PaymentRequest struct {
	Amount int `json:"amount"`
}

type Payment struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

var (
	recordCtx = WithMode(context.Background(), Record)
	replayCtx = WithMode(context.Background(), Replay)
	inertCtx  = context.Background()
)

func processPaymentCall(amount int) Call {
	return Call{
		Owner:      "PaymentService",
		Operation:  "processPayment",
		Args:       []any{PaymentRequest{Amount: amount}},
		ResultType: ResultOf[Payment](),
	}
}

func logEventCall(msg string) Call {
	return Call{
		Owner:     "AuditLog",
		Operation: "logEvent",
		Args:      []any{msg},
	}
}

// newTestEngine returns an engine over a counting in-memory store.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *testutil.FaultyStore) {
	t.Helper()
	fs := testutil.NewFaultyStore(store.NewMemory())
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	return New(fs, codec.MustNew(), opts...), fs
}
