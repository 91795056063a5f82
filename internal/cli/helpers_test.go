package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// seedArtifacts returns the artifacts written by createSeededDB, in order.
func seedArtifacts() []ir.Artifact {
	return []ir.Artifact{
		{
			ID:  "art-0001",
			Key: ir.MustBuildKey("PaymentService", "processPayment", ir.StrategyPackage),
			Request: ir.Request{
				Owner:         "PaymentService",
				Operation:     "processPayment",
				ArgumentCount: 1,
				Digest:        "digest-1",
				Body:          []byte(`[{"type":"intercept.PaymentRequest","value":{"amount":10}}]`),
				Attributes: map[string]string{
					"className": "PaymentService", "methodName": "processPayment", "parameterCount": "1",
				},
			},
			Response: ir.Response{Kind: ir.KindValue, Type: "intercept.Payment", Body: []byte(`{"id":1,"status":"OK"}`)},
		},
		{
			ID:  "art-0002",
			Key: ir.MustBuildKey("AuditLog", "logEvent", ir.StrategyAnnotated),
			Request: ir.Request{
				Owner:     "AuditLog",
				Operation: "logEvent",
				Strategy:  ir.StrategyAnnotated,
				Digest:    "digest-0",
				Attributes: map[string]string{
					"annotationType": "UseObjectPhase", "className": "AuditLog", "methodName": "logEvent", "parameterCount": "0",
				},
			},
			Response: ir.Response{Kind: ir.KindVoid},
		},
		{
			ID:  "art-0003",
			Key: ir.MustBuildKey("PaymentService", "refund", ir.StrategyPackage),
			Request: ir.Request{
				Owner:     "PaymentService",
				Operation: "refund",
				Digest:    "digest-0",
				Attributes: map[string]string{
					"className": "PaymentService", "methodName": "refund", "parameterCount": "0",
				},
			},
			Response: ir.Response{Kind: ir.KindError, ErrorType: "*errors.errorString", ErrorMessage: "refund window closed"},
		},
	}
}

// createSeededDB creates a database holding seedArtifacts.
func createSeededDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	for _, a := range seedArtifacts() {
		a.Encoding = ir.Encoding{Format: "json", Compression: "none"}
		a.Version = ir.ArtifactVersion
		require.NoError(t, st.Create(context.Background(), a))
	}
	return dbPath
}

// createEmptyDB creates a database with the schema and no artifacts.
func createEmptyDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()
	return dbPath
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RECAP_DATABASE", filepath.Join(t.TempDir(), "unused.db"))

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
