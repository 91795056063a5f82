package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyText(t *testing.T) {
	out, err := execute(t, "key", "PaymentService", "processPayment")
	require.NoError(t, err)
	assert.Equal(t, "2b0e46e3cf5a65cf4cd2e8ddb6ce4d0909475d32ebf0ef9400edbb33ef8d4077\n", out)
}

func TestKeyJSONAnnotated(t *testing.T) {
	out, err := execute(t, "key", "PaymentService", "processPayment", "--annotated", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   KeyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "73f36855ff6a22edf8950fbac3f0f017975c627f56946d6530a44990d330fe26", string(resp.Data.Key))
	assert.Equal(t, "@UseObjectPhase:PaymentService.processPayment", resp.Data.Operation)
}

func TestKeyRequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "key", "PaymentService")
	require.Error(t, err)
}

func TestListText(t *testing.T) {
	out, err := execute(t, "list", "--db", createSeededDB(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header plus three artifacts")
	assert.Contains(t, lines[0], "OPERATION")
	assert.Contains(t, lines[1], "PaymentService.processPayment")
	assert.Contains(t, lines[2], "@UseObjectPhase:AuditLog.logEvent")
	assert.Contains(t, lines[2], "void")
	assert.Contains(t, lines[3], "*errors.errorString")
}

func TestListJSONFilters(t *testing.T) {
	out, err := execute(t, "list", "--db", createSeededDB(t), "--owner", "PaymentService", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []ListEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "art-0001", resp.Data[0].ID)
	assert.Equal(t, "art-0003", resp.Data[1].ID)
}

func TestListKeys(t *testing.T) {
	out, err := execute(t, "list", "--db", createSeededDB(t), "--keys", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []KeyEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "@UseObjectPhase:AuditLog.logEvent", resp.Data[0].Operation)
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, "list", "--db", createEmptyDB(t))
	require.NoError(t, err)
	assert.Contains(t, out, "No artifacts found")
}

func TestListDatabaseFromConfig(t *testing.T) {
	db := createSeededDB(t)
	cfgPath := filepath.Join(t.TempDir(), "recap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\n"), 0o600))

	cmd := NewRootCommand()
	buf := &strings.Builder{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", "--config", cfgPath, "--limit", "1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "art-0001")
	assert.NotContains(t, buf.String(), "art-0002")
}

func TestListNonExistentDatabase(t *testing.T) {
	_, err := execute(t, "list", "--db", "/nonexistent/path/test.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShowText(t *testing.T) {
	out, err := execute(t, "show", "--db", createSeededDB(t), "art-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation: PaymentService.processPayment")
	assert.Contains(t, out, `[0] intercept.PaymentRequest = {"amount":10}`)
	assert.Contains(t, out, `Result:    intercept.Payment = {"id":1,"status":"OK"}`)
}

func TestShowVoidAndError(t *testing.T) {
	db := createSeededDB(t)

	out, err := execute(t, "show", "--db", db, "art-0002")
	require.NoError(t, err)
	assert.Contains(t, out, "Result:    void")

	out, err = execute(t, "show", "--db", db, "art-0003", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "refund window closed", resp.Data.Error)
	assert.Empty(t, resp.Data.Arguments)
}

func TestShowNotFound(t *testing.T) {
	out, err := execute(t, "show", "--db", createSeededDB(t), "missing")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E002]")
}

func TestExportGolden(t *testing.T) {
	out, err := execute(t, "export", "--db", createSeededDB(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export_artifacts", []byte(out))
}

func TestExportThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.jsonl")

	out, err := execute(t, "export", "--db", createSeededDB(t), "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 artifacts")

	out, err = execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 artifacts valid")
}

func TestValidateReportsInvalidLines(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "golden", "export_artifacts.golden"))
	require.NoError(t, err)
	bad := string(data) + `{"id":"x","key":"nope"}` + "\n"

	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	out, err := execute(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", "/nonexistent/file.jsonl")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommandsUseCommandContext(t *testing.T) {
	db := createSeededDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, args := range [][]string{
		{"list", "--db", db},
		{"show", "--db", db, "art-0001"},
		{"export", "--db", db},
	} {
		t.Run(args[0], func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(&strings.Builder{})
			cmd.SetArgs(args)

			err := cmd.ExecuteContext(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestExportOutputWriteFailure(t *testing.T) {
	err := writeArtifactsFile(t.TempDir(), seedArtifacts())
	require.Error(t, err, "a directory is not a writable file")

	if _, statErr := os.Stat("/dev/full"); statErr != nil {
		t.Skip("/dev/full not available")
	}
	_, err = execute(t, "export", "--db", createSeededDB(t), "-o", "/dev/full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write output file")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
