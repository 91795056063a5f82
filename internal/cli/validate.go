package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Checked int                `json:"checked"`
	Errors  []schema.LineError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <artifacts.jsonl>",
		Short: "Check exported artifacts against the artifact schema",
		Long: `Check every line of a JSON lines export against the embedded artifact
JSON Schema. Exits 1 when any line is invalid.

Examples:
  recap export --db ./recap.db -o artifacts.jsonl
  recap validate artifacts.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	f, err := os.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot open %s", path), err.Error())
		return WrapExitError(ExitCommandError, "failed to open file", err)
	}
	defer f.Close()

	checked, failures, err := schema.ValidateLines(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read file", err)
	}

	result := ValidationResult{
		Valid:   len(failures) == 0,
		Checked: checked,
		Errors:  failures,
	}

	if result.Valid {
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d artifacts valid\n", checked)
		return nil
	}

	if formatter.IsJSON() {
		_ = formatter.Error(ErrCodeInvalid, "artifacts failed schema validation", result)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ %d of %d artifacts invalid\n", len(failures), checked)
		for _, e := range failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  line %d: %s\n", e.Line, e.Err)
		}
	}
	return NewExitError(ExitFailure, "validation failed")
}
