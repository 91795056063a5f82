package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
	Key      string
	Owner    string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export artifacts as JSON lines",
		Long: `Write every artifact, in recording order, as one JSON object per line.
The output can be checked with 'recap validate'.

Examples:
  recap export --db ./recap.db > artifacts.jsonl
  recap export --db ./recap.db -o artifacts.jsonl --owner PaymentService`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "only artifacts with this key")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "only artifacts for this owner")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	ctx = commandContext(ctx)

	st, err := openDatabase(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	artifacts, err := st.List(ctx, store.ListFilter{Key: ir.Key(opts.Key), Owner: opts.Owner})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list artifacts", err)
	}

	if opts.Output != "" {
		if err := writeArtifactsFile(opts.Output, artifacts); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	} else if err := writeArtifacts(cmd.OutOrStdout(), artifacts); err != nil {
		return WrapExitError(ExitCommandError, "failed to write artifact", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Output != "" {
		if formatter.IsJSON() {
			return formatter.Success(map[string]any{"path": opts.Output, "artifacts": len(artifacts)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d artifacts to %s\n", len(artifacts), opts.Output)
		return nil
	}
	formatter.VerboseLog("exported %d artifacts", len(artifacts))
	return nil
}

// writeArtifacts writes one JSON line per artifact.
func writeArtifacts(w io.Writer, artifacts []ir.Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, a := range artifacts {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("write artifact %s: %w", a.ID, err)
		}
	}
	return nil
}

// writeArtifactsFile writes artifacts to path. A failed close is reported,
// since it may mean the data never reached the disk.
func writeArtifactsFile(path string, artifacts []ir.Artifact) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return writeArtifacts(f, artifacts)
}
