package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// ArgView is one decoded argument.
type ArgView struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ShowResult is one artifact with its bodies decoded.
type ShowResult struct {
	ID         string            `json:"id"`
	Seq        int64             `json:"seq"`
	Key        ir.Key            `json:"key"`
	Operation  string            `json:"operation"`
	Attributes map[string]string `json:"attributes"`
	Arguments  []ArgView         `json:"arguments"`
	Kind       ir.Kind           `json:"kind"`
	Type       string            `json:"type,omitempty"`
	Value      any               `json:"value,omitempty"`
	Error      string            `json:"error,omitempty"`
	Encoding   ir.Encoding       `json:"encoding"`
	Version    string            `json:"version"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <artifact-id>",
		Short: "Show one artifact with decoded arguments and result",
		Long: `Show one artifact. Argument and response bodies are decoded with the
encoding recorded on the artifact.

Examples:
  recap show --db ./recap.db 0190f3a2-...
  recap show --db ./recap.db 0190f3a2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runShow(ctx context.Context, opts *ShowOptions, id string, cmd *cobra.Command) error {
	ctx = commandContext(ctx)

	st, err := openDatabase(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := st.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("artifact %q not found", id), nil)
		return NewExitError(ExitCommandError, "artifact not found")
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to get artifact", err)
	}

	result, err := describeArtifact(a)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode artifact", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return writeShowText(cmd.OutOrStdout(), result)
}

// describeArtifact decodes an artifact's bodies for display.
func describeArtifact(a ir.Artifact) (ShowResult, error) {
	c, err := codec.ForEncoding(a.Encoding)
	if err != nil {
		return ShowResult{}, err
	}

	args, err := c.DescribeArgs(a.Request.Body)
	if err != nil {
		return ShowResult{}, fmt.Errorf("arguments: %w", err)
	}
	views := make([]ArgView, len(args))
	for i, arg := range args {
		views[i] = ArgView{Type: arg.Type, Value: arg.Value}
	}

	result := ShowResult{
		ID:         a.ID,
		Seq:        a.Seq,
		Key:        a.Key,
		Operation:  ir.OperationName(a.Request.Owner, a.Request.Operation, a.Request.Strategy),
		Attributes: a.Request.Attributes,
		Arguments:  views,
		Kind:       a.Response.Kind,
		Type:       responseType(a.Response),
		Encoding:   a.Encoding,
		Version:    a.Version,
	}

	switch a.Response.Kind {
	case ir.KindValue:
		v, err := c.DecodeValue(a.Response.Body, nil)
		if err != nil {
			return ShowResult{}, fmt.Errorf("response: %w", err)
		}
		result.Value = v
	case ir.KindError:
		result.Error = a.Response.ErrorMessage
	}
	return result, nil
}

func writeShowText(w io.Writer, r ShowResult) error {
	fmt.Fprintf(w, "Artifact:  %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "Operation: %s\n", r.Operation)
	fmt.Fprintf(w, "Key:       %s\n", r.Key)
	fmt.Fprintf(w, "Encoding:  %s/%s (v%s)\n", r.Encoding.Format, r.Encoding.Compression, r.Version)

	fmt.Fprintf(w, "Arguments: %d\n", len(r.Arguments))
	for i, arg := range r.Arguments {
		fmt.Fprintf(w, "  [%d] %s = %s\n", i, arg.Type, compactJSON(arg.Value))
	}

	switch r.Kind {
	case ir.KindValue:
		fmt.Fprintf(w, "Result:    %s = %s\n", r.Type, compactJSON(r.Value))
	case ir.KindVoid:
		fmt.Fprintln(w, "Result:    void")
	case ir.KindError:
		fmt.Fprintf(w, "Error:     %s: %s\n", r.Type, r.Error)
	}
	return nil
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
