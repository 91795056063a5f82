package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
	Key      string
	Owner    string
	Limit    int
	Keys     bool
}

// ListEntry is one artifact row in list output.
type ListEntry struct {
	Seq       int64   `json:"seq"`
	ID        string  `json:"id"`
	Key       ir.Key  `json:"key"`
	Operation string  `json:"operation"`
	Arguments int     `json:"arguments"`
	Kind      ir.Kind `json:"kind"`
	Type      string  `json:"type,omitempty"`
}

// KeyEntry is one key row in list --keys output.
type KeyEntry struct {
	Key       ir.Key `json:"key"`
	Operation string `json:"operation"`
	Count     int    `json:"count"`
	LatestSeq int64  `json:"latest_seq"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded artifacts",
		Long: `List artifacts in recording order, or one line per key with --keys.

Examples:
  recap list --db ./recap.db
  recap list --db ./recap.db --owner PaymentService --limit 20
  recap list --db ./recap.db --keys --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "only artifacts with this key")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "only artifacts for this owner")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of artifacts (0 = all)")
	cmd.Flags().BoolVar(&opts.Keys, "keys", false, "summarize by key instead of listing artifacts")

	return cmd
}

func runList(ctx context.Context, opts *ListOptions, cmd *cobra.Command) error {
	ctx = commandContext(ctx)

	st, err := openDatabase(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Keys {
		keys, err := st.Keys(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list keys", err)
		}
		entries := make([]KeyEntry, len(keys))
		for i, k := range keys {
			entries[i] = KeyEntry{
				Key:       k.Key,
				Operation: ir.OperationName(k.Owner, k.Operation, k.Strategy),
				Count:     k.Count,
				LatestSeq: k.LatestSeq,
			}
		}
		if formatter.IsJSON() {
			return formatter.Success(entries)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tOPERATION\tCOUNT\tLATEST")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", e.Key.Short(), e.Operation, e.Count, e.LatestSeq)
		}
		return w.Flush()
	}

	artifacts, err := st.List(ctx, store.ListFilter{
		Key:   ir.Key(opts.Key),
		Owner: opts.Owner,
		Limit: opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list artifacts", err)
	}

	entries := make([]ListEntry, len(artifacts))
	for i, a := range artifacts {
		entries[i] = ListEntry{
			Seq:       a.Seq,
			ID:        a.ID,
			Key:       a.Key,
			Operation: ir.OperationName(a.Request.Owner, a.Request.Operation, a.Request.Strategy),
			Arguments: a.Request.ArgumentCount,
			Kind:      a.Response.Kind,
			Type:      responseType(a.Response),
		}
	}
	if formatter.IsJSON() {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No artifacts found")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tID\tKEY\tOPERATION\tARGS\tKIND\tTYPE")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.Seq, e.ID, e.Key.Short(), e.Operation, e.Arguments, e.Kind, e.Type)
	}
	return w.Flush()
}

// responseType is the type shown for a response: the value type, or the
// error type for failures.
func responseType(r ir.Response) string {
	if r.Kind == ir.KindError {
		return r.ErrorType
	}
	return r.Type
}

// openDatabase opens the SQLite store named by flagValue or the config.
func openDatabase(opts *RootOptions, flagValue string) (*store.SQLite, error) {
	path, err := opts.database(flagValue)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
