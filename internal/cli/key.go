package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/ir"
)

// KeyOptions holds flags for the key command.
type KeyOptions struct {
	*RootOptions
	Annotated bool
}

// KeyResult is the output of the key command.
type KeyResult struct {
	Key       ir.Key `json:"key"`
	Operation string `json:"operation"`
	Strategy  string `json:"strategy"`
}

// NewKeyCommand creates the key command.
func NewKeyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "key <owner> <operation>",
		Short: "Print the artifact key for an operation",
		Long: `Print the artifact key the engine derives for an owner and operation.

Examples:
  recap key PaymentService processPayment
  recap key PaymentService processPayment --annotated --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKey(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Annotated, "annotated", false, "use the @UseObjectPhase capture strategy")

	return cmd
}

func runKey(opts *KeyOptions, owner, operation string, cmd *cobra.Command) error {
	strategy := ir.StrategyPackage
	if opts.Annotated {
		strategy = ir.StrategyAnnotated
	}

	key, err := ir.BuildKey(owner, operation, strategy)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build key", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if formatter.IsJSON() {
		return formatter.Success(KeyResult{
			Key:       key,
			Operation: ir.OperationName(owner, operation, strategy),
			Strategy:  strategy.String(),
		})
	}

	formatter.VerboseLog("operation: %s", ir.OperationName(owner, operation, strategy))
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}
