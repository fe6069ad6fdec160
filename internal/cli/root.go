// Package cli wires the pwmfft command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cwbudde/pwmfft/internal/config"
)

// rootOptions holds state shared by all subcommands.
type rootOptions struct {
	cfgFile string
}

// NewRootCommand builds the command tree. The bare command runs the batch
// like "pwmfft run".
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "pwmfft",
		Short: "Turn oscilloscope PWM captures into frequency-domain graph data",
		Long: `pwmfft reads every ASCII scope capture in the input directory, checks that it is
uniformly sampled, computes a window-corrected single-sided amplitude spectrum and
writes graph-ready tables, a metadata document and optional PNG graphs per file,
plus a run summary and THD table.

Settings come from built-in defaults, ./pwmfft.yaml (or --config), PWMFFT_*
environment variables and flags, each overriding the previous.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runBatch(cmd)
		},
	}

	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (default is ./pwmfft.yaml)")
	config.RegisterFlags(root.Flags())

	root.AddCommand(
		newRunCommand(o),
		newWindowsCommand(),
		newSynthCommand(),
	)

	return root
}

// Execute runs the command tree with args under ctx.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
