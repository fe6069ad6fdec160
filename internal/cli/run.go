package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwbudde/pwmfft/batch"
	"github.com/cwbudde/pwmfft/internal/config"
	"github.com/cwbudde/pwmfft/internal/logging"
	"github.com/cwbudde/pwmfft/report"
)

func newRunCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze every capture in the input directory",
		Long: `Analyzes every capture file in the input directory. A file that cannot be
parsed, is irregularly sampled or cannot be written is recorded in the summary
and the run continues; the exit status is non-zero only when the run itself
cannot proceed (missing input directory, bad configuration, summary write
failure) or is interrupted.`,
		Example: `  # ./csv into ./output by default
  pwmfft run

  # Flat-top window, Parquet tables and graphs zoomed to 2 kHz
  pwmfft run -i captures -o spectra --window flat-top --format parquet --render --plot-max-hz 2000

  # Pin the fundamental for THD and reconstruct the 40-60 Hz band
  pwmfft run --fundamental 49.994 --band-min 40 --band-max 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runBatch(cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func (o *rootOptions) runBatch(cmd *cobra.Command) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(v, o.cfgFile)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	bc, err := cfg.Batch()
	if err != nil {
		return err
	}

	runner, err := batch.NewRunner(bc, batch.WithLogger(log))
	if err != nil {
		return err
	}

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed, %d skipped; summary written to %s\n",
		summary.Succeeded, summary.Failed, summary.Skipped, filepath.Join(bc.Output.Dir, report.SummaryFile))
	return err
}
