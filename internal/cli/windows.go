package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/pwmfft/dsp/window"
)

func newWindowsCommand() *cobra.Command {
	var (
		size     int
		periodic bool
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "windows [window-name ...]",
		Short: "Print spectral properties of the analysis windows",
		Long: `Prints coherent gain, equivalent noise bandwidth, 3 dB bandwidth, highest
sidelobe and scallop loss of the selectable analysis windows. Without
arguments every window is listed.`,
		Example: `  pwmfft windows
  pwmfft windows --size 4096 --periodic hann flat-top
  pwmfft windows --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range window.Names() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			}
			if size < 2 {
				return fmt.Errorf("window size must be >= 2: %d", size)
			}

			names := args
			if len(names) == 0 {
				names = window.Names()
			}
			types := make([]window.Type, 0, len(names))
			for _, name := range names {
				t, err := window.Parse(name)
				if err != nil {
					return err
				}
				types = append(types, t)
			}

			var opts []window.Option
			if periodic {
				opts = append(opts, window.WithPeriodic())
			}
			return printWindowTable(cmd.OutOrStdout(), types, size, opts)
		},
	}

	cmd.Flags().IntVar(&size, "size", 1024, "window length in samples")
	cmd.Flags().BoolVar(&periodic, "periodic", false, "use the periodic (FFT) form used by the analysis")
	cmd.Flags().BoolVar(&list, "list", false, "list window names only")
	return cmd
}

func printWindowTable(w io.Writer, types []window.Type, size int, opts []window.Option) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"Window", "Size", "Coherent Gain", "ENBW [bins]", "BW 3dB [bins]", "Sidelobe [dB]", "Scallop [dB]"}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, t := range types {
		a := window.Analyze(window.Generate(t, size, opts...))
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\t%.4f\n",
			t, size, a.CoherentGain, a.ENBW, a.Bandwidth3dB, a.HighestSidelobedB, a.ScallopLossdB); err != nil {
			return err
		}
	}

	return tw.Flush()
}
