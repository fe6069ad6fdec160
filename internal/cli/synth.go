package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cwbudde/pwmfft/dsp/signal"
)

type synthOptions struct {
	freq    float64
	duty    float64
	low     float64
	high    float64
	rate    float64
	samples int
	noise   float64
	peak    float64
	jitter  float64
	seed    int64
}

func newSynthCommand() *cobra.Command {
	o := synthOptions{}

	cmd := &cobra.Command{
		Use:   "synth [file]",
		Short: "Write a synthetic PWM capture",
		Long: `Writes a PWM capture in the two-line-header CSV layout of a bench scope export,
for trying the pipeline without hardware. Noise and timestamp jitter are seeded,
so the same flags always produce the same file. The default file is
csv/synth.csv.`,
		Example: `  pwmfft synth
  pwmfft synth --freq 1000 --duty 0.3 --rate 1e6 --samples 100000 csv/pwm_1k.csv
  pwmfft synth --noise 0.05 --jitter 0.1 csv/noisy.csv
  pwmfft synth --low -1 --high 1 --peak 3.3 csv/bipolar.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join("csv", "synth.csv")
			if len(args) == 1 {
				path = args[0]
			}
			if err := o.write(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples of %g Hz PWM to %s\n", o.samples, o.freq, path)
			return err
		},
	}

	fs := cmd.Flags()
	fs.Float64Var(&o.freq, "freq", 50, "PWM frequency in Hz")
	fs.Float64Var(&o.duty, "duty", 0.5, "duty cycle in [0, 1]")
	fs.Float64Var(&o.low, "low", 0, "low level in V")
	fs.Float64Var(&o.high, "high", 5, "high level in V")
	fs.Float64Var(&o.rate, "rate", 100_000, "sample rate in Hz")
	fs.IntVar(&o.samples, "samples", 10_000, "number of samples")
	fs.Float64Var(&o.noise, "noise", 0, "peak white noise in V")
	fs.Float64Var(&o.peak, "peak", 0, "rescale the capture so its largest absolute sample is this many V (0 keeps levels)")
	fs.Float64Var(&o.jitter, "jitter", 0, "timestamp jitter as a fraction of the sample period, in [0, 0.5)")
	fs.Int64Var(&o.seed, "seed", 1, "random seed for noise and jitter")
	return cmd
}

func (o synthOptions) generate() (tm, values []float64, err error) {
	g, err := signal.NewGenerator(o.rate, signal.WithSeed(o.seed))
	if err != nil {
		return nil, nil, err
	}

	values, err = g.PWM(o.freq, o.duty, o.low, o.high, o.samples)
	if err != nil {
		return nil, nil, err
	}
	if o.noise > 0 {
		noise, err := g.WhiteNoise(o.noise, o.samples)
		if err != nil {
			return nil, nil, err
		}
		if err := signal.Mix(values, noise); err != nil {
			return nil, nil, err
		}
	}

	if o.peak < 0 {
		return nil, nil, fmt.Errorf("peak must be >= 0: %g", o.peak)
	}
	if o.peak > 0 {
		if values, err = signal.Normalize(values, o.peak); err != nil {
			return nil, nil, err
		}
	}

	tm, err = g.Time(o.samples, o.jitter)
	if err != nil {
		return nil, nil, err
	}
	return tm, values, nil
}

func (o synthOptions) write(path string) error {
	tm, values, err := o.generate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := writeCapture(f, tm, values); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeCapture(w io.Writer, tm, values []float64) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("x-axis,1\nsecond,Volt\n"); err != nil {
		return err
	}

	buf := make([]byte, 0, 64)
	for i := range tm {
		buf = strconv.AppendFloat(buf[:0], tm[i], 'g', -1, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, values[i], 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
