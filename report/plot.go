package report

import (
	"errors"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 4 * vg.Inch
)

var markerColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}

func renderPNG(r Result, build func(Result) (*plot.Plot, error)) func(io.Writer) error {
	return func(w io.Writer) error {
		p, err := build(r)
		if err != nil {
			return err
		}
		wt, err := p.WriterTo(plotWidth, plotHeight, "png")
		if err != nil {
			return err
		}
		_, err = wt.WriteTo(w)
		return err
	}
}

func waveformPlot(r Result) (*plot.Plot, error) {
	n := min(len(r.Trace.Time), len(r.Trace.Value))
	if n == 0 {
		return nil, errors.New("empty waveform")
	}

	pts := make(plotter.XYs, n)
	for i := range pts {
		pts[i].X = r.Trace.Time[i]
		pts[i].Y = r.Trace.Value[i]
	}

	p := plot.New()
	p.Title.Text = r.Stem + " waveform"
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = "amplitude [V]"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line)

	return p, nil
}

// spectrumPlot draws magnitude over frequency. A positive maxHz limits the
// axis and marks the harmonic rows inside it.
func spectrumPlot(maxHz float64) func(Result) (*plot.Plot, error) {
	return func(r Result) (*plot.Plot, error) {
		s := r.Spectrum
		n := s.Len()
		if maxHz > 0 {
			for n > 1 && s.Frequency[n-1] > maxHz {
				n--
			}
		}
		if n == 0 {
			return nil, errors.New("empty spectrum")
		}

		pts := make(plotter.XYs, n)
		for i := range pts {
			pts[i].X = s.Frequency[i]
			pts[i].Y = s.Magnitude[i]
		}

		p := plot.New()
		p.Title.Text = r.Stem + " spectrum"
		p.X.Label.Text = "frequency [Hz]"
		p.Y.Label.Text = "amplitude [V]"
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		p.Add(line)

		if maxHz <= 0 {
			return p, nil
		}
		p.Title.Text += " up to " + strconv.FormatFloat(maxHz, 'f', -1, 64) + " Hz"
		p.X.Min = 0
		p.X.Max = maxHz

		var marks plotter.XYs
		for _, h := range r.Harmonics.Harmonics {
			if h.Order > 0 && h.Frequency <= maxHz {
				marks = append(marks, plotter.XY{X: h.Frequency, Y: h.Magnitude})
			}
		}
		if len(marks) > 0 {
			sc, err := plotter.NewScatter(marks)
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Color = markerColor
			sc.GlyphStyle.Radius = vg.Points(3)
			p.Add(sc)
			p.Legend.Add("harmonics", sc)
			p.Legend.Top = true
		}

		return p, nil
	}
}

func harmonicsPlot(r Result) (*plot.Plot, error) {
	rows := r.Harmonics.Harmonics
	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, h := range rows {
		values[i] = h.ContentPct
		labels[i] = strconv.Itoa(h.Order)
	}

	p := plot.New()
	p.Title.Text = r.Stem + " harmonic content"
	p.X.Label.Text = "order"
	p.Y.Label.Text = "content [% of fundamental]"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Color = markerColor
	p.Add(bars)
	p.NominalX(labels...)

	return p, nil
}
