// Package chart renders simulation results as PNG plots.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/HarrisKClark/Genesim-sub001/internal/solver"
)

// ErrEmpty is returned for results with no series to draw
var ErrEmpty = errors.New("nothing to plot")

var (
	// Width of rendered images
	Width = 8 * vg.Inch

	// Height of rendered images
	Height = 5 * vg.Inch
)

// DefaultBins is the histogram bin count used when none is given
const DefaultBins = 40

// Render plots a result: flow cytometry results as histograms, all others as
// protein trajectories
func Render(r *solver.Result, title string) (*plot.Plot, error) {
	if r.Flow() {
		return Histogram(r, DefaultBins, title)
	}
	return Trajectories(r, title)
}

// Trajectories plots every protein's level over time, one line per protein.
// Inducer concentrations are drawn dashed.
func Trajectories(r *solver.Result, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "molecules"
	p.Legend.Top = true

	drawn := 0
	for i, s := range r.Proteins() {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		if err := addLine(p, label, r.Time, s.Values, i, false); err != nil {
			return nil, err
		}
		drawn++
	}
	for i, s := range r.Inducers {
		if err := addLine(p, s.Name, r.Time, s.Values, drawn+i, true); err != nil {
			return nil, err
		}
	}

	if drawn == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

func addLine(p *plot.Plot, label string, t, values []float64, i int, dashed bool) error {
	n := len(t)
	if len(values) < n {
		n = len(values)
	}
	if n == 0 {
		return nil
	}

	xys := make(plotter.XYs, 0, n)
	for j := 0; j < n; j++ {
		if !finite(t[j]) || !finite(values[j]) {
			continue
		}
		xys = append(xys, plotter.XY{X: t[j], Y: values[j]})
	}
	if len(xys) == 0 {
		return nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to plot %s: %w", label, err)
	}
	line.Color = plotutil.Color(i)
	line.Width = vg.Points(1.5)
	if dashed {
		line.Dashes = plotutil.Dashes(1)
	}

	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// Histogram plots the per-cell distribution of each protein in a flow result
func Histogram(r *solver.Result, bins int, title string) (*plot.Plot, error) {
	if r.FlowCytometry == nil {
		return nil, ErrEmpty
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	p := plot.New()
	p.Title.Text = title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%d cells", r.FlowCytometry.Runs)
	}
	p.X.Label.Text = "protein level"
	p.Y.Label.Text = "cells"

	drawn := 0
	for i, protein := range r.FlowCytometry.Proteins {
		values := make(plotter.Values, 0, len(protein.Values))
		for _, v := range protein.Values {
			if finite(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}

		h, err := plotter.NewHist(values, bins)
		if err != nil {
			return nil, fmt.Errorf("failed to bin %s: %w", protein.Label, err)
		}
		h.FillColor = plotutil.Color(i)
		h.LineStyle.Width = vg.Length(0)

		p.Add(h)
		p.Legend.Add(protein.Label, h)
		drawn++
	}

	if drawn == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

// WritePNG encodes the plot as a PNG of Width x Height
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// SavePNG renders a result to a PNG file at path
func SavePNG(path string, r *solver.Result, title string) error {
	p, err := Render(r, title)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WritePNG(f, p); err != nil {
		return err
	}
	return f.Close()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
