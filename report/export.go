package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/CDSL-EncryptedControl/CDSL/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"Encrypted_DCMotor/simulator"
)

var errNoSteps = errors.New("report: empty trace")

// TraceRows flattens a trace into rows of
// time, oracle output, plaintext output, error, input.
func TraceRows(steps []simulator.Step) [][]float64 {
	rows := make([][]float64, len(steps))
	for i, s := range steps {
		rows[i] = []float64{s.Time, s.OracleOutput, s.PlaintextOutput, s.Error, s.Input}
	}
	return rows
}

// ExportCSV writes TraceRows to path. DataExport panics when it cannot
// create the file, so the target is checked first and a panic is returned
// as an error.
func ExportCSV(steps []simulator.Step, path string) (err error) {
	if len(steps) == 0 {
		return errNoSteps
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: csv: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report: csv: %v", r)
		}
	}()
	utils.DataExport(TraceRows(steps), path)
	return nil
}

// PlotTrajectories draws the two speed trajectories on top and the
// per-step error below, and writes the figure as PNG.
func PlotTrajectories(w io.Writer, steps []simulator.Step) error {
	if len(steps) == 0 {
		return errNoSteps
	}

	enc := make(plotter.XYs, len(steps))
	norm := make(plotter.XYs, len(steps))
	diff := make(plotter.XYs, len(steps))
	for k, s := range steps {
		enc[k].X, enc[k].Y = s.Time, s.OracleOutput
		norm[k].X, norm[k].Y = s.Time, s.PlaintextOutput
		diff[k].X, diff[k].Y = s.Time, s.Error
	}

	speed := plot.New()
	speed.Title.Text = "Motor Speed"
	speed.X.Label.Text = "time (s)"
	speed.Y.Label.Text = "speed (rad/s)"
	speed.Add(plotter.NewGrid())

	normLine, err := plotter.NewLine(norm)
	if err != nil {
		return fmt.Errorf("report: plaintext line: %w", err)
	}
	normLine.Color = color.RGBA{B: 255, A: 255}
	encLine, err := plotter.NewLine(enc)
	if err != nil {
		return fmt.Errorf("report: encrypted line: %w", err)
	}
	encLine.Color = color.RGBA{R: 255, A: 255}
	encLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	speed.Add(normLine, encLine)
	speed.Legend.Add("Speed_norm", normLine)
	speed.Legend.Add("Speed_enc", encLine)

	errPlot := plot.New()
	errPlot.Title.Text = "Encryption Error"
	errPlot.X.Label.Text = "time (s)"
	errPlot.Y.Label.Text = "|enc - norm|"
	errPlot.Add(plotter.NewGrid())
	lLine, lPoints, err := plotter.NewLinePoints(diff)
	if err != nil {
		return fmt.Errorf("report: error line: %w", err)
	}
	errPlot.Add(lLine, lPoints)

	plots := [][]*plot.Plot{{speed}, {errPlot}}

	img := vgimg.New(vg.Points(1000), vg.Points(700))
	dc := draw.New(img)
	t := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(30),
		PadBottom: vg.Points(30),
		PadLeft:   vg.Points(30),
		PadRight:  vg.Points(30),
	}
	canvases := plot.Align(plots, t, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("report: png: %w", err)
	}
	return nil
}
