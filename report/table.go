// Package report prints simulation traces and arithmetic comparisons to the
// console, and exports them as CSV and PNG.
package report

import (
	"fmt"
	"io"
	"strings"

	"Encrypted_DCMotor/simulator"
)

// Layout selects the fourth column of the trace table.
type Layout int

const (
	// ErrorLayout shows |Speed_enc - Speed_norm|.
	ErrorLayout Layout = iota
	// VoltageLayout shows the control input.
	VoltageLayout
)

var widths = [4]int{12, 22, 22, 22}

const ruleWidth = 78

type TableWriter struct {
	w      io.Writer
	layout Layout
}

func NewTableWriter(w io.Writer, layout Layout) *TableWriter {
	return &TableWriter{w: w, layout: layout}
}

func (t *TableWriter) WriteHeader() error {
	last := "Error"
	if t.layout == VoltageLayout {
		last = "Voltage"
	}
	cols := [4]string{"Time(s)", "Speed_enc", "Speed_norm", last}

	var b strings.Builder
	for i, c := range cols {
		b.WriteString(center(c, widths[i]))
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteByte('\n')

	_, err := io.WriteString(t.w, b.String())
	return err
}

// WriteStep is usable directly as the emit callback of simulator.Run.
func (t *TableWriter) WriteStep(s simulator.Step) error {
	var err error
	switch t.layout {
	case VoltageLayout:
		_, err = fmt.Fprintf(t.w, "%-12.2f%22.2f%22.2f%22.4f\n", s.Time, s.OracleOutput, s.PlaintextOutput, s.Input)
	default:
		_, err = fmt.Fprintf(t.w, "%-12.2f%22.12f%22.12f%s\n", s.Time, s.OracleOutput, s.PlaintextOutput, formatError(s.Error))
	}
	return err
}

func formatError(e float64) string {
	if e < 1e-6 {
		return fmt.Sprintf("%22.12e", e)
	}
	return fmt.Sprintf("%22.9f", e)
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
