package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Encrypted_DCMotor/harness"
	"Encrypted_DCMotor/simulator"
)

func trace() []simulator.Step {
	return []simulator.Step{
		{Time: 0, OracleOutput: 0, PlaintextOutput: 0, Error: 2e-9, Input: 500},
		{Time: 0.05, OracleOutput: 5.0000001, PlaintextOutput: 5, Error: 1e-7, Input: 303.5},
		{Time: 0.1, OracleOutput: 8.25, PlaintextOutput: 8.2499, Error: 1e-4, Input: -12.25},
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableWriter(&buf, ErrorLayout).WriteHeader())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Len(t, lines[0], 12+22+22+22)
	require.Equal(t, "  Time(s)   ", lines[0][:12])
	require.Contains(t, lines[0], "Speed_enc")
	require.True(t, strings.HasSuffix(strings.TrimRight(lines[0], " "), "Error"))
	require.Equal(t, strings.Repeat("-", 78), lines[1])

	buf.Reset()
	require.NoError(t, NewTableWriter(&buf, VoltageLayout).WriteHeader())
	require.Contains(t, buf.String(), "Voltage")
	require.NotContains(t, buf.String(), "Error")
}

func TestErrorLayout(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriter(&buf, ErrorLayout)
	for _, s := range trace() {
		require.NoError(t, tw.WriteStep(s))
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "2.000000000000e-09")
	require.Contains(t, lines[1], "1.000000000000e-07")
	require.Contains(t, lines[2], "0.000100000")
	require.True(t, strings.HasPrefix(lines[1], "0.05        "))
	require.Contains(t, lines[1], "5.000000100000")
}

func TestVoltageLayout(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriter(&buf, VoltageLayout)
	for _, s := range trace() {
		require.NoError(t, tw.WriteStep(s))
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Contains(t, lines[0], "500.0000")
	require.Contains(t, lines[2], "8.25")
	require.Contains(t, lines[2], "-12.2500")
}

func TestSummary(t *testing.T) {
	steps := trace()
	res := simulator.Result{State: simulator.Converged, Steps: 3, FinalTime: 0.15, TrackingError: 1.75}

	s, err := Summarize(steps, res)
	require.NoError(t, err)
	require.InDelta(t, (2e-9+1e-7+1e-4)/3, s.MeanError, 1e-15)
	require.Equal(t, 1e-4, s.MaxError)
	require.Greater(t, s.StdDevError, 0.0)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	require.Contains(t, buf.String(), "Final error between encrypted speed and desired speed: 1.750000000000e+00")
	require.Contains(t, buf.String(), "converged after 3 steps")
	require.NotContains(t, buf.String(), "re-encrypted")

	empty, err := Summarize(nil, simulator.Result{})
	require.NoError(t, err)
	require.Zero(t, empty.MaxError)
}

func TestAveragePeriod(t *testing.T) {
	require.Zero(t, AveragePeriodMs(nil))
	avg := AveragePeriodMs([]time.Duration{2 * time.Millisecond, 4 * time.Millisecond})
	require.InDelta(t, 3, avg, 1e-9)
}

func TestWriteComparison(t *testing.T) {
	c := harness.Comparison{
		Expected: []float64{1.5, 2},
		Got:      []float64{1.5000000001, 2},
		Errors:   []float64{1e-10, 0},
		Level:    1,
		Scale:    1 << 40,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, c, OpLabels))
	out := buf.String()
	require.Contains(t, out, "Expected: 1.5000000000 2.0000000000\n")
	require.Contains(t, out, "Homomorphic: 1.5000000001 2.0000000000\n")
	require.Contains(t, out, "Errors: 1.000e-10 0.000e+00\n")
	require.Contains(t, out, "(level 1, scale 2^40.00)")

	buf.Reset()
	require.NoError(t, WriteComparison(&buf, c, RoundTripLabels))
	require.Contains(t, buf.String(), "Errors: 1.000000e-10 0.000000e+00\n")
	require.Contains(t, buf.String(), "Decrypted numbers:")

	buf.Reset()
	require.NoError(t, WriteNumbers(&buf, "First numbers:", []float64{1, -2.5}))
	require.Equal(t, "First numbers: 1.000000 -2.500000\n", buf.String())
}

func TestTraceRows(t *testing.T) {
	rows := TraceRows(trace())
	require.Len(t, rows, 3)
	require.Equal(t, []float64{0.05, 5.0000001, 5, 1e-7, 303.5}, rows[1])
}

func TestPlotTrajectories(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, PlotTrajectories(&buf, nil))

	require.NoError(t, PlotTrajectories(&buf, trace()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestExportCSV(t *testing.T) {
	require.Error(t, ExportCSV(nil, filepath.Join(t.TempDir(), "none.csv")))

	missing := filepath.Join(t.TempDir(), "missing", "dir", "trace.csv")
	require.NotPanics(t, func() {
		require.Error(t, ExportCSV(trace(), missing))
	})

	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, ExportCSV(trace(), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestWritersReportErrors(t *testing.T) {
	require.ErrorIs(t, WriteNumbers(brokenWriter{}, "First numbers:", []float64{1}), os.ErrClosed)
	require.ErrorIs(t, WriteComparison(brokenWriter{}, harness.Comparison{}, OpLabels), os.ErrClosed)
	require.ErrorIs(t, NewTableWriter(brokenWriter{}, ErrorLayout).WriteHeader(), os.ErrClosed)
}
