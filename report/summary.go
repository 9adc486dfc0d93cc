package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/CDSL-EncryptedControl/CDSL/utils"
	"github.com/montanaflynn/stats"

	"Encrypted_DCMotor/harness"
	"Encrypted_DCMotor/simulator"
)

type Summary struct {
	State         simulator.State
	Steps         int
	FinalTime     float64
	TrackingError float64
	Refreshes     int

	// Statistics of the per-step |oracle - plaintext| error.
	MeanError   float64
	MaxError    float64
	StdDevError float64
}

func Summarize(steps []simulator.Step, res simulator.Result) (Summary, error) {
	s := Summary{
		State:         res.State,
		Steps:         res.Steps,
		FinalTime:     res.FinalTime,
		TrackingError: res.TrackingError,
		Refreshes:     res.Refreshes,
	}
	if len(steps) == 0 {
		return s, nil
	}

	errs := make(stats.Float64Data, len(steps))
	for i, st := range steps {
		errs[i] = st.Error
	}

	var err error
	if s.MeanError, err = stats.Mean(errs); err != nil {
		return s, fmt.Errorf("mean error: %w", err)
	}
	if s.MaxError, err = stats.Max(errs); err != nil {
		return s, fmt.Errorf("max error: %w", err)
	}
	if s.StdDevError, err = stats.StandardDeviation(errs); err != nil {
		return s, fmt.Errorf("error deviation: %w", err)
	}
	return s, nil
}

func WriteSummary(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nLoop %s after %d steps (t = %.2f s)\n", s.State, s.Steps, s.FinalTime)
	fmt.Fprintf(&b, "Final error between encrypted speed and desired speed: %.12e\n", s.TrackingError)
	if s.Steps > 0 {
		fmt.Fprintf(&b, "Encryption error per step: mean %.6e, max %.6e, stddev %.6e\n", s.MeanError, s.MaxError, s.StdDevError)
	}
	if s.Refreshes > 0 {
		fmt.Fprintf(&b, "State re-encrypted %d times\n", s.Refreshes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// AveragePeriodMs is the mean duration of a control period in milliseconds.
func AveragePeriodMs(periods []time.Duration) float64 {
	if len(periods) == 0 {
		return 0
	}
	return utils.Average(utils.MatToVec(periodRows(periods)))
}

func periodRows(periods []time.Duration) [][]float64 {
	rows := make([][]float64, len(periods))
	for i, p := range periods {
		rows[i] = []float64{float64(p.Nanoseconds()) / 1000000}
	}
	return rows
}

// Labels name the three lines of a comparison block and their precision.
type Labels struct {
	Expected string
	Got      string
	Errors   string
	// ErrDigits is the number of digits of the errors in scientific notation.
	ErrDigits int
}

var (
	RoundTripLabels = Labels{Expected: "Original numbers:", Got: "Decrypted numbers:", Errors: "Errors:", ErrDigits: 6}
	OpLabels        = Labels{Expected: "Expected:", Got: "Homomorphic:", Errors: "Errors:", ErrDigits: 3}
)

func WriteComparison(w io.Writer, c harness.Comparison, l Labels) error {
	var b strings.Builder
	writeRow(&b, l.Expected, c.Expected, "%.10f")
	writeRow(&b, l.Got, c.Got, "%.10f")
	writeRow(&b, l.Errors, c.Errors, fmt.Sprintf("%%.%de", l.ErrDigits))
	fmt.Fprintf(&b, "(level %d, scale 2^%.2f)\n", c.Level, math.Log2(c.Scale))
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteNumbers prints one labelled vector, e.g. the demo operands.
func WriteNumbers(w io.Writer, label string, values []float64) error {
	var b strings.Builder
	writeRow(&b, label, values, "%.6f")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, label string, values []float64, format string) {
	b.WriteString(label)
	for _, v := range values {
		b.WriteByte(' ')
		fmt.Fprintf(b, format, v)
	}
	b.WriteByte('\n')
}
