// Package plant is the continuous-time linear state-space model driven by the
// simulator, discretized with explicit Euler.
package plant

import (
	"errors"
	"fmt"
	"math"

	"github.com/CDSL-EncryptedControl/CDSL/utils"
)

// Model is dx/dt = A x + B u, y = C x + D u. A nil D means no feedthrough.
type Model struct {
	A [][]float64
	B [][]float64
	C [][]float64
	D [][]float64
}

// DCMotor is the two-state motor (speed, current) driven by a voltage.
func DCMotor() Model {
	return Model{
		A: [][]float64{
			{-10, 1},
			{-0.02, -2},
		},
		B: [][]float64{
			{0},
			{2},
		},
		C: [][]float64{
			{1, 0},
		},
		D: [][]float64{
			{0},
		},
	}
}

func (m Model) StateDim() int { return len(m.A) }

func (m Model) InputDim() int {
	if len(m.B) == 0 {
		return 0
	}
	return len(m.B[0])
}

func (m Model) OutputDim() int { return len(m.C) }

// Validate checks that the four matrices have consistent shapes and finite entries.
func (m Model) Validate() error {
	n, p, q := m.StateDim(), m.InputDim(), m.OutputDim()
	if n == 0 || p == 0 || q == 0 {
		return errors.New("plant: empty model")
	}

	check := func(name string, M [][]float64, rows, cols int) error {
		if len(M) != rows {
			return fmt.Errorf("plant: %s has %d rows, want %d", name, len(M), rows)
		}
		for i, row := range M {
			if len(row) != cols {
				return fmt.Errorf("plant: %s row %d has %d columns, want %d", name, i, len(row), cols)
			}
			for j, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("plant: %s[%d][%d] is %v", name, i, j, v)
				}
			}
		}
		return nil
	}

	if err := check("A", m.A, n, n); err != nil {
		return err
	}
	if err := check("B", m.B, n, p); err != nil {
		return err
	}
	if err := check("C", m.C, q, n); err != nil {
		return err
	}
	if m.D != nil {
		return check("D", m.D, q, p)
	}
	return nil
}

// Step advances x by one explicit Euler step: x + dt (A x + B u).
func (m Model) Step(x, u []float64, dt float64) []float64 {
	dx := utils.VecAdd(utils.MatVecMult(m.A, x), utils.MatVecMult(m.B, u))
	return utils.VecAdd(x, utils.ScalVecMult(dt, dx))
}

// Output is C x + D u.
func (m Model) Output(x, u []float64) []float64 {
	y := utils.MatVecMult(m.C, x)
	if m.D == nil {
		return y
	}
	return utils.VecAdd(y, utils.MatVecMult(m.D, u))
}

// Euler returns the discrete matrices of Step, x' = M x + N u with
// M = I + dt A and N = dt B.
func (m Model) Euler(dt float64) (M, N [][]float64) {
	n := m.StateDim()
	M = make([][]float64, n)
	N = make([][]float64, n)
	for i := 0; i < n; i++ {
		M[i] = utils.ScalVecMult(dt, append([]float64(nil), m.A[i]...))
		M[i][i] += 1
		N[i] = utils.ScalVecMult(dt, append([]float64(nil), m.B[i]...))
	}
	return
}
