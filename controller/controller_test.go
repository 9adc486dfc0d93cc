package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstant(t *testing.T) {
	var c Controller = Constant{U0: 100}
	require.Equal(t, 100.0, c.Input(0))
	require.Equal(t, 100.0, c.Input(-42))
}

func TestPDFirstStep(t *testing.T) {
	c := NewPD(10, 50, 10, 0.05)

	terms := c.Update(0)
	require.Equal(t, 10.0, terms.Error)
	require.Equal(t, 0.0, terms.Derivative)
	require.Equal(t, 500.0, terms.U)
}

func TestPDDerivative(t *testing.T) {
	c := NewPD(10, 50, 10, 0.05)
	c.Update(0)

	terms := c.Update(2.5)
	require.InDelta(t, 7.5, terms.Error, 1e-12)
	require.InDelta(t, -50, terms.Derivative, 1e-9)
	require.InDelta(t, 50*7.5-500, terms.U, 1e-9)

	var ctrl Controller = c
	require.InDelta(t, 50*7.5, ctrl.Input(2.5), 1e-9)
}

func TestPDReset(t *testing.T) {
	c := NewPD(4, 1, 1, 0.1)
	c.Update(3)
	c.Reset()
	require.Equal(t, 0.0, c.Update(0).Derivative)
}
