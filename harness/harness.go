// Package harness runs vectors through the oracle and measures how far the
// decrypted result lands from the plaintext computation.
package harness

import (
	"fmt"
	"math"

	"Encrypted_DCMotor/oracle"
)

type Comparison struct {
	Op       string
	Inputs   [][]float64
	Expected []float64
	Got      []float64
	Errors   []float64
	MaxError float64
	// Level and Scale of the ciphertext that was decrypted.
	Level int
	Scale float64
}

// RoundTrip is encode, encrypt, decrypt, decode.
func RoundTrip(o *oracle.Oracle, values []float64, scale float64) (Comparison, error) {
	ct, err := o.EncryptValues(values, scale)
	if err != nil {
		return Comparison{}, fmt.Errorf("round trip: %w", err)
	}
	return compare(o, "round trip", ct, [][]float64{values}, values)
}

// Add truncates both vectors to the shorter length and adds them encrypted.
func Add(o *oracle.Oracle, v1, v2 []float64, scale float64) (Comparison, error) {
	return binary(o, "addition", v1, v2, scale, o.Add, func(a, b float64) float64 { return a + b })
}

// Multiply truncates both vectors to the shorter length and multiplies them
// encrypted, with relinearization and rescaling.
func Multiply(o *oracle.Oracle, v1, v2 []float64, scale float64) (Comparison, error) {
	return binary(o, "multiplication", v1, v2, scale, o.MulRelinRescale, func(a, b float64) float64 { return a * b })
}

func binary(o *oracle.Oracle, op string, v1, v2 []float64, scale float64,
	eval func(c1, c2 *oracle.Ciphertext) (*oracle.Ciphertext, error), plain func(a, b float64) float64) (Comparison, error) {

	v1, v2 = oracle.Truncate(v1, v2)

	c1, err := o.EncryptValues(v1, scale)
	if err != nil {
		return Comparison{}, fmt.Errorf("%s: first operand: %w", op, err)
	}
	c2, err := o.EncryptValues(v2, scale)
	if err != nil {
		return Comparison{}, fmt.Errorf("%s: second operand: %w", op, err)
	}
	res, err := eval(c1, c2)
	if err != nil {
		return Comparison{}, fmt.Errorf("%s: %w", op, err)
	}

	want := make([]float64, len(v1))
	for i := range want {
		want[i] = plain(v1[i], v2[i])
	}
	return compare(o, op, res, [][]float64{v1, v2}, want)
}

func compare(o *oracle.Oracle, op string, ct *oracle.Ciphertext, inputs [][]float64, want []float64) (Comparison, error) {
	got, err := o.DecryptValues(ct)
	if err != nil {
		return Comparison{}, fmt.Errorf("%s: %w", op, err)
	}

	c := Comparison{
		Op:       op,
		Inputs:   inputs,
		Expected: want,
		Got:      got,
		Errors:   make([]float64, len(want)),
		Level:    ct.Level(),
		Scale:    ct.Scale(),
	}
	for i := range want {
		c.Errors[i] = math.Abs(want[i] - got[i])
		c.MaxError = math.Max(c.MaxError, c.Errors[i])
	}
	return c, nil
}
