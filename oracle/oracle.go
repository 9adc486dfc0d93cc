// Package oracle is an approximate homomorphic arithmetic oracle on top of
// the CKKS scheme of lattigo. It tracks the scale and level of every
// ciphertext it hands out and refuses operations that would silently
// corrupt them.
package oracle

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// ScaleTolerance is the relative difference under which two scales are
// considered equal by Add.
const ScaleTolerance = 1e-9

// KeyMaterial is generated once per Oracle and never leaves it.
type KeyMaterial struct {
	sk  *rlwe.SecretKey
	pk  *rlwe.PublicKey
	rlk *rlwe.RelinearizationKey
}

// Oracle owns one parameter set and its key material. It is not safe for
// concurrent use; independent runs each build their own.
type Oracle struct {
	params ckks.Parameters
	keys   KeyMaterial

	encoder   *ckks.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	evaluator *ckks.Evaluator
}

// Ciphertext is an encrypted vector bound to the Oracle that produced it.
type Ciphertext struct {
	ct    *rlwe.Ciphertext
	n     int
	owner *Oracle
}

func (c *Ciphertext) Len() int { return c.n }

func (c *Ciphertext) Scale() float64 { return c.ct.Scale.Float64() }

// Level is the number of rescales left before the ciphertext can no longer
// take part in a multiplication.
func (c *Ciphertext) Level() int { return c.ct.Level() }

func (c *Ciphertext) Degree() int { return c.ct.Degree() }

// New builds the parameters and generates the key material.
func New(lit Literal) (*Oracle, error) {
	params, err := lit.parameters()
	if err != nil {
		return nil, err
	}
	if params.MaxLevel() > 0 && params.LevelsConsumedPerRescaling() != 1 {
		return nil, fmt.Errorf("%w: scale 2^%d consumes %d levels per rescale", ErrInvalidInput,
			lit.LogDefaultScale, params.LevelsConsumedPerRescaling())
	}

	kgen := ckks.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	return &Oracle{
		params:    params,
		keys:      KeyMaterial{sk: sk, pk: pk, rlk: rlk},
		encoder:   ckks.NewEncoder(params),
		encryptor: ckks.NewEncryptor(params, pk),
		decryptor: ckks.NewDecryptor(params, sk),
		evaluator: ckks.NewEvaluator(params, rlwe.NewMemEvaluationKeySet(rlk)),
	}, nil
}

// MaxLevel is the level of a fresh ciphertext.
func (o *Oracle) MaxLevel() int { return o.params.MaxLevel() }

func (o *Oracle) Slots() int { return o.params.MaxSlots() }

func (o *Oracle) LogN() int { return o.params.LogN() }

func (o *Oracle) DefaultScale() float64 { return o.params.DefaultScale().Float64() }

// Encrypt uses the public key, so repeated calls on the same plaintext give
// different ciphertexts.
func (o *Oracle) Encrypt(pt *Plaintext) (*Ciphertext, error) {
	if pt == nil || pt.pt == nil {
		return nil, fmt.Errorf("%w: nil plaintext", ErrInvalidInput)
	}
	ct, err := o.encryptor.EncryptNew(pt.pt)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return &Ciphertext{ct: ct, n: pt.n, owner: o}, nil
}

func (o *Oracle) Decrypt(ct *Ciphertext) (*Plaintext, error) {
	if err := o.check(ct); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	return &Plaintext{pt: o.decryptor.DecryptNew(ct.ct), n: ct.n}, nil
}

// Add requires both operands at the same scale. The result keeps that scale,
// sits at the lower of the two levels and is as long as the shorter operand.
func (o *Oracle) Add(c1, c2 *Ciphertext) (*Ciphertext, error) {
	if err := errors.Join(o.check(c1), o.check(c2)); err != nil {
		return nil, fmt.Errorf("%w: add: %w", ErrInvalidInput, err)
	}
	if !ScalesMatch(c1.Scale(), c2.Scale()) {
		return nil, fmt.Errorf("%w: add: 2^%.4f vs 2^%.4f", ErrScaleMismatch, math.Log2(c1.Scale()), math.Log2(c2.Scale()))
	}

	out, err := o.evaluator.AddNew(c1.ct, c2.ct)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return &Ciphertext{ct: out, n: min(c1.n, c2.n), owner: o}, nil
}

// MulRelinRescale multiplies slot-wise, relinearizes the degree-2 product
// back to degree 1 and rescales it, consuming exactly one level.
func (o *Oracle) MulRelinRescale(c1, c2 *Ciphertext) (*Ciphertext, error) {
	if err := errors.Join(o.check(c1), o.check(c2)); err != nil {
		return nil, fmt.Errorf("%w: mul: %w", ErrInvalidInput, err)
	}
	if c1.Level() == 0 || c2.Level() == 0 {
		return nil, fmt.Errorf("%w: mul at levels %d and %d", ErrLevelExhausted, c1.Level(), c2.Level())
	}

	out, err := o.evaluator.MulRelinNew(c1.ct, c2.ct)
	if err != nil {
		return nil, fmt.Errorf("mul: %w", err)
	}
	if err = o.evaluator.Rescale(out, out); err != nil {
		return nil, fmt.Errorf("rescale: %w", err)
	}
	return &Ciphertext{ct: out, n: min(c1.n, c2.n), owner: o}, nil
}

// EncryptValues chains Encode and Encrypt.
func (o *Oracle) EncryptValues(values []float64, scale float64) (*Ciphertext, error) {
	pt, err := o.Encode(values, scale)
	if err != nil {
		return nil, err
	}
	return o.Encrypt(pt)
}

// DecryptValues chains Decrypt and Decode.
func (o *Oracle) DecryptValues(ct *Ciphertext) ([]float64, error) {
	pt, err := o.Decrypt(ct)
	if err != nil {
		return nil, err
	}
	return o.Decode(pt)
}

func (o *Oracle) check(ct *Ciphertext) error {
	switch {
	case ct == nil || ct.ct == nil || ct.ct.MetaData == nil || len(ct.ct.Value) == 0:
		return errors.New("malformed ciphertext")
	case ct.owner != o:
		return errors.New("ciphertext belongs to another key set")
	case ct.Degree() != 1:
		return fmt.Errorf("ciphertext of degree %d", ct.Degree())
	}
	return nil
}

// ScalesMatch reports whether two scales agree within ScaleTolerance.
func ScalesMatch(s1, s2 float64) bool {
	return math.Abs(s1-s2) <= ScaleTolerance*math.Max(s1, s2)
}
