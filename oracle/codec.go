package oracle

import (
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// Plaintext is a vector of reals quantized at a fixed scale.
type Plaintext struct {
	pt *rlwe.Plaintext
	n  int
}

// Len is the number of meaningful slots; the remaining slots are zero padding.
func (p *Plaintext) Len() int { return p.n }

func (p *Plaintext) Scale() float64 { return p.pt.Scale.Float64() }

func (p *Plaintext) Level() int { return p.pt.Level() }

// Encode quantizes values at the given scale into a plaintext at the top of
// the modulus chain.
func (o *Oracle) Encode(values []float64, scale float64) (*Plaintext, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return nil, fmt.Errorf("%w: scale %v", ErrInvalidInput, scale)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrInvalidInput)
	}
	if len(values) > o.params.MaxSlots() {
		return nil, fmt.Errorf("%w: %d values exceed %d slots", ErrInvalidInput, len(values), o.params.MaxSlots())
	}

	maxAbs := 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: element %d is %v", ErrInvalidInput, i, v)
		}
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	// scale*|v| has to stay clear of the modulus or decoding wraps around
	if maxAbs > 0 && math.Log2(scale)+math.Log2(maxAbs)+1 >= float64(o.params.QBigInt().BitLen()) {
		return nil, fmt.Errorf("%w: |%v| at scale 2^%.1f overflows the modulus", ErrInvalidInput, maxAbs, math.Log2(scale))
	}

	pt := ckks.NewPlaintext(o.params, o.params.MaxLevel())
	pt.Scale = rlwe.NewScale(scale)
	if err := o.encoder.Encode(values, pt); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return &Plaintext{pt: pt, n: len(values)}, nil
}

// Decode is the approximate inverse of Encode and returns exactly pt.Len() values.
func (o *Oracle) Decode(pt *Plaintext) ([]float64, error) {
	if pt == nil || pt.pt == nil {
		return nil, fmt.Errorf("%w: nil plaintext", ErrInvalidInput)
	}

	values := make([]float64, o.params.MaxSlots())
	if err := o.encoder.Decode(pt.pt, values); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return values[:pt.n], nil
}

// Truncate cuts an interacting pair of vectors to their common length.
func Truncate(v1, v2 []float64) ([]float64, []float64) {
	n := min(len(v1), len(v2))
	return v1[:n], v2[:n]
}
