package oracle

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// Literal is the user's choice of CKKS parameters.
// LogQ lists the bit sizes of the ciphertext modulus chain; its length minus
// one is the level budget (number of rescales) of a fresh ciphertext.
// LogP lists the bit sizes of the special primes used by relinearization.
type Literal struct {
	LogN            int
	LogQ            []int
	LogP            []int
	LogDefaultScale int
}

// DefaultLiteral is the reference configuration: N = 8192, chain {60, 40, 40}
// with one 60-bit special prime and scale 2^40. A fresh ciphertext can be
// rescaled twice.
func DefaultLiteral() Literal {
	return Literal{
		LogN:            13,
		LogQ:            []int{60, 40, 40},
		LogP:            []int{60},
		LogDefaultScale: 40,
	}
}

// DeepLiteral trades speed for a longer chain (eight rescales) so that the
// homomorphic state carrier refreshes less often.
func DeepLiteral() Literal {
	return Literal{
		LogN:            14,
		LogQ:            []int{60, 40, 40, 40, 40, 40, 40, 40, 40},
		LogP:            []int{61, 61},
		LogDefaultScale: 40,
	}
}

func (lit Literal) parameters() (ckks.Parameters, error) {
	if lit.LogN <= 0 || len(lit.LogQ) == 0 || lit.LogDefaultScale <= 0 {
		return ckks.Parameters{}, fmt.Errorf("%w: incomplete parameter literal %+v", ErrInvalidInput, lit)
	}

	params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
		LogN:            lit.LogN,
		LogQ:            lit.LogQ,
		LogP:            lit.LogP,
		LogDefaultScale: lit.LogDefaultScale,
	})
	if err != nil {
		return ckks.Parameters{}, fmt.Errorf("ckks parameters: %w", err)
	}
	return params, nil
}
