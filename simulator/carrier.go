package simulator

import (
	"fmt"

	"Encrypted_DCMotor/oracle"
	"Encrypted_DCMotor/plant"
)

// carrier holds the oracle-side copy of the plant state.
type carrier interface {
	advance(u []float64) error
	state() ([]float64, error)
	refreshes() int
}

// shadowCarrier packs the whole state in one ciphertext and trusts a
// decryption at every tick.
type shadowCarrier struct {
	o     *oracle.Oracle
	model plant.Model
	dt    float64
	scale float64

	ct *oracle.Ciphertext
}

func newShadowCarrier(o *oracle.Oracle, model plant.Model, dt, scale float64, x0 []float64) (*shadowCarrier, error) {
	ct, err := o.EncryptValues(x0, scale)
	if err != nil {
		return nil, err
	}
	return &shadowCarrier{o: o, model: model, dt: dt, scale: scale, ct: ct}, nil
}

func (c *shadowCarrier) advance(u []float64) error {
	x, err := c.o.DecryptValues(c.ct)
	if err != nil {
		return err
	}
	ct, err := c.o.EncryptValues(c.model.Step(x, u, c.dt), c.scale)
	if err != nil {
		return err
	}
	c.ct = ct
	return nil
}

func (c *shadowCarrier) state() ([]float64, error) {
	return c.o.DecryptValues(c.ct)
}

func (c *shadowCarrier) refreshes() int { return 0 }

// homomorphicCarrier keeps one ciphertext per state component and the
// entries of M = I + dt A encrypted, so that
//
//	x_i' = sum_j M_ij x_j + (N u)_i
//
// is evaluated with MulRelinRescale and Add. Every tick costs one level.
type homomorphicCarrier struct {
	o       *oracle.Oracle
	N       [][]float64
	scale   float64
	refresh bool

	ctM [][]*oracle.Ciphertext
	ctX []*oracle.Ciphertext

	nRefresh int
}

func newHomomorphicCarrier(o *oracle.Oracle, model plant.Model, dt, scale float64, x0 []float64, refresh bool) (*homomorphicCarrier, error) {
	M, N := model.Euler(dt)
	n := model.StateDim()

	c := &homomorphicCarrier{
		o:       o,
		N:       N,
		scale:   scale,
		refresh: refresh,
		ctM:     make([][]*oracle.Ciphertext, n),
		ctX:     make([]*oracle.Ciphertext, n),
	}

	var err error
	for i := 0; i < n; i++ {
		c.ctM[i] = make([]*oracle.Ciphertext, n)
		for j := 0; j < n; j++ {
			if c.ctM[i][j], err = o.EncryptValues([]float64{M[i][j]}, scale); err != nil {
				return nil, fmt.Errorf("encrypt M[%d][%d]: %w", i, j, err)
			}
		}
		if c.ctX[i], err = o.EncryptValues([]float64{x0[i]}, scale); err != nil {
			return nil, fmt.Errorf("encrypt x[%d]: %w", i, err)
		}
	}
	return c, nil
}

func (c *homomorphicCarrier) advance(u []float64) error {
	if c.refresh && c.ctX[0].Level() == 0 {
		if err := c.reencrypt(); err != nil {
			return err
		}
	}

	next := make([]*oracle.Ciphertext, len(c.ctX))
	for i := range c.ctM {
		var acc *oracle.Ciphertext
		for j := range c.ctX {
			p, err := c.o.MulRelinRescale(c.ctM[i][j], c.ctX[j])
			if err != nil {
				return fmt.Errorf("M[%d][%d] x[%d]: %w", i, j, j, err)
			}
			if acc == nil {
				acc = p
				continue
			}
			if acc, err = c.o.Add(acc, p); err != nil {
				return fmt.Errorf("x'[%d]: %w", i, err)
			}
		}

		b := 0.0
		for k := range u {
			b += c.N[i][k] * u[k]
		}
		// the input term is encrypted fresh at the scale the products landed on
		ctB, err := c.o.EncryptValues([]float64{b}, acc.Scale())
		if err != nil {
			return fmt.Errorf("(N u)[%d]: %w", i, err)
		}
		if next[i], err = c.o.Add(acc, ctB); err != nil {
			return fmt.Errorf("x'[%d]: %w", i, err)
		}
	}
	c.ctX = next
	return nil
}

func (c *homomorphicCarrier) state() ([]float64, error) {
	x := make([]float64, len(c.ctX))
	for i, ct := range c.ctX {
		v, err := c.o.DecryptValues(ct)
		if err != nil {
			return nil, err
		}
		x[i] = v[0]
	}
	return x, nil
}

// reencrypt stands in for bootstrapping: the state goes back to the top of
// the chain at the configured scale.
func (c *homomorphicCarrier) reencrypt() error {
	x, err := c.state()
	if err != nil {
		return err
	}
	for i := range x {
		if c.ctX[i], err = c.o.EncryptValues([]float64{x[i]}, c.scale); err != nil {
			return err
		}
	}
	c.nRefresh++
	return nil
}

func (c *homomorphicCarrier) refreshes() int { return c.nRefresh }
