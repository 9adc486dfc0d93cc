package simulator

import (
	"fmt"
	"math"
	"strings"

	"Encrypted_DCMotor/plant"
)

// Mode selects how the encrypted side of the loop advances its state.
type Mode int

const (
	// ShadowState decrypts the carried state every tick, applies the Euler
	// update in the clear and re-encrypts the result.
	ShadowState Mode = iota
	// Homomorphic applies the Euler update inside the encrypted domain and
	// only decrypts to report the output.
	Homomorphic
)

func (m Mode) String() string {
	switch m {
	case ShadowState:
		return "shadow"
	case Homomorphic:
		return "homomorphic"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shadow":
		return ShadowState, nil
	case "homomorphic":
		return Homomorphic, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want shadow or homomorphic)", s)
}

type Config struct {
	Model plant.Model
	// Dt is the Euler step and the time increment of one iteration.
	Dt float64
	// MaxSimTime bounds runaway loops; it must be finite.
	MaxSimTime float64
	// Target is the output at or above which the loop has converged.
	Target float64
	// Scale used to encode the carried state; 0 means the oracle default.
	Scale float64
	Mode  Mode
	// RefreshOnExhaustion re-encrypts the homomorphic state at the top of
	// the chain once it runs out of levels. Without it the run fails.
	RefreshOnExhaustion bool
}

func DefaultConfig() Config {
	return Config{
		Model:               plant.DCMotor(),
		Dt:                  0.05,
		MaxSimTime:          100,
		Mode:                ShadowState,
		RefreshOnExhaustion: true,
	}
}

func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.Model.InputDim() != 1 {
		return fmt.Errorf("sim: controller drives one input, model has %d", c.Model.InputDim())
	}
	finitePositive := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }
	if !finitePositive(c.Dt) {
		return fmt.Errorf("sim: dt %v must be finite and positive", c.Dt)
	}
	if !finitePositive(c.MaxSimTime) {
		return fmt.Errorf("sim: max simulation time %v must be finite and positive", c.MaxSimTime)
	}
	if math.IsNaN(c.Target) || math.IsInf(c.Target, 0) {
		return fmt.Errorf("sim: target %v must be finite", c.Target)
	}
	if c.Scale < 0 || math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("sim: scale %v", c.Scale)
	}
	if c.Mode != ShadowState && c.Mode != Homomorphic {
		return fmt.Errorf("sim: %v", c.Mode)
	}
	return nil
}
