// Package controller computes the plant input from the measured output.
package controller

// Controller turns the current plant output into the next plant input.
type Controller interface {
	Input(output float64) float64
}

// Constant is the open-loop controller: it always applies U0.
type Constant struct {
	U0 float64
}

func (c Constant) Input(float64) float64 { return c.U0 }

// Terms is the breakdown of one PD update.
type Terms struct {
	Error      float64
	Derivative float64
	U          float64
}

// PD is a proportional-derivative controller tracking Target.
type PD struct {
	Target float64
	Kp     float64
	Kd     float64
	Dt     float64

	prevError float64
}

// NewPD assumes the plant starts at rest, so the first derivative term is zero
// when the first measured output is zero.
func NewPD(target, kp, kd, dt float64) *PD {
	c := &PD{Target: target, Kp: kp, Kd: kd, Dt: dt}
	c.Reset()
	return c
}

// Reset seeds the previous error with the error of a plant at rest.
func (c *PD) Reset() {
	c.prevError = c.Target - 0
}

// Update computes u = Kp e + Kd de/dt and remembers e for the next call.
func (c *PD) Update(output float64) Terms {
	e := c.Target - output
	d := (e - c.prevError) / c.Dt
	c.prevError = e
	return Terms{Error: e, Derivative: d, U: c.Kp*e + c.Kd*d}
}

func (c *PD) Input(output float64) float64 {
	return c.Update(output).U
}
