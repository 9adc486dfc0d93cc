// Package simulator runs the closed loop twice per tick: once on a plaintext
// reference state and once on a state carried by the arithmetic oracle, and
// reports the divergence between the two at every step.
package simulator

import (
	"errors"
	"fmt"
	"math"

	"Encrypted_DCMotor/controller"
	"Encrypted_DCMotor/oracle"
)

type State int

const (
	Running State = iota
	Converged
	TimedOut
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case TimedOut:
		return "timed out"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrStopped is returned by Step once the loop has reached a terminal state.
var ErrStopped = errors.New("sim: loop already stopped")

// Step is one emitted row of the trace.
type Step struct {
	Time            float64
	PlaintextOutput float64
	OracleOutput    float64
	Error           float64
	Input           float64
}

type Result struct {
	State     State
	Steps     int
	FinalTime float64
	// Last is the last emitted step, zero if none was.
	Last Step
	// TrackingError is |oracle output - target| at the last step.
	TrackingError float64
	// Refreshes counts re-encryptions of an exhausted homomorphic state.
	Refreshes int
}

type Simulator struct {
	cfg  Config
	ctrl controller.Controller

	state State
	err   error
	k     int

	x       []float64
	zero    []float64
	carrier carrier
	last    Step
}

// New starts both paths at the zero state. The controller is fed the
// plaintext output and drives both paths with the same input.
func New(o *oracle.Oracle, ctrl controller.Controller, cfg Config) (*Simulator, error) {
	if o == nil || ctrl == nil {
		return nil, errors.New("sim: nil oracle or controller")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Scale == 0 {
		cfg.Scale = o.DefaultScale()
	}

	n := cfg.Model.StateDim()
	x0 := make([]float64, n)

	var (
		c   carrier
		err error
	)
	switch cfg.Mode {
	case ShadowState:
		c, err = newShadowCarrier(o, cfg.Model, cfg.Dt, cfg.Scale, x0)
	case Homomorphic:
		c, err = newHomomorphicCarrier(o, cfg.Model, cfg.Dt, cfg.Scale, x0, cfg.RefreshOnExhaustion)
	}
	if err != nil {
		return nil, fmt.Errorf("sim: initial state: %w", err)
	}

	return &Simulator{
		cfg:     cfg,
		ctrl:    ctrl,
		state:   Running,
		x:       make([]float64, n),
		zero:    make([]float64, cfg.Model.InputDim()),
		carrier: c,
	}, nil
}

func (s *Simulator) State() State { return s.state }

// Time is the simulated time at the start of the next step.
func (s *Simulator) Time() float64 { return float64(s.k) * s.cfg.Dt }

// PlaintextState is a copy of the reference state.
func (s *Simulator) PlaintextState() []float64 { return append([]float64(nil), s.x...) }

// Step runs one iteration of the loop. An oracle error is fatal: it is
// returned by this and every later call.
func (s *Simulator) Step() (Step, error) {
	if s.err != nil {
		return Step{}, s.err
	}
	if s.state != Running {
		return Step{}, ErrStopped
	}

	t := s.Time()

	y := s.cfg.Model.Output(s.x, s.zero)[0]
	u := []float64{s.ctrl.Input(y)}

	s.x = s.cfg.Model.Step(s.x, u, s.cfg.Dt)
	yPlain := s.cfg.Model.Output(s.x, u)[0]

	if err := s.carrier.advance(u); err != nil {
		s.err = fmt.Errorf("sim: step %d (t=%.2f): %w", s.k, t, err)
		return Step{}, s.err
	}
	xo, err := s.carrier.state()
	if err != nil {
		s.err = fmt.Errorf("sim: step %d (t=%.2f): %w", s.k, t, err)
		return Step{}, s.err
	}
	yOracle := s.cfg.Model.Output(xo, u)[0]

	step := Step{
		Time:            t,
		PlaintextOutput: yPlain,
		OracleOutput:    yOracle,
		Error:           math.Abs(yOracle - yPlain),
		Input:           u[0],
	}
	s.last = step
	s.k++

	switch {
	case yPlain >= s.cfg.Target:
		s.state = Converged
	case s.Time() >= s.cfg.MaxSimTime-1e-9*s.cfg.Dt:
		s.state = TimedOut
	}
	return step, nil
}

// Run steps until a terminal state, handing every step to emit. An error
// from emit stops the loop and is returned as is.
func (s *Simulator) Run(emit func(Step) error) (Result, error) {
	for s.state == Running {
		step, err := s.Step()
		if err != nil {
			return s.Result(), err
		}
		if emit == nil {
			continue
		}
		if err = emit(step); err != nil {
			return s.Result(), err
		}
	}
	return s.Result(), nil
}

func (s *Simulator) Result() Result {
	r := Result{
		State:     s.state,
		Steps:     s.k,
		FinalTime: s.Time(),
		Last:      s.last,
		Refreshes: s.carrier.refreshes(),
	}
	if s.k > 0 {
		r.TrackingError = math.Abs(s.last.OracleOutput - s.cfg.Target)
	}
	return r
}
