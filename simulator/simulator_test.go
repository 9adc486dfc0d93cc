package simulator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"Encrypted_DCMotor/controller"
	"Encrypted_DCMotor/oracle"
)

func newTestOracle(t *testing.T) *oracle.Oracle {
	t.Helper()
	o, err := oracle.New(oracle.DefaultLiteral())
	require.NoError(t, err)
	return o
}

func fixedInputConfig(target, maxTime float64) Config {
	cfg := DefaultConfig()
	cfg.Dt = 0.1
	cfg.Target = target
	cfg.MaxSimTime = maxTime
	return cfg
}

func collect(t *testing.T, sim *Simulator) ([]Step, Result) {
	t.Helper()
	var steps []Step
	res, err := sim.Run(func(s Step) error {
		steps = append(steps, s)
		return nil
	})
	require.NoError(t, err)
	return steps, res
}

func TestImmediateConvergence(t *testing.T) {
	o := newTestOracle(t)
	sim, err := New(o, controller.Constant{U0: 100}, fixedInputConfig(0, 100))
	require.NoError(t, err)

	steps, res := collect(t, sim)
	require.Len(t, steps, 1)
	require.Equal(t, Converged, res.State)
	require.Equal(t, 1, res.Steps)
	require.Equal(t, 0.0, steps[0].Time)

	_, err = sim.Step()
	require.ErrorIs(t, err, ErrStopped)
}

func TestTimesOutOnUnreachableTarget(t *testing.T) {
	o := newTestOracle(t)
	// the motor settles near 200/20.02 rad/s under 100 V
	sim, err := New(o, controller.Constant{U0: 100}, fixedInputConfig(50, 10))
	require.NoError(t, err)

	steps, res := collect(t, sim)
	require.Equal(t, TimedOut, res.State)
	require.InDelta(t, 10, res.FinalTime, 1e-9)
	require.Len(t, steps, 100)
	require.InDelta(t, 9.9, steps[len(steps)-1].Time, 1e-9)
	require.InDelta(t, 200/20.02, res.Last.PlaintextOutput, 1e-3)
}

func TestShadowStateTracksPlaintext(t *testing.T) {
	o := newTestOracle(t)
	sim, err := New(o, controller.Constant{U0: 100}, fixedInputConfig(9, 100))
	require.NoError(t, err)

	steps, res := collect(t, sim)
	require.Equal(t, Converged, res.State)
	require.GreaterOrEqual(t, res.Last.PlaintextOutput, 9.0)
	require.Zero(t, res.Refreshes)

	for i, s := range steps {
		require.Less(t, s.Error, 1e-5, "step %d", i)
		require.Equal(t, 100.0, s.Input)
	}
	require.InDelta(t, res.Last.OracleOutput, res.Last.PlaintextOutput, 1e-5)
	require.InDelta(t, 0.0, steps[0].PlaintextOutput, 1e-12)
	require.InDelta(t, 2.0, steps[1].PlaintextOutput, 1e-12)
}

func TestPDLoop(t *testing.T) {
	o := newTestOracle(t)
	cfg := DefaultConfig()
	cfg.Target = 10
	cfg.MaxSimTime = 2

	sim, err := New(o, controller.NewPD(10, 50, 10, cfg.Dt), cfg)
	require.NoError(t, err)

	steps, res := collect(t, sim)
	require.NotEqual(t, Running, res.State)
	require.Equal(t, 500.0, steps[0].Input)
	for _, s := range steps {
		require.Less(t, s.Error, 1e-4)
	}
}

func TestHomomorphicMatchesShadow(t *testing.T) {
	run := func(mode Mode) ([]Step, Result) {
		cfg := fixedInputConfig(9, 100)
		cfg.Mode = mode
		sim, err := New(newTestOracle(t), controller.Constant{U0: 100}, cfg)
		require.NoError(t, err)
		return collect(t, sim)
	}

	shadow, shadowRes := run(ShadowState)
	homo, homoRes := run(Homomorphic)

	require.Equal(t, shadowRes.State, homoRes.State)
	require.Equal(t, len(shadow), len(homo))
	// two levels per fresh ciphertext, one level per tick
	require.Equal(t, (len(homo)-1)/2, homoRes.Refreshes)

	for i := range homo {
		require.Equal(t, shadow[i].PlaintextOutput, homo[i].PlaintextOutput)
		require.Less(t, homo[i].Error, 1e-3, "step %d", i)
	}
}

func TestHomomorphicDeepChain(t *testing.T) {
	run := func(mode Mode) (*oracle.Oracle, []Step, Result) {
		o, err := oracle.New(oracle.DeepLiteral())
		require.NoError(t, err)
		cfg := DefaultConfig()
		cfg.Target = 10
		cfg.MaxSimTime = 2
		cfg.Mode = mode
		sim, err := New(o, controller.NewPD(10, 50, 10, cfg.Dt), cfg)
		require.NoError(t, err)
		steps, res := collect(t, sim)
		return o, steps, res
	}

	_, shadow, _ := run(ShadowState)
	o, homo, res := run(Homomorphic)

	require.Equal(t, Converged, res.State)
	require.Equal(t, len(shadow), len(homo))
	require.LessOrEqual(t, len(homo), o.MaxLevel())
	require.Zero(t, res.Refreshes)
	for i := range homo {
		require.Equal(t, shadow[i].PlaintextOutput, homo[i].PlaintextOutput)
		require.Less(t, homo[i].Error, 1e-4, "step %d", i)
	}
}

func TestHomomorphicWithoutRefreshExhausts(t *testing.T) {
	cfg := fixedInputConfig(50, 100)
	cfg.Mode = Homomorphic
	cfg.RefreshOnExhaustion = false

	o := newTestOracle(t)
	sim, err := New(o, controller.Constant{U0: 100}, cfg)
	require.NoError(t, err)

	res, err := sim.Run(nil)
	require.ErrorIs(t, err, oracle.ErrLevelExhausted)
	require.Equal(t, o.MaxLevel(), res.Steps)

	_, err = sim.Step()
	require.ErrorIs(t, err, oracle.ErrLevelExhausted)
}

func TestRunStopsOnEmitError(t *testing.T) {
	sim, err := New(newTestOracle(t), controller.Constant{U0: 100}, fixedInputConfig(50, 100))
	require.NoError(t, err)

	boom := errors.New("boom")
	res, err := sim.Run(func(Step) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, res.Steps)
}

func TestConfigValidate(t *testing.T) {
	o := newTestOracle(t)
	ctrl := controller.Constant{U0: 1}

	for name, mutate := range map[string]func(*Config){
		"ZeroDt":     func(c *Config) { c.Dt = 0 },
		"InfMaxTime": func(c *Config) { c.MaxSimTime = math.Inf(1) },
		"NegMaxTime": func(c *Config) { c.MaxSimTime = -1 },
		"NaNTarget":  func(c *Config) { c.Target = math.NaN() },
		"NegScale":   func(c *Config) { c.Scale = -1 },
		"BadMode":    func(c *Config) { c.Mode = Mode(7) },
		"EmptyModel": func(c *Config) { c.Model.A = nil },
		"TwoInputs": func(c *Config) {
			c.Model.B = [][]float64{{0, 1}, {2, 0}}
			c.Model.D = nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := New(o, ctrl, cfg)
			require.Error(t, err)
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ShadowState, Homomorphic} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	_, err := ParseMode("bootstrapped")
	require.Error(t, err)
}

func TestSweep(t *testing.T) {
	cfg := fixedInputConfig(0, 5)
	results := Sweep(
		[]float64{0, 5, 50},
		func() (*oracle.Oracle, error) { return oracle.New(oracle.DefaultLiteral()) },
		func(float64) controller.Controller { return controller.Constant{U0: 100} },
		cfg,
	)

	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	require.Equal(t, 0.0, results[0].Target)
	require.Equal(t, Converged, results[0].Result.State)
	require.Equal(t, Converged, results[1].Result.State)
	require.Equal(t, TimedOut, results[2].Result.State)
}
