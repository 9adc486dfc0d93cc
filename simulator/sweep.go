package simulator

import (
	"sync"

	"Encrypted_DCMotor/controller"
	"Encrypted_DCMotor/oracle"
)

type SweepResult struct {
	Target float64
	Result Result
	Err    error
}

// Sweep runs one independent loop per target concurrently. Each run gets its
// own oracle and controller; the steps of a single run stay sequential.
// Results come back in the order of targets.
func Sweep(targets []float64, newOracle func() (*oracle.Oracle, error), newController func(target float64) controller.Controller, cfg Config) []SweepResult {
	results := make([]SweepResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target float64) {
			defer wg.Done()
			results[i] = runOne(target, newOracle, newController, cfg)
		}(i, target)
	}
	wg.Wait()

	return results
}

func runOne(target float64, newOracle func() (*oracle.Oracle, error), newController func(float64) controller.Controller, cfg Config) SweepResult {
	res := SweepResult{Target: target}

	o, err := newOracle()
	if err != nil {
		res.Err = err
		return res
	}
	cfg.Target = target
	sim, err := New(o, newController(target), cfg)
	if err != nil {
		res.Err = err
		return res
	}
	res.Result, res.Err = sim.Run(nil)
	return res
}
