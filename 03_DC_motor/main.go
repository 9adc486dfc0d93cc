package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"Encrypted_DCMotor/com_utils"
	"Encrypted_DCMotor/controller"
	"Encrypted_DCMotor/oracle"
	"Encrypted_DCMotor/report"
	"Encrypted_DCMotor/simulator"
)

func main() {
	// *****************************************************************
	// ************************* User's choice *************************
	// *****************************************************************
	// ============== Loop parameters ==============
	const (
		dt         = 0.1
		u0         = 100.0 // fixed input voltage
		maxSimTime = 100.0
		logScale   = 40
		baudRate   = 115200
	)

	dtFlag := flag.Float64("dt", dt, "sampling time (s)")
	maxTime := flag.Float64("max-time", maxSimTime, "simulation time limit (s)")
	modeFlag := flag.String("mode", simulator.ShadowState.String(), "state carrier: shadow or homomorphic")
	noRefresh := flag.Bool("no-refresh", false, "fail instead of re-encrypting an exhausted homomorphic state")
	deep := flag.Bool("deep", false, "use the deeper parameter set (LogN 14)")
	csvPath := flag.String("csv", "", "export the trace as CSV")
	pngPath := flag.String("png", "", "plot the trajectories as PNG")
	serialPort := flag.String("serial", "", "forward each input to a motor driver on this port")
	sweep := flag.String("sweep", "", "run one loop per target in this list concurrently, e.g. \"5,8,9.5\"")
	flag.Parse()

	mode, err := simulator.ParseMode(*modeFlag)
	if err != nil {
		log.Fatalf("[Sim] %v", err)
	}
	lit := oracle.DefaultLiteral()
	if *deep {
		lit = oracle.DeepLiteral()
	}

	cfg := simulator.DefaultConfig()
	cfg.Dt = *dtFlag
	cfg.MaxSimTime = *maxTime
	cfg.Scale = math.Exp2(logScale)
	cfg.Mode = mode
	cfg.RefreshOnExhaustion = !*noRefresh

	fmt.Printf("Fixed input voltage used: %g V\n", u0)

	if *sweep != "" {
		targets, err := com_utils.ParseNumbers(*sweep)
		if err != nil {
			log.Fatalf("[Input] sweep: %v", err)
		}
		runSweep(targets, lit, cfg, u0)
		return
	}

	// ============== Desired speed ==============
	in := bufio.NewReader(os.Stdin)
	target, err := com_utils.ReadScalar(in, os.Stdout, "Enter desired speed (rad/sec): ")
	if err != nil {
		log.Fatalf("[Input] %v", err)
	}
	cfg.Target = target

	o, err := oracle.New(lit)
	if err != nil {
		log.Fatalf("[Oracle] setup: %v", err)
	}
	sim, err := simulator.New(o, controller.Constant{U0: u0}, cfg)
	if err != nil {
		log.Fatalf("[Sim] %v", err)
	}

	var link *com_utils.Link
	if *serialPort != "" {
		link, err = com_utils.OpenSerial(*serialPort, baudRate)
		if err != nil {
			log.Fatalf("[Serial] %v", err)
		}
		defer link.Close()
		fmt.Println("[Serial] opened:", *serialPort, baudRate)
	}

	// log.Fatalf skips deferred calls, so the port is closed here first
	fatalf := func(format string, v ...any) {
		if link != nil {
			link.Close()
		}
		log.Fatalf(format, v...)
	}

	// ============== Simulation ==============
	table := report.NewTableWriter(os.Stdout, report.ErrorLayout)
	fmt.Println()
	if err := table.WriteHeader(); err != nil {
		fatalf("[Report] %v", err)
	}

	var (
		steps   []simulator.Step
		period  []time.Duration
		started = time.Now()
	)
	res, err := sim.Run(func(s simulator.Step) error {
		period = append(period, time.Since(started))
		steps = append(steps, s)
		if link != nil {
			if err := link.WriteInput(s.Input); err != nil {
				return err
			}
		}
		err := table.WriteStep(s)
		started = time.Now()
		return err
	})
	if err != nil {
		fatalf("[Sim] %v", err)
	}

	sum, err := report.Summarize(steps, res)
	if err != nil {
		fatalf("[Report] %v", err)
	}
	if err := report.WriteSummary(os.Stdout, sum); err != nil {
		fatalf("[Report] %v", err)
	}
	fmt.Println("Average elapsed time for a control period:", report.AveragePeriodMs(period), "ms")

	// =========== Export data ===========
	export(steps, *csvPath, *pngPath)
	fmt.Println("Simulation complete.")
}

func runSweep(targets []float64, lit oracle.Literal, cfg simulator.Config, u0 float64) {
	results := simulator.Sweep(targets,
		func() (*oracle.Oracle, error) { return oracle.New(lit) },
		func(float64) controller.Controller { return controller.Constant{U0: u0} },
		cfg)

	fmt.Printf("\n%12s%14s%10s%12s%22s\n", "Target", "State", "Steps", "Time(s)", "Final error")
	for _, r := range results {
		if r.Err != nil {
			log.Printf("[Sim] target %g: %v", r.Target, r.Err)
			continue
		}
		fmt.Printf("%12.4f%14s%10d%12.2f%22.12e\n", r.Target, r.Result.State, r.Result.Steps, r.Result.FinalTime, r.Result.TrackingError)
	}
}

func export(steps []simulator.Step, csvPath, pngPath string) {
	if csvPath != "" {
		if err := report.ExportCSV(steps, csvPath); err != nil {
			log.Printf("[CSV] %v", err)
		} else {
			fmt.Println("[CSV] Saved:", csvPath)
		}
	}
	if pngPath == "" {
		return
	}
	w, err := os.Create(pngPath)
	if err != nil {
		log.Printf("[Plot] %v", err)
		return
	}
	defer w.Close()
	if err := report.PlotTrajectories(w, steps); err != nil {
		log.Printf("[Plot] %v", err)
		return
	}
	fmt.Println("[Plot] Saved:", pngPath)
}
