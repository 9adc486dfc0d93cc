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
	// ============== Controller design (PD) ==============
	const (
		Kp = 50.0
		Kd = 10.0
	)

	// ============== Loop parameters ==============
	const (
		dt         = 0.05
		maxSimTime = 100.0
		logScale   = 40
		baudRate   = 115200
	)

	kp := flag.Float64("kp", Kp, "proportional gain")
	kd := flag.Float64("kd", Kd, "derivative gain")
	dtFlag := flag.Float64("dt", dt, "sampling time (s)")
	maxTime := flag.Float64("max-time", maxSimTime, "simulation time limit (s)")
	modeFlag := flag.String("mode", simulator.ShadowState.String(), "state carrier: shadow or homomorphic")
	noRefresh := flag.Bool("no-refresh", false, "fail instead of re-encrypting an exhausted homomorphic state")
	deep := flag.Bool("deep", false, "use the deeper parameter set (LogN 14)")
	csvPath := flag.String("csv", "", "export the trace as CSV")
	pngPath := flag.String("png", "", "plot the trajectories as PNG")
	serialPort := flag.String("serial", "", "forward each input to a motor driver on this port")
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

	fmt.Printf("PD gains: Kp = %g, Kd = %g, dt = %g s\n", *kp, *kd, cfg.Dt)

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
	pd := controller.NewPD(target, *kp, *kd, cfg.Dt)
	sim, err := simulator.New(o, pd, cfg)
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
	table := report.NewTableWriter(os.Stdout, report.VoltageLayout)
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
	if *csvPath != "" {
		if err := report.ExportCSV(steps, *csvPath); err != nil {
			log.Printf("[CSV] %v", err)
		} else {
			fmt.Println("[CSV] Saved:", *csvPath)
		}
	}
	if *pngPath != "" {
		if err := savePlot(steps, *pngPath); err != nil {
			log.Printf("[Plot] %v", err)
		} else {
			fmt.Println("[Plot] Saved:", *pngPath)
		}
	}
	fmt.Println("Simulation complete.")
}

func savePlot(steps []simulator.Step, path string) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return report.PlotTrajectories(w, steps)
}
