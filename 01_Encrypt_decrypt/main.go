package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"Encrypted_DCMotor/com_utils"
	"Encrypted_DCMotor/harness"
	"Encrypted_DCMotor/oracle"
	"Encrypted_DCMotor/report"
)

func main() {
	// *****************************************************************
	// ************************* User's choice *************************
	// *****************************************************************
	// ============== Encryption parameters ==============
	const (
		logScale = 40
	)
	deep := flag.Bool("deep", false, "use the deeper parameter set (LogN 14)")
	flag.Parse()

	lit := oracle.DefaultLiteral()
	if *deep {
		lit = oracle.DeepLiteral()
	}
	o, err := oracle.New(lit)
	if err != nil {
		log.Fatalf("[Oracle] setup: %v", err)
	}
	fmt.Println("Degree of polynomials: 2^", o.LogN())
	fmt.Println("Slots:", o.Slots())
	fmt.Println("Multiplicative levels:", o.MaxLevel())

	// ============== Round trip ==============
	in := bufio.NewReader(os.Stdin)
	values, err := com_utils.ReadNumbers(in, os.Stdout, "Enter data: ")
	if err != nil {
		log.Fatalf("[Input] %v", err)
	}

	c, err := harness.RoundTrip(o, values, math.Exp2(logScale))
	if err != nil {
		log.Fatalf("[Oracle] %v", err)
	}

	fmt.Println()
	if err := report.WriteComparison(os.Stdout, c, report.RoundTripLabels); err != nil {
		log.Fatalf("[Report] %v", err)
	}
	fmt.Printf("Max error: %.6e\n", c.MaxError)
}
