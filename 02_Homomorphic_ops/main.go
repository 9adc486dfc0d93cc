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
	scale := math.Exp2(logScale)

	// ============== Operands ==============
	in := bufio.NewReader(os.Stdin)
	v1, err := com_utils.ReadNumbers(in, os.Stdout, "Enter first numbers: ")
	if err != nil {
		log.Fatalf("[Input] %v", err)
	}
	v2, err := com_utils.ReadNumbers(in, os.Stdout, "Enter second numbers: ")
	if err != nil {
		log.Fatalf("[Input] %v", err)
	}
	if len(v1) != len(v2) {
		log.Printf("[Input] lengths differ (%d, %d), using the first %d", len(v1), len(v2), min(len(v1), len(v2)))
	}
	v1, v2 = oracle.Truncate(v1, v2)

	fmt.Println()
	if err := report.WriteNumbers(os.Stdout, "First numbers: ", v1); err != nil {
		log.Fatalf("[Report] %v", err)
	}
	if err := report.WriteNumbers(os.Stdout, "Second numbers:", v2); err != nil {
		log.Fatalf("[Report] %v", err)
	}

	// ============== Homomorphic operations ==============
	sum, err := harness.Add(o, v1, v2, scale)
	if err != nil {
		log.Fatalf("[Oracle] %v", err)
	}
	fmt.Println("\nADDITION:")
	if err := report.WriteComparison(os.Stdout, sum, report.OpLabels); err != nil {
		log.Fatalf("[Report] %v", err)
	}

	prod, err := harness.Multiply(o, v1, v2, scale)
	if err != nil {
		log.Fatalf("[Oracle] %v", err)
	}
	fmt.Println("\nMULTIPLICATION:")
	if err := report.WriteComparison(os.Stdout, prod, report.OpLabels); err != nil {
		log.Fatalf("[Report] %v", err)
	}
}
