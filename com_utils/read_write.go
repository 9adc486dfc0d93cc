package com_utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"Encrypted_DCMotor/oracle"
)

// ParseNumbers reads decimals separated by whitespace or commas.
func ParseNumbers(line string) ([]float64, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no numbers in %q", oracle.ErrInvalidInput, strings.TrimSpace(line))
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", oracle.ErrInvalidInput, i, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: token %d %q is not finite", oracle.ErrInvalidInput, i, f)
		}
		values[i] = v
	}
	return values, nil
}

// ReadNumbers prints prompt to w and parses the next line of r.
func ReadNumbers(r *bufio.Reader, w io.Writer, prompt string) ([]float64, error) {
	if prompt != "" {
		if _, err := io.WriteString(w, prompt); err != nil {
			return nil, err
		}
	}
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseNumbers(line)
}

// ReadScalar is ReadNumbers for a line holding exactly one number.
func ReadScalar(r *bufio.Reader, w io.Writer, prompt string) (float64, error) {
	values, err := ReadNumbers(r, w, prompt)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("%w: expected one number, got %d", oracle.ErrInvalidInput, len(values))
	}
	return values[0], nil
}
