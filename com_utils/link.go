package com_utils

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Link forwards control inputs to a motor driver, one "%.6f\n" line each.
type Link struct {
	w io.Writer
	c io.Closer
	n int
}

func NewLink(w io.Writer) *Link {
	return &Link{w: w}
}

func OpenSerial(port string, baud int) (*Link, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", port, err)
	}
	return &Link{w: p, c: p}, nil
}

func (l *Link) WriteInput(u float64) error {
	if _, err := l.w.Write([]byte(fmt.Sprintf("%.6f\n", u))); err != nil {
		return fmt.Errorf("link write #%d: %w", l.n, err)
	}
	l.n++
	return nil
}

// Sent is the number of inputs written so far.
func (l *Link) Sent() int { return l.n }

// Close releases the underlying port. Later calls are no-ops.
func (l *Link) Close() error {
	if l.c == nil {
		return nil
	}
	c := l.c
	l.c = nil
	return c.Close()
}
