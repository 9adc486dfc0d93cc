package oracle

import "errors"

// Every one of these is fatal to the run that hit it: the parameters are
// fixed at construction and a retry would fail the same way.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrScaleMismatch  = errors.New("scale mismatch")
	ErrLevelExhausted = errors.New("level exhausted")
	ErrDecryption     = errors.New("decryption error")
)
