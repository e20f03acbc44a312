package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// opError carries the operation that produced an error.
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *opError) Unwrap() error {
	return e.err
}

// Wrap annotates err with the failing operation.
func Wrap(op string, err error) error {
	return &opError{op: op, err: err}
}

// NewKind returns an operation error of the given sentinel kind.
func NewKind(op string, kind error) error {
	return &opError{op: op, err: kind}
}

// WrapKind combines a sentinel kind with an underlying cause.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, err: fmt.Errorf("%w: %v", kind, err)}
}
