package seqnet

import "github.com/pkg/errors"

// The error kinds returned by the engine. All of them are caller errors;
// use errors.Is to test for a kind.
var (
	// ErrShapeMismatch is returned when array operands have incompatible shapes.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidState is returned when an operation is called out of order,
	// e.g. a backward before any forward.
	ErrInvalidState = errors.New("invalid state")

	// ErrLengthMismatch is returned when a sequence and its errors have different lengths.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrUnsupportedInputKind is returned when input errors are requested on a non dense input.
	ErrUnsupportedInputKind = errors.New("unsupported input kind")

	// ErrUnimplemented marks a configured variant whose computation is not provided.
	ErrUnimplemented = errors.New("unimplemented")
)
