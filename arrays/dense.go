// Package arrays holds the numeric containers the layers read from and write
// gradients into.
//
// Values are gorgonia *tensor.Dense of dtype Float64.
package arrays

import (
	"github.com/gorgonia/seqnet"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Zeros returns a zero filled Float64 tensor of the given shape.
func Zeros(shape ...int) *tensor.Dense {
	return tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(shape...))
}

// Vector creates a vector backed by a copy of vals.
func Vector(vals ...float64) *tensor.Dense {
	backing := make([]float64, len(vals))
	copy(backing, vals)
	return tensor.New(tensor.WithShape(len(vals)), tensor.WithBacking(backing))
}

// Matrix creates a row-major matrix from its rows. There must be at least one row
// and all the rows must have the same length.
func Matrix(rows ...[]float64) *tensor.Dense {
	cols := len(rows[0])
	backing := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		if len(r) != cols {
			panic("Matrix: ragged rows")
		}
		backing = append(backing, r...)
	}
	return tensor.New(tensor.WithShape(len(rows), cols), tensor.WithBacking(backing))
}

// Float64s returns the backing slice of a Float64 tensor.
// Unlike Data it never unwraps a single element tensor into a scalar.
func Float64s(t *tensor.Dense) []float64 { return t.Float64s() }

// SameShape reports whether a and b have exactly the same dimensions.
// Unlike tensor.Shape.Eq a vector (n) never matches a matrix (1, n) or (n, 1).
func SameShape(a, b tensor.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Check returns ErrShapeMismatch unless t is a Float64 tensor of the given shape.
func Check(t *tensor.Dense, shape ...int) error {
	if err := checkFloat64(t); err != nil {
		return err
	}
	if !SameShape(t.Shape(), tensor.Shape(shape)) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "expected an array of shape %v, got %v", tensor.Shape(shape), t.Shape())
	}
	return nil
}

// Equal reports whether a and b have the same shape and values within tolerance.
func Equal(a, b *tensor.Dense, tolerance float64) bool {
	if !SameShape(a.Shape(), b.Shape()) {
		return false
	}
	return floats.EqualApprox(Float64s(a), Float64s(b), tolerance)
}

// Copy copies src into dst. Both must be Float64 tensors of the same shape.
func Copy(dst, src *tensor.Dense) error {
	if err := checkFloat64(src); err != nil {
		return err
	}
	if !SameShape(dst.Shape(), src.Shape()) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "cannot copy an array of shape %v into one of shape %v", src.Shape(), dst.Shape())
	}
	copy(Float64s(dst), Float64s(src))
	return nil
}

func checkFloat64(t *tensor.Dense) error {
	if t == nil {
		return errors.Wrap(seqnet.ErrShapeMismatch, "nil array")
	}
	if t.Dtype() != tensor.Float64 {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "expected an array of %v, got %v", tensor.Float64, t.Dtype())
	}
	return nil
}
