package arrays

import (
	"testing"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugmentedArrayShapes(t *testing.T) {
	assert := assert.New(t)
	for _, shape := range [][]int{{1}, {3}, {2, 4}} {
		a := New(shape...)
		assert.True(SameShape(a.Values().Shape(), a.Errors().Shape()), "%v", shape)

		v := Zeros(shape...)
		Float64s(v)[0] = 1
		require.NoError(t, a.AssignValues(v))
		require.NoError(t, a.AssignErrors(v))
		assert.True(SameShape(a.Values().Shape(), a.Errors().Shape()), "%v", shape)
	}
}

func TestAugmentedArrayAssign(t *testing.T) {
	assert := assert.New(t)
	a := New(3)
	assert.Equal([]float64{0, 0, 0}, Float64s(a.Errors()))

	err := a.AssignValues(Vector(1, 2))
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch), "got %v", err)
	err = a.AssignErrors(Vector(1, 2, 3, 4))
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch), "got %v", err)

	v := Vector(1, 2, 3)
	require.NoError(t, a.AssignValues(v))
	Float64s(v)[0] = 10
	assert.Equal([]float64{1, 2, 3}, Float64s(a.Values()), "values are copied")

	require.NoError(t, a.AssignErrors(Vector(0.5, 0.5, 0.5)))
	require.NoError(t, a.AccumulateErrors(Vector(0.5, 1, 1.5)))
	assert.Equal([]float64{1, 1.5, 2}, Float64s(a.Errors()))
	a.ZeroErrors()
	assert.Equal([]float64{0, 0, 0}, Float64s(a.Errors()))
}

func TestAugmentedArrayActivate(t *testing.T) {
	assert := assert.New(t)
	a, err := FromValues(Vector(-0.5, 0, 0.5))
	require.NoError(t, err)
	assert.Nil(a.ActivationDerivative())

	a.SetActivation(activation.Tanh{})
	a.Activate()
	assert.InDeltaSlice([]float64{-0.462117, 0, 0.462117}, Float64s(a.Values()), 1e-6)
	assert.Equal([]float64{-0.5, 0, 0.5}, Float64s(a.NotActivatedValues()))
	assert.InDeltaSlice([]float64{0.786448, 1, 0.786448}, Float64s(a.ActivationDerivative()), 1e-6)

	require.NoError(t, a.AssignErrors(Vector(1, 1, 2)))
	a.BackwardActivation()
	assert.InDeltaSlice([]float64{0.786448, 1, 1.572896}, Float64s(a.Errors()), 1e-6)
}

func TestAugmentedArrayClone(t *testing.T) {
	assert := assert.New(t)
	a, err := FromValues(Vector(0.1, 0.2))
	require.NoError(t, err)
	a.SetActivation(activation.Sigmoid{})
	a.Activate()
	require.NoError(t, a.AssignErrors(Vector(0.3, 0.4)))

	c := a.Clone()
	values := append([]float64(nil), Float64s(a.Values())...)

	require.NoError(t, a.AssignValues(Vector(9, 9)))
	require.NoError(t, a.AssignErrors(Vector(8, 8)))
	a.Activate()

	assert.Equal(values, Float64s(c.Values()))
	assert.Equal([]float64{0.3, 0.4}, Float64s(c.Errors()))
	assert.Equal([]float64{0.1, 0.2}, Float64s(c.NotActivatedValues()))
	assert.True(c.HasActivation())
}

func TestEqual(t *testing.T) {
	assert := assert.New(t)
	assert.True(Equal(Vector(0.1, 0.2), Vector(0.1000001, 0.2), 1e-6))
	assert.False(Equal(Vector(0.1, 0.2), Vector(0.1001, 0.2), 1e-6))
	assert.False(Equal(Vector(0.1, 0.2), Matrix([]float64{0.1, 0.2}), 1e-6))
	assert.False(Equal(Vector(0.1, 0.2), Matrix([]float64{0.1}, []float64{0.2}), 1e-6))
}

func TestAssignExactShape(t *testing.T) {
	assert := assert.New(t)
	a := New(2)
	row := Matrix([]float64{0.1, 0.2})
	assert.True(errors.Is(a.AssignValues(row), seqnet.ErrShapeMismatch))
	assert.True(errors.Is(a.AssignErrors(row), seqnet.ErrShapeMismatch))
	assert.True(errors.Is(a.AccumulateErrors(Matrix([]float64{0.1}, []float64{0.2})), seqnet.ErrShapeMismatch))
	assert.Equal([]float64{0, 0}, Float64s(a.Values()))

	assert.NoError(Check(Vector(1, 2), 2))
	assert.True(errors.Is(Check(row, 2), seqnet.ErrShapeMismatch))
	assert.True(errors.Is(Check(nil, 2), seqnet.ErrShapeMismatch))
}

func TestSparseBinary(t *testing.T) {
	assert := assert.New(t)
	s, err := NewSparseBinary(5, 3, 1, 3)
	require.NoError(t, err)
	assert.Equal([]int{1, 3}, s.Active())
	assert.Equal([]float64{0, 1, 0, 1, 0}, s.Dense())

	_, err = NewSparseBinary(2, 2)
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch))
}
