package layers

import (
	"testing"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(vals ...float64) *Input {
	a, err := arrays.FromValues(arrays.Vector(vals...))
	if err != nil {
		panic(err)
	}
	return DenseInput(a)
}

func TestAffine(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := NewAffineParams(2, 3, 2)
	copy(data(p.W1.Values), []float64{0.3, 0.8, 0.8, -0.7})
	copy(data(p.W2.Values), []float64{0.6, 0.5, -0.9, 0.3, -0.3, 0.3})
	copy(data(p.B.Values), []float64{0.5, -0.4})

	x1, x2 := input(-0.8, -0.9), input(0.5, -0.2, 0.6)
	l, err := NewAffine(x1, x2, p, activation.Tanh{})
	require.NoError(err)
	require.NoError(l.Forward())
	y := data(l.Output().Values())
	assert.InDeltaSlice([]float64{-0.664037, -0.019997}, y, 1e-6)

	// errors of a squared loss against the gold output
	gold := []float64{0.1, -0.3}
	copy(errs(l.Output()), []float64{y[0] - gold[0], y[1] - gold[1]})

	pe := NewAffineParams(2, 3, 2)
	require.NoError(l.Backward(pe, true))

	assert.InDeltaSlice([]float64{-0.427139, 0.279891}, errs(l.Output()), 1e-6)
	assert.InDeltaSlice([]float64{-0.427139, 0.279891}, data(pe.B.Values), 1e-6)
	assert.InDeltaSlice([]float64{0.341711, 0.384425, -0.223913, -0.251902}, data(pe.W1.Values), 1e-6)
	assert.InDeltaSlice([]float64{-0.213569, 0.085428, -0.256283, 0.139945, -0.055978, 0.167934}, data(pe.W2.Values), 1e-6)
	assert.InDeltaSlice([]float64{0.095771, -0.537634}, errs(x1.Array()), 1e-6)
	assert.InDeltaSlice([]float64{-0.172316, -0.297537, 0.468392}, errs(x2.Array()), 1e-6)
}

func TestFeedforward(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := NewFeedforwardParams(2, 2)
	copy(data(p.W.Values), []float64{0.5, -1, 2, 0.25})
	copy(data(p.B.Values), []float64{0.1, -0.1})

	x := input(1, 2)
	l, err := NewFeedforward(x, p, nil)
	require.NoError(err)
	require.NoError(l.Forward())
	assert.InDeltaSlice([]float64{-1.4, 2.4}, data(l.Output().Values()), 1e-12)

	copy(errs(l.Output()), []float64{1, -1})
	pe := NewFeedforwardParams(2, 2)
	require.NoError(l.Backward(pe, true))
	assert.InDeltaSlice([]float64{1, 2, -1, -2}, data(pe.W.Values), 1e-12)
	assert.InDeltaSlice([]float64{1, -1}, data(pe.B.Values), 1e-12)
	assert.InDeltaSlice([]float64{-1.5, -1.25}, errs(x.Array()), 1e-12)

	// gradients accumulate, input errors are overwritten
	copy(errs(l.Output()), []float64{1, -1})
	require.NoError(l.Backward(pe, true))
	assert.InDeltaSlice([]float64{2, -2}, data(pe.B.Values), 1e-12)
	assert.InDeltaSlice([]float64{-1.5, -1.25}, errs(x.Array()), 1e-12)
}

func TestStructureErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := NewFeedforward(input(1, 2, 3), NewFeedforwardParams(2, 2), nil)
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch))

	_, err = NewStructure(GRU, input(1, 2), NewFeedforwardParams(2, 2), nil)
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch))

	_, err = NewStructure(Affine, input(1, 2), NewAffineParams(2, 2, 2), nil)
	assert.True(errors.Is(err, seqnet.ErrUnimplemented))

	l, err := NewStructure(Feedforward, input(1, 2), NewFeedforwardParams(2, 2), nil)
	assert.NoError(err)
	assert.NoError(l.Forward())
	err = l.Backward(NewGRUParams(2, 2), false)
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch))

	// a window pointing at a structure of another kind
	gru, err := NewStructure(GRU, input(1, 2), NewGRUParams(2, 2), nil)
	assert.NoError(err)
	gru.SetWindow(Back{States: StateSlice{l, gru}, Step: 1})
	assert.True(errors.Is(gru.Forward(), seqnet.ErrInvalidState))
}
