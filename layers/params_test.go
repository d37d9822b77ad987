package layers

import (
	"testing"

	"github.com/gorgonia/seqnet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestNewParams(t *testing.T) {
	assert := assert.New(t)
	counts := map[Kind]int{
		Feedforward:     2,
		SimpleRecurrent: 3,
		RAN:             8,
		GRU:             9,
		LSTM:            12,
		CFN:             7,
		DeltaRNN:        7,
	}
	for kind, n := range counts {
		p, err := NewParams(kind, 3, 2)
		if !assert.NoError(err, "%v", kind) {
			continue
		}
		assert.Equal(kind, p.Kind())
		assert.Equal(3, p.InputSize())
		assert.Equal(2, p.OutputSize())
		assert.Len(p.Arrays(), n, "%v", kind)
	}

	_, err := NewParams(Affine, 3, 2)
	assert.True(errors.Is(err, seqnet.ErrUnimplemented))
	_, err = NewParams(MAXKIND, 3, 2)
	assert.True(errors.Is(err, seqnet.ErrUnimplemented))
}

func TestParamsArithmetic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	a := NewGRUParams(2, 3)
	InitParams(a, G.GlorotU(1), G.Zeroes())
	for _, p := range a.Arrays() {
		if p.IsBias() {
			assert.Equal(make([]float64, 3), data(p.Values))
		}
	}

	b, err := CloneParams(a)
	require.NoError(err)
	require.NoError(AddParams(b, a))
	for i, p := range b.Arrays() {
		orig := data(a.Arrays()[i].Values)
		for j, v := range data(p.Values) {
			assert.InDelta(2*orig[j], v, 1e-12)
		}
	}

	// clones do not share memory
	ZeroParams(b)
	assert.NotEqual(make([]float64, 6), data(a.ResetGate.W.Values))

	z, err := ZerosLike(NewAffineParams(2, 4, 3))
	require.NoError(err)
	assert.Equal(4, z.(*AffineParams).InputSize2())

	assert.True(errors.Is(AddParams(a, NewGRUParams(2, 4)), seqnet.ErrShapeMismatch))
	assert.True(errors.Is(AssignParams(a, NewLSTMParams(2, 3)), seqnet.ErrShapeMismatch))
}

func TestInitDeltaRNN(t *testing.T) {
	p := NewDeltaRNNParams(2, 3)
	InitParams(p, G.GlorotU(1), G.Zeroes())
	ones := []float64{1, 1, 1}
	assert.Equal(t, ones, data(p.Alpha.Values))
	assert.Equal(t, ones, data(p.Beta1.Values))
	assert.Equal(t, ones, data(p.Beta2.Values))
	assert.Equal(t, []float64{0, 0, 0}, data(p.PartitionB.Values))
}
