package network

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	nn, err := New(RecurrentConf(layers.DeltaRNN, 3, 4, 2, activation.Tanh{}, activation.Identity{}))
	require.NoError(err)
	assert.Equal(3, nn.InputSize())
	assert.Equal(2, nn.OutputSize())
	assert.Equal(Dense, nn.InputKind())
	assert.True(nn.IsRecurrent())
	require.Len(nn.Model.Layers, 2)
	assert.Equal(layers.DeltaRNN, nn.Model.Layers[0].Kind())
	assert.Equal(layers.Feedforward, nn.Model.Layers[1].Kind())

	var nonZero bool
	for _, p := range nn.Model.Arrays() {
		for _, v := range p.Values.Float64s() {
			if p.IsBias() {
				assert.Equal(0.0, v, "%v", p)
			} else if v != 0 {
				nonZero = true
			}
		}
	}
	assert.True(nonZero)

	ff, err := New(FeedforwardConf(3, 4, 2, nil, nil))
	require.NoError(err)
	assert.False(ff.IsRecurrent())
}

func TestParams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	nn, err := New(RecurrentConf(layers.LSTM, 3, 4, 2, activation.Tanh{}, activation.Identity{}))
	require.NoError(err)

	c, err := nn.Model.Clone()
	require.NoError(err)
	require.NoError(c.Add(nn.Model))
	for i, p := range c.Arrays() {
		want := nn.Model.Arrays()[i].Values.Float64s()
		for j, v := range p.Values.Float64s() {
			assert.InDelta(2*want[j], v, 1e-12)
		}
	}

	c.Zero()
	for _, p := range c.Arrays() {
		assert.Equal(make([]float64, len(p.Values.Float64s())), p.Values.Float64s())
	}
	require.NoError(c.AssignValues(nn.Model))
	assert.Equal(nn.Model.Arrays()[0].Values.Float64s(), c.Arrays()[0].Values.Float64s())

	assert.Error(c.Add(&Params{}))
}

func TestUpdate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	nn, err := New(RecurrentConf(layers.GRU, 3, 4, 2, activation.Tanh{}, activation.Identity{}))
	require.NoError(err)
	before, err := nn.Model.Clone()
	require.NoError(err)

	grads, err := nn.NewParams()
	require.NoError(err)
	rng := rand.New(rand.NewSource(1))
	for _, p := range grads.Arrays() {
		for i := range p.Values.Float64s() {
			p.Values.Float64s()[i] = rng.Float64() - 0.5
		}
	}
	g, err := grads.Clone()
	require.NoError(err)

	require.NoError(nn.Update(grads, G.NewVanillaSolver(G.WithLearnRate(0.1))))
	for i, p := range nn.Model.Arrays() {
		w, d := before.Arrays()[i].Values.Float64s(), g.Arrays()[i].Values.Float64s()
		for j, v := range p.Values.Float64s() {
			assert.InDelta(w[j]-0.1*d[j], v, 1e-12, "%v", p)
		}
	}

	updated, err := nn.Model.Clone()
	require.NoError(err)
	other, err := New(FeedforwardConf(3, 4, 2, nil, nil))
	require.NoError(err)
	err = nn.Update(other.Model, G.NewVanillaSolver())
	assert.True(errors.Is(err, seqnet.ErrShapeMismatch), "%v", err)
	for i, p := range nn.Model.Arrays() {
		assert.Equal(updated.Arrays()[i].Values.Float64s(), p.Values.Float64s(), "%v", p)
	}
}

func TestToDot(t *testing.T) {
	assert := assert.New(t)

	conf := RecurrentConf(layers.LSTM, 3, 4, 2, activation.Tanh{}, activation.Softmax{})
	conf.Layers[0].Dropout = 0.2
	nn, err := New(conf)
	require.NoError(t, err)
	dot, err := nn.ToDot()
	require.NoError(t, err)

	assert.True(strings.HasPrefix(dot, "digraph G {"))
	for _, s := range []string{"layer0", "layer1", "layer2", "LSTM 4 (Tanh)", "Feedforward 2 (Softmax)", "dropout 0.2", "dashed"} {
		assert.Contains(dot, s)
	}
	assert.Equal(1, strings.Count(dot, "dashed"))
}

func TestStructure(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conf := RecurrentConf(layers.RAN, 3, 4, 2, activation.Tanh{}, activation.Identity{})
	conf.Layers[0].Dropout = 0.5
	conf.Layers[1].Dropout = 0.5
	nn, err := New(conf)
	require.NoError(err)

	s, err := NewStructure(nn, rand.New(rand.NewSource(1)))
	require.NoError(err)
	require.Len(s.Layers, 2)
	assert.True(s.Layers[0].Output() == s.Layers[1].Input().Array())

	x := arrays.Vector(0.1, -0.2, 0.3)
	require.NoError(s.Forward(x, false))
	assert.Nil(s.Layers[0].Input().Mask())
	assert.Nil(s.Layers[1].Input().Mask())
	want := s.Output().Values().Clone().(*tensor.Dense)

	require.NoError(s.Forward(x, true))
	assert.Len(s.Layers[0].Input().Mask(), 3)
	assert.Len(s.Layers[1].Input().Mask(), 4)

	// the masks are removed by a forward without dropout
	require.NoError(s.Forward(x, false))
	assert.Nil(s.Layers[0].Input().Mask())
	assert.True(arrays.Equal(want, s.Output().Values(), 0))

	pe, err := nn.NewParams()
	require.NoError(err)
	require.NoError(s.Backward(arrays.Vector(1, -1), pe, false))
	assert.Equal(make([]float64, 3), s.InputErrors().Float64s())
	require.NoError(s.Backward(arrays.Vector(1, -1), pe, true))
	assert.NotEqual(make([]float64, 3), s.InputErrors().Float64s())

	assert.Error(s.Backward(arrays.Vector(1, -1, 0), pe, false))
	assert.Error(s.Backward(arrays.Vector(1, -1), &Params{}, false))
}
