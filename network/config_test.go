package network

import (
	"testing"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRecurrentConf(t *testing.T) {
	assert := assert.New(t)

	hidden, output := activation.ELU{Alpha: 1}, activation.Softmax{}
	conf := RecurrentConf(layers.CFN, 3, 5, 4, hidden, output)
	conf.Layers[1].Dropout = 0.25
	assert.True(conf.IsValid())
	assert.Len(conf.Layers, 3)

	in := conf.Layers[0]
	assert.Equal(3, in.Size)
	assert.Nil(in.Activation)
	assert.Equal(0.0, in.Dropout)
	assert.Equal(Dense, in.InputKind)

	h := conf.Layers[1]
	assert.Equal(5, h.Size)
	assert.Equal(hidden, h.Activation)
	assert.Equal(layers.CFN, h.Connection)
	assert.Equal(0.25, h.Dropout)

	out := conf.Layers[2]
	assert.Equal(4, out.Size)
	assert.Equal(output, out.Activation)
	assert.Equal(layers.Feedforward, out.Connection)
	assert.Equal(0.0, out.Dropout)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	assert.True(FeedforwardConf(2, 3, 1, nil, nil).IsValid())
	assert.False(Config{Layers: []LayerConfig{{Size: 3}}}.IsValid())

	conf := FeedforwardConf(2, 0, 1, nil, nil)
	assert.Error(conf.Validate())

	conf = FeedforwardConf(2, 3, 1, nil, nil)
	conf.Layers[1].Dropout = 1
	assert.Error(conf.Validate())

	conf = FeedforwardConf(2, 3, 1, nil, nil)
	conf.Layers[2].InputKind = SparseBinary
	assert.Error(conf.Validate())

	conf = RecurrentConf(layers.Affine, 2, 3, 1, nil, nil)
	assert.True(errors.Is(conf.Validate(), seqnet.ErrUnimplemented))
	_, err := New(conf)
	assert.True(errors.Is(err, seqnet.ErrUnimplemented))

	conf = RecurrentConf(layers.MAXKIND, 2, 3, 1, nil, nil)
	assert.True(errors.Is(conf.Validate(), seqnet.ErrUnimplemented))
}
