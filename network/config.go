package network

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	G "gorgonia.org/gorgonia"
)

// InputKind is the kind of the network input.
type InputKind byte

const (
	Dense InputKind = iota
	SparseBinary
)

func (k InputKind) String() string {
	if k == SparseBinary {
		return "SparseBinary"
	}
	return "Dense"
}

// LayerConfig configures one layer of a network.
//
// The first layer of a network is its input: only Size, InputKind and Dropout
// are read. Dropout is the probability of dropping a unit of the layer when it
// feeds the next one.
type LayerConfig struct {
	Size       int
	InputKind  InputKind
	Activation activation.Function
	Connection layers.Kind
	Dropout    float64
}

// Config configures a NeuralNetwork.
type Config struct {
	Layers []LayerConfig

	WeightsInit G.InitWFn // defaults to GlorotU(1)
	BiasesInit  G.InitWFn // defaults to Zeroes

	Seed   int64              // seed of the dropout masks
	Logger logrus.FieldLogger // defaults to the logrus standard logger
}

func (conf Config) IsValid() bool { return conf.Validate() == nil }

// Validate returns the reason a configuration is not valid.
func (conf Config) Validate() error {
	if len(conf.Layers) < 2 {
		return errors.Errorf("expected at least 2 layers. Got %d", len(conf.Layers))
	}
	for i, l := range conf.Layers {
		if l.Size <= 0 {
			return errors.Errorf("layer %d has size %d", i, l.Size)
		}
		if l.Dropout < 0 || l.Dropout >= 1 {
			return errors.Errorf("layer %d has dropout %v, expected a value in [0, 1)", i, l.Dropout)
		}
		if i == 0 {
			continue
		}
		if l.InputKind != Dense {
			return errors.Errorf("layer %d: only the input layer can be %v", i, l.InputKind)
		}
		if l.Connection == layers.Affine || l.Connection >= layers.MAXKIND {
			return errors.Wrapf(seqnet.ErrUnimplemented, "layer %d has connection %v", i, l.Connection)
		}
	}
	return nil
}

func (conf Config) weightsInit() G.InitWFn {
	if conf.WeightsInit == nil {
		return G.GlorotU(1.0)
	}
	return conf.WeightsInit
}

func (conf Config) biasesInit() G.InitWFn {
	if conf.BiasesInit == nil {
		return G.Zeroes()
	}
	return conf.BiasesInit
}

func (conf Config) logger() logrus.FieldLogger {
	if conf.Logger == nil {
		return logrus.StandardLogger()
	}
	return conf.Logger
}

// FeedforwardConf is a network with one hidden layer.
func FeedforwardConf(in, hidden, out int, hiddenAct, outputAct activation.Function) Config {
	return Config{
		Layers: []LayerConfig{
			{Size: in},
			{Size: hidden, Activation: hiddenAct, Connection: layers.Feedforward},
			{Size: out, Activation: outputAct, Connection: layers.Feedforward},
		},
	}
}

// RecurrentConf is a network with one recurrent hidden layer of the given kind,
// followed by a feedforward output layer.
func RecurrentConf(kind layers.Kind, in, hidden, out int, hiddenAct, outputAct activation.Function) Config {
	conf := FeedforwardConf(in, hidden, out, hiddenAct, outputAct)
	conf.Layers[1].Connection = kind
	return conf
}
