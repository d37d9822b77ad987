// Package network describes a stack of layers: its configuration, its
// parameters, and the structure that runs one time step through all of them.
package network

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNetwork is a configured network with its model parameters.
type NeuralNetwork struct {
	Config
	Model *Params

	log logrus.FieldLogger
}

// New creates a network with parameters initialised as the config says.
func New(conf Config) (*NeuralNetwork, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	retVal := &NeuralNetwork{
		Config: conf,
		log:    conf.logger(),
	}
	model, err := retVal.NewParams()
	if err != nil {
		return nil, err
	}
	weights, biases := conf.weightsInit(), conf.biasesInit()
	for _, p := range model.Layers {
		layers.InitParams(p, weights, biases)
	}
	retVal.Model = model
	retVal.log.WithFields(logrus.Fields{
		"layers": len(conf.Layers) - 1,
		"input":  retVal.InputSize(),
		"output": retVal.OutputSize(),
	}).Debug("network created")
	return retVal, nil
}

// NewParams creates zeroed parameters shaped as the model, to hold gradients.
func (nn *NeuralNetwork) NewParams() (*Params, error) {
	retVal := &Params{}
	for i := 1; i < len(nn.Layers); i++ {
		l := nn.Layers[i]
		p, err := layers.NewParams(l.Connection, nn.Layers[i-1].Size, l.Size)
		if err != nil {
			return nil, errors.WithMessagef(err, "layer %d", i)
		}
		retVal.Layers = append(retVal.Layers, p)
	}
	return retVal, nil
}

func (nn *NeuralNetwork) InputKind() InputKind       { return nn.Layers[0].InputKind }
func (nn *NeuralNetwork) InputSize() int             { return nn.Layers[0].Size }
func (nn *NeuralNetwork) OutputSize() int            { return nn.Layers[len(nn.Layers)-1].Size }
func (nn *NeuralNetwork) Logger() logrus.FieldLogger { return nn.log }

// IsRecurrent returns true if any layer has a recurrent connection.
func (nn *NeuralNetwork) IsRecurrent() bool {
	for _, l := range nn.Layers[1:] {
		if l.Connection.IsRecurrent() {
			return true
		}
	}
	return false
}

type valueGrad struct {
	value, grad *tensor.Dense
}

func (n valueGrad) Value() G.Value         { return n.value }
func (n valueGrad) Grad() (G.Value, error) { return n.grad, nil }

// Update takes a solver step on the model with the given gradients. Solvers
// consume the gradients: they are zeroed by a VanillaSolver.
func (nn *NeuralNetwork) Update(grads *Params, solver G.Solver) error {
	if err := nn.Model.check(grads); err != nil {
		return err
	}
	model, gs := nn.Model.Arrays(), grads.Arrays()
	vgs := make([]G.ValueGrad, 0, len(model))
	for i, p := range model {
		if i >= len(gs) || !arrays.SameShape(p.Values.Shape(), gs[i].Values.Shape()) {
			return errors.Wrapf(seqnet.ErrShapeMismatch, "gradient %d does not match %v", i, p)
		}
		vgs = append(vgs, valueGrad{value: p.Values, grad: gs[i].Values})
	}
	return errors.WithStack(solver.Step(vgs))
}
