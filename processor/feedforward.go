package processor

import (
	"math/rand"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/gorgonia/seqnet/network"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorgonia.org/tensor"
)

// Feedforward runs a network on single inputs, with one network structure whose
// layers have no context.
type Feedforward struct {
	id        int
	nn        *network.NeuralNetwork
	structure *network.Structure

	paramsErrors *network.Params
	consumed     bool
	summed       bool
	state        state
	propagated   bool

	log logrus.FieldLogger
}

// NewFeedforward creates a processor of nn with the given id.
func NewFeedforward(nn *network.NeuralNetwork, id int) (*Feedforward, error) {
	s, err := network.NewStructure(nn, rand.New(rand.NewSource(nn.Seed+int64(id))))
	if err != nil {
		return nil, err
	}
	pe, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	return &Feedforward{
		id:           id,
		nn:           nn,
		structure:    s,
		paramsErrors: pe,
		consumed:     true,
		log:          nn.Logger().WithFields(logrus.Fields{"processor": "feedforward", "id": id}),
	}, nil
}

func (p *Feedforward) ID() int { return p.id }

func (p *Feedforward) reset() {
	p.state = idle
	p.consumed = true
	p.summed = false
	p.propagated = false
}

// Forward runs the network on a dense input and returns a copy of the output.
func (p *Feedforward) Forward(x *tensor.Dense, useDropout bool) (*tensor.Dense, error) {
	p.state = idle
	if err := p.structure.Forward(x, useDropout); err != nil {
		return nil, err
	}
	p.state = forwarded
	return p.Output(), nil
}

// ForwardSparse runs the network on a sparse binary input and returns a copy of the output.
func (p *Feedforward) ForwardSparse(x *arrays.SparseBinary, useDropout bool) (*tensor.Dense, error) {
	p.state = idle
	if err := p.structure.ForwardSparse(x, useDropout); err != nil {
		return nil, err
	}
	p.state = forwarded
	return p.Output(), nil
}

// Backward propagates the output errors, adding the parameters gradients to
// the ones not read yet.
func (p *Feedforward) Backward(outputErrors *tensor.Dense, propagateToInput bool) error {
	switch p.state {
	case idle:
		return errors.Wrap(seqnet.ErrInvalidState, "backward before forward")
	case backwardComplete:
		return errors.Wrap(seqnet.ErrInvalidState, "backward twice on the same input")
	}
	if propagateToInput && p.nn.InputKind() != network.Dense {
		return errors.Wrapf(seqnet.ErrUnsupportedInputKind, "input errors of %v inputs", p.nn.InputKind())
	}
	if err := arrays.Check(outputErrors, p.nn.OutputSize()); err != nil {
		return errors.WithMessage(err, "output errors")
	}
	if p.consumed {
		p.paramsErrors.Zero()
		p.consumed = false
	}
	if err := p.structure.Backward(outputErrors, p.paramsErrors, propagateToInput); err != nil {
		return err
	}
	p.summed = true
	p.state = backwardComplete
	p.propagated = propagateToInput
	p.log.Debug("backward")
	return nil
}

// Output returns a copy of the output of the last forward.
func (p *Feedforward) Output() *tensor.Dense {
	return p.structure.Output().Values().Clone().(*tensor.Dense)
}

// ParamsErrors returns a copy of the parameters gradients summed up to the last
// Backward. The next Backward starts a new sum.
func (p *Feedforward) ParamsErrors() (*network.Params, error) {
	if !p.summed {
		return nil, errors.Wrap(seqnet.ErrInvalidState, "no backward since the processor was acquired")
	}
	p.consumed = true
	return p.paramsErrors.Clone()
}

// InputErrors returns a copy of the errors of the input of the last backward.
func (p *Feedforward) InputErrors() (*tensor.Dense, error) {
	if p.state != backwardComplete || !p.propagated {
		return nil, errors.Wrap(seqnet.ErrInvalidState, "input errors were not computed")
	}
	return p.structure.InputErrors().Clone().(*tensor.Dense), nil
}
