// Package processor runs networks on whole inputs: single vectors for
// feedforward networks and sequences for recurrent ones, with
// backpropagation through time. Processors are reused through pools.
package processor

import (
	"math/rand"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/gorgonia/seqnet/layers"
	"github.com/gorgonia/seqnet/network"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorgonia.org/tensor"
)

type state byte

const (
	idle state = iota
	forwarded
	backwardComplete
)

func (s state) String() string {
	switch s {
	case forwarded:
		return "forwarded"
	case backwardComplete:
		return "backward complete"
	}
	return "idle"
}

// Recurrent runs a network over sequences, keeping one network structure per
// time step. The structures are kept when the processor is reused, and only
// grow to fit the longest sequence seen.
//
// The parameters gradients of successive sequences are summed until they are
// read with ParamsErrors. A sequence adds to the sum only when its whole
// backward succeeds.
type Recurrent struct {
	id         int
	nn         *network.NeuralNetwork
	structures []*network.Structure
	length     int
	rng        *rand.Rand

	paramsErrors *network.Params
	seqErrors    *network.Params
	consumed     bool
	summed       bool
	state        state
	propagated   bool

	log logrus.FieldLogger
}

// NewRecurrent creates a processor of nn with the given id.
func NewRecurrent(nn *network.NeuralNetwork, id int) (*Recurrent, error) {
	pe, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	se, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	return &Recurrent{
		id:           id,
		nn:           nn,
		rng:          rand.New(rand.NewSource(nn.Seed + int64(id))),
		paramsErrors: pe,
		seqErrors:    se,
		consumed:     true,
		log:          nn.Logger().WithFields(logrus.Fields{"processor": "recurrent", "id": id}),
	}, nil
}

func (p *Recurrent) ID() int { return p.id }

// reset drops the sequence and the gradients of a previous owner.
func (p *Recurrent) reset() {
	p.length = 0
	p.state = idle
	p.consumed = true
	p.summed = false
	p.propagated = false
}

// layerStates resolves the structures of one layer across the time steps.
type layerStates struct {
	p     *Recurrent
	layer int
}

func (s layerStates) StateAt(step int) layers.Structure {
	if step < 0 || step >= s.p.length {
		return nil
	}
	return s.p.structures[step].Layers[s.layer]
}

// grow makes sure there are at least n structures.
func (p *Recurrent) grow(n int) error {
	for len(p.structures) < n {
		s, err := network.NewStructure(p.nn, p.rng)
		if err != nil {
			return err
		}
		p.structures = append(p.structures, s)
	}
	return nil
}

func (p *Recurrent) setWindows(step int) {
	p.structures[step].SetWindows(func(layer int) layers.ContextWindow {
		return layers.WindowAt(layerStates{p, layer}, step, p.length)
	})
}

// begin prepares the structures of a sequence of the given length.
func (p *Recurrent) begin(length int) error {
	if length == 0 {
		return errors.Wrap(seqnet.ErrLengthMismatch, "empty sequence")
	}
	if err := p.grow(length); err != nil {
		return err
	}
	p.length = length
	for step := 0; step < length; step++ {
		p.setWindows(step)
	}
	p.state = forwarded
	return nil
}

func (p *Recurrent) checkInput(kind network.InputKind) error {
	if p.nn.InputKind() != kind {
		return errors.Wrapf(seqnet.ErrUnsupportedInputKind, "%v input given to a network with %v input", kind, p.nn.InputKind())
	}
	return nil
}

// Forward runs the network over a sequence of dense inputs and returns a copy
// of the outputs.
func (p *Recurrent) Forward(seq []*tensor.Dense, useDropout bool) ([]*tensor.Dense, error) {
	if err := p.checkInput(network.Dense); err != nil {
		return nil, err
	}
	if err := p.begin(len(seq)); err != nil {
		return nil, err
	}
	for step, x := range seq {
		if err := p.structures[step].Forward(x, useDropout); err != nil {
			p.state = idle
			return nil, errors.WithMessagef(err, "step %d", step)
		}
	}
	p.log.WithField("steps", p.length).Debug("forward")
	return p.Outputs(), nil
}

// ForwardSparse runs the network over a sequence of sparse binary inputs and
// returns a copy of the outputs.
func (p *Recurrent) ForwardSparse(seq []*arrays.SparseBinary, useDropout bool) ([]*tensor.Dense, error) {
	if err := p.checkInput(network.SparseBinary); err != nil {
		return nil, err
	}
	if err := p.begin(len(seq)); err != nil {
		return nil, err
	}
	for step, x := range seq {
		if err := p.structures[step].ForwardSparse(x, useDropout); err != nil {
			p.state = idle
			return nil, errors.WithMessagef(err, "step %d", step)
		}
	}
	p.log.WithField("steps", p.length).Debug("forward")
	return p.Outputs(), nil
}

// ForwardStep appends one step to the current sequence, or starts a new one
// when firstState is true, and returns a copy of its output.
func (p *Recurrent) ForwardStep(x *tensor.Dense, firstState, useDropout bool) (*tensor.Dense, error) {
	if err := p.checkInput(network.Dense); err != nil {
		return nil, err
	}
	if !firstState && p.state != forwarded {
		return nil, errors.Wrapf(seqnet.ErrInvalidState, "cannot append a step to a sequence in state %v", p.state)
	}
	if firstState {
		p.length = 0
	}
	step := p.length
	if err := p.grow(step + 1); err != nil {
		return nil, err
	}
	p.length++
	p.setWindows(step)
	if step > 0 {
		p.setWindows(step - 1)
	}
	p.state = forwarded
	s := p.structures[step]
	if err := s.Forward(x, useDropout); err != nil {
		p.state = idle
		return nil, errors.WithMessagef(err, "step %d", step)
	}
	return s.Output().Values().Clone().(*tensor.Dense), nil
}

// Backward propagates the output errors of every step through the sequence, in
// reverse order, summing the parameters gradients. The errors of the inputs are
// computed only when propagateToInput is true.
func (p *Recurrent) Backward(outputErrors []*tensor.Dense, propagateToInput bool) error {
	switch p.state {
	case idle:
		return errors.Wrap(seqnet.ErrInvalidState, "backward before forward")
	case backwardComplete:
		return errors.Wrap(seqnet.ErrInvalidState, "backward twice on the same sequence")
	}
	if len(outputErrors) != p.length {
		return errors.Wrapf(seqnet.ErrLengthMismatch, "%d output errors for a sequence of length %d", len(outputErrors), p.length)
	}
	if propagateToInput && p.nn.InputKind() != network.Dense {
		return errors.Wrapf(seqnet.ErrUnsupportedInputKind, "input errors of %v inputs", p.nn.InputKind())
	}

	for step, e := range outputErrors {
		if err := arrays.Check(e, p.nn.OutputSize()); err != nil {
			return errors.WithMessagef(err, "output errors of step %d", step)
		}
	}

	p.seqErrors.Zero()
	for step := p.length - 1; step >= 0; step-- {
		if err := p.structures[step].Backward(outputErrors[step], p.seqErrors, propagateToInput); err != nil {
			return errors.WithMessagef(err, "step %d", step)
		}
	}
	if err := p.addSequence(); err != nil {
		return err
	}
	p.state = backwardComplete
	p.propagated = propagateToInput
	p.log.WithField("steps", p.length).Debug("backward")
	return nil
}

// Outputs returns a copy of the outputs of the current sequence.
func (p *Recurrent) Outputs() []*tensor.Dense {
	retVal := make([]*tensor.Dense, p.length)
	for step := range retVal {
		retVal[step] = p.structures[step].Output().Values().Clone().(*tensor.Dense)
	}
	return retVal
}

func (p *Recurrent) addSequence() error {
	if p.consumed {
		if err := p.paramsErrors.AssignValues(p.seqErrors); err != nil {
			return err
		}
		p.consumed = false
	} else if err := p.paramsErrors.Add(p.seqErrors); err != nil {
		return err
	}
	p.summed = true
	return nil
}

// ParamsErrors returns a copy of the parameters gradients summed up to the last
// Backward. Reading again returns the same sum. The next Backward starts a new one.
func (p *Recurrent) ParamsErrors() (*network.Params, error) {
	if !p.summed {
		return nil, errors.Wrap(seqnet.ErrInvalidState, "no backward since the processor was acquired")
	}
	p.consumed = true
	return p.paramsErrors.Clone()
}

// InputErrors returns a copy of the errors of the inputs of the last backward.
func (p *Recurrent) InputErrors() ([]*tensor.Dense, error) {
	if p.state != backwardComplete || !p.propagated {
		return nil, errors.Wrap(seqnet.ErrInvalidState, "input errors were not computed")
	}
	retVal := make([]*tensor.Dense, p.length)
	for step := range retVal {
		retVal[step] = p.structures[step].InputErrors().Clone().(*tensor.Dense)
	}
	return retVal, nil
}
