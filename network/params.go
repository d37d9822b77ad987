package network

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
)

// Params are the parameters of a network, one container per layer. The same
// type holds the model and its gradients.
type Params struct {
	Layers []layers.Params
}

// Zero sets every array to zero.
func (p *Params) Zero() {
	for _, l := range p.Layers {
		layers.ZeroParams(l)
	}
}

// AssignValues copies the values of src.
func (p *Params) AssignValues(src *Params) error {
	if err := p.check(src); err != nil {
		return err
	}
	for i := range p.Layers {
		if err := layers.AssignParams(p.Layers[i], src.Layers[i]); err != nil {
			return errors.WithMessagef(err, "layer %d", i)
		}
	}
	return nil
}

// Add adds src in place.
func (p *Params) Add(src *Params) error {
	if err := p.check(src); err != nil {
		return err
	}
	for i := range p.Layers {
		if err := layers.AddParams(p.Layers[i], src.Layers[i]); err != nil {
			return errors.WithMessagef(err, "layer %d", i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p *Params) Clone() (*Params, error) {
	retVal := &Params{Layers: make([]layers.Params, len(p.Layers))}
	for i, l := range p.Layers {
		var err error
		if retVal.Layers[i], err = layers.CloneParams(l); err != nil {
			return nil, errors.WithMessagef(err, "layer %d", i)
		}
	}
	return retVal, nil
}

// Arrays returns the arrays of all the layers, in order.
func (p *Params) Arrays() []*layers.Param {
	var retVal []*layers.Param
	for _, l := range p.Layers {
		retVal = append(retVal, l.Arrays()...)
	}
	return retVal
}

func (p *Params) check(other *Params) error {
	if len(p.Layers) != len(other.Layers) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "params of %d layers and %d layers", len(p.Layers), len(other.Layers))
	}
	return nil
}
