package layers

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/pkg/errors"
	"gorgonia.org/vecf64"
)

// FeedforwardStructure computes y = f(W·x + b).
type FeedforwardStructure struct {
	base
	params *FeedforwardParams
}

func NewFeedforward(in *Input, p *FeedforwardParams, act activation.Function) (*FeedforwardStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	b.out.SetActivation(b.act)
	return &FeedforwardStructure{base: b, params: p}, nil
}

func (l *FeedforwardStructure) Kind() Kind     { return Feedforward }
func (l *FeedforwardStructure) Params() Params { return l.params }

func (l *FeedforwardStructure) Forward() error {
	if err := l.in.prepare(); err != nil {
		return err
	}
	z := values(l.out)
	copy(z, data(l.params.B.Values))
	l.in.linear(z, l.params.W.Values, 1)
	l.out.Activate()
	return nil
}

func (l *FeedforwardStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*FeedforwardParams)
	if !ok {
		return paramsMismatch(Feedforward, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	l.out.BackwardActivation()
	g := errs(l.out)
	vecf64.Add(data(pe.B.Values), g)
	l.in.accumulate(pe.W.Values, g)
	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.W.Values, g, 0)
		l.in.setErrors(gx)
	}
	return nil
}

// AffineStructure merges two inputs: y = f(W1·x1 + W2·x2 + b).
type AffineStructure struct {
	base
	in2    *Input
	params *AffineParams
}

func NewAffine(in1, in2 *Input, p *AffineParams, act activation.Function) (*AffineStructure, error) {
	b, err := newBase(in1, p, act)
	if err != nil {
		return nil, err
	}
	if in2.Size() != p.InputSize2() {
		return nil, errors.Wrapf(seqnet.ErrShapeMismatch, "second input of size %d, expected %d", in2.Size(), p.InputSize2())
	}
	b.out.SetActivation(b.act)
	return &AffineStructure{base: b, in2: in2, params: p}, nil
}

func (l *AffineStructure) Kind() Kind     { return Affine }
func (l *AffineStructure) Params() Params { return l.params }
func (l *AffineStructure) Input2() *Input { return l.in2 }

func (l *AffineStructure) Forward() error {
	if err := l.in.prepare(); err != nil {
		return err
	}
	if err := l.in2.prepare(); err != nil {
		return err
	}
	z := values(l.out)
	copy(z, data(l.params.B.Values))
	l.in.linear(z, l.params.W1.Values, 1)
	l.in2.linear(z, l.params.W2.Values, 1)
	l.out.Activate()
	return nil
}

// Backward propagates to both inputs when propagateToInput is true.
func (l *AffineStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*AffineParams)
	if !ok {
		return paramsMismatch(Affine, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	if err := l.in2.checkPropagation(propagateToInput); err != nil {
		return err
	}
	l.out.BackwardActivation()
	g := errs(l.out)
	vecf64.Add(data(pe.B.Values), g)
	l.in.accumulate(pe.W1.Values, g)
	l.in2.accumulate(pe.W2.Values, g)
	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.W1.Values, g, 0)
		l.in.setErrors(gx)
		gx2 := l.in2.gradient()
		linearT(gx2, l.params.W2.Values, g, 0)
		l.in2.setErrors(gx2)
	}
	return nil
}
