package layers

import (
	"github.com/gorgonia/seqnet/activation"
)

// SimpleRecurrentStructure computes y = f(W·x + U·yPrev + b).
type SimpleRecurrentStructure struct {
	base
	params *SimpleRecurrentParams
}

func NewSimpleRecurrent(in *Input, p *SimpleRecurrentParams, act activation.Function) (*SimpleRecurrentStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	b.out.SetActivation(b.act)
	return &SimpleRecurrentStructure{base: b, params: p}, nil
}

func (l *SimpleRecurrentStructure) Kind() Kind     { return SimpleRecurrent }
func (l *SimpleRecurrentStructure) Params() Params { return l.params }

func (l *SimpleRecurrentStructure) Forward() error {
	prev, _, err := l.neighbours(SimpleRecurrent)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	l.params.forward(values(l.out), l.in, outputOf(prev))
	l.out.Activate()
	return nil
}

func (l *SimpleRecurrentStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*SimpleRecurrentParams)
	if !ok {
		return paramsMismatch(SimpleRecurrent, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(SimpleRecurrent)
	if err != nil {
		return err
	}

	g := errs(l.out)
	if next != nil {
		linearT(g, l.params.U.Values, errs(next.Output()), 1)
	}
	l.out.BackwardActivation()

	pe.Unit.accumulate(g, l.in, outputOf(prev))
	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.W.Values, g, 0)
		l.in.setErrors(gx)
	}
	return nil
}

// outputOf returns the output values of s, or nil when s is nil.
func outputOf(s Structure) []float64 {
	if s == nil {
		return nil
	}
	return values(s.Output())
}
