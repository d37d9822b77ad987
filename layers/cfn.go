package layers

import (
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
)

// CFNStructure is a Chaos Free Network step:
//
//	θ = σ(Wf·x + Uf·yPrev + bf)
//	η = σ(Wi·x + Ui·yPrev + bi)
//	c = f(Wc·x)
//	y = θ ⊙ f(yPrev) + η ⊙ c
type CFNStructure struct {
	base
	params *CFNParams

	Candidate  *arrays.AugmentedArray
	InputGate  *arrays.AugmentedArray
	ForgetGate *arrays.AugmentedArray

	activatedPrev []float64 // f(yPrev), nil at the first step
	buf           []float64
}

func NewCFN(in *Input, p *CFNParams, act activation.Function) (*CFNStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	n := p.OutputSize()
	return &CFNStructure{
		base:       b,
		params:     p,
		Candidate:  gate(n, b.act),
		InputGate:  gate(n, activation.Sigmoid{}),
		ForgetGate: gate(n, activation.Sigmoid{}),
		buf:        make([]float64, n),
	}, nil
}

func (l *CFNStructure) Kind() Kind     { return CFN }
func (l *CFNStructure) Params() Params { return l.params }

func (l *CFNStructure) Forward() error {
	prev, _, err := l.neighbours(CFN)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	p := outputOf(prev)
	c, eta, theta := values(l.Candidate), values(l.InputGate), values(l.ForgetGate)

	l.params.Candidate.forward(c, l.in, nil)
	l.params.InputGate.forward(eta, l.in, p)
	l.params.ForgetGate.forward(theta, l.in, p)
	l.Candidate.Activate()
	l.InputGate.Activate()
	l.ForgetGate.Activate()

	y := values(l.out)
	mulInto(y, eta, c)
	if p == nil {
		l.activatedPrev = nil
		return nil
	}
	if l.activatedPrev == nil {
		l.activatedPrev = make([]float64, len(p))
	}
	l.act.Apply(l.activatedPrev, p)
	addMul(y, theta, l.activatedPrev)
	return nil
}

func (l *CFNStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*CFNParams)
	if !ok {
		return paramsMismatch(CFN, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(CFN)
	if err != nil {
		return err
	}

	gy := errs(l.out)
	if next != nil {
		n := next.(*CFNStructure)
		linearT(gy, l.params.InputGate.U.Values, errs(n.InputGate), 1)
		linearT(gy, l.params.ForgetGate.U.Values, errs(n.ForgetGate), 1)
		mulInto(l.buf, errs(n.out), values(n.ForgetGate))
		l.act.Backprop(l.buf, n.activatedPrev)
		for i, v := range l.buf {
			gy[i] += v
		}
	}

	gc, geta, gtheta := errs(l.Candidate), errs(l.InputGate), errs(l.ForgetGate)
	mulInto(geta, gy, values(l.Candidate))
	mulInto(gc, gy, values(l.InputGate))
	if l.activatedPrev != nil {
		mulInto(gtheta, gy, l.activatedPrev)
	} else {
		zero(gtheta)
	}
	l.Candidate.BackwardActivation()
	l.InputGate.BackwardActivation()
	l.ForgetGate.BackwardActivation()

	p := outputOf(prev)
	pe.Candidate.accumulate(gc, l.in, nil)
	pe.InputGate.accumulate(geta, l.in, p)
	pe.ForgetGate.accumulate(gtheta, l.in, p)

	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.Candidate.W.Values, gc, 1)
		linearT(gx, l.params.InputGate.W.Values, geta, 1)
		linearT(gx, l.params.ForgetGate.W.Values, gtheta, 1)
		l.in.setErrors(gx)
	}
	return nil
}
