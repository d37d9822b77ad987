package layers

import (
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
)

// RANStructure is a Recurrent Additive Network step:
//
//	c = Wc·x + bc
//	i = σ(Wi·x + Ui·yPrev + bi)
//	f = σ(Wf·x + Uf·yPrev + bf)
//	y = f(i ⊙ c + f ⊙ yPrev)
type RANStructure struct {
	base
	params *RANParams

	Candidate  *arrays.AugmentedArray
	InputGate  *arrays.AugmentedArray
	ForgetGate *arrays.AugmentedArray
}

func NewRAN(in *Input, p *RANParams, act activation.Function) (*RANStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	b.out.SetActivation(b.act)
	n := p.OutputSize()
	return &RANStructure{
		base:       b,
		params:     p,
		Candidate:  arrays.New(n),
		InputGate:  gate(n, activation.Sigmoid{}),
		ForgetGate: gate(n, activation.Sigmoid{}),
	}, nil
}

func (l *RANStructure) Kind() Kind     { return RAN }
func (l *RANStructure) Params() Params { return l.params }

func (l *RANStructure) Forward() error {
	prev, _, err := l.neighbours(RAN)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	p := outputOf(prev)
	c, i, f := values(l.Candidate), values(l.InputGate), values(l.ForgetGate)

	l.params.Candidate.forward(c, l.in, nil)
	l.params.InputGate.forward(i, l.in, p)
	l.params.ForgetGate.forward(f, l.in, p)
	l.InputGate.Activate()
	l.ForgetGate.Activate()

	y := values(l.out)
	mulInto(y, i, c)
	if p != nil {
		addMul(y, f, p)
	}
	l.out.Activate()
	return nil
}

func (l *RANStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*RANParams)
	if !ok {
		return paramsMismatch(RAN, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(RAN)
	if err != nil {
		return err
	}

	gy := errs(l.out)
	if next != nil {
		n := next.(*RANStructure)
		linearT(gy, l.params.InputGate.U.Values, errs(n.InputGate), 1)
		linearT(gy, l.params.ForgetGate.U.Values, errs(n.ForgetGate), 1)
		addMul(gy, errs(n.out), values(n.ForgetGate))
	}
	l.out.BackwardActivation()

	p := outputOf(prev)
	gc, gi, gf := errs(l.Candidate), errs(l.InputGate), errs(l.ForgetGate)
	mulInto(gc, gy, values(l.InputGate))
	mulInto(gi, gy, values(l.Candidate))
	if p != nil {
		mulInto(gf, gy, p)
	} else {
		zero(gf)
	}
	l.InputGate.BackwardActivation()
	l.ForgetGate.BackwardActivation()

	pe.Candidate.accumulate(gc, l.in, nil)
	pe.InputGate.accumulate(gi, l.in, p)
	pe.ForgetGate.accumulate(gf, l.in, p)

	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.Candidate.W.Values, gc, 1)
		linearT(gx, l.params.InputGate.W.Values, gi, 1)
		linearT(gx, l.params.ForgetGate.W.Values, gf, 1)
		l.in.setErrors(gx)
	}
	return nil
}
