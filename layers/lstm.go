package layers

import (
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
)

// LSTMStructure is a Long Short-Term Memory step:
//
//	i = σ(Wi·x + Ui·yPrev + bi)
//	o = σ(Wo·x + Uo·yPrev + bo)
//	f = σ(Wf·x + Uf·yPrev + bf)
//	c = f(Wc·x + Uc·yPrev + bc)
//	s = i ⊙ c + f ⊙ sPrev
//	y = o ⊙ f(s)
//
// Cell keeps s as its not activated values and f(s) as its values.
type LSTMStructure struct {
	base
	params *LSTMParams

	InputGate  *arrays.AugmentedArray
	OutputGate *arrays.AugmentedArray
	ForgetGate *arrays.AugmentedArray
	Candidate  *arrays.AugmentedArray
	Cell       *arrays.AugmentedArray
}

func NewLSTM(in *Input, p *LSTMParams, act activation.Function) (*LSTMStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	n := p.OutputSize()
	return &LSTMStructure{
		base:       b,
		params:     p,
		InputGate:  gate(n, activation.Sigmoid{}),
		OutputGate: gate(n, activation.Sigmoid{}),
		ForgetGate: gate(n, activation.Sigmoid{}),
		Candidate:  gate(n, b.act),
		Cell:       gate(n, b.act),
	}, nil
}

func (l *LSTMStructure) Kind() Kind     { return LSTM }
func (l *LSTMStructure) Params() Params { return l.params }

func cellOf(s Structure) []float64 {
	if s == nil {
		return nil
	}
	return data(s.(*LSTMStructure).Cell.NotActivatedValues())
}

func (l *LSTMStructure) Forward() error {
	prev, _, err := l.neighbours(LSTM)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	p := outputOf(prev)
	i, o, f, c := values(l.InputGate), values(l.OutputGate), values(l.ForgetGate), values(l.Candidate)

	l.params.InputGate.forward(i, l.in, p)
	l.params.OutputGate.forward(o, l.in, p)
	l.params.ForgetGate.forward(f, l.in, p)
	l.params.Candidate.forward(c, l.in, p)
	l.InputGate.Activate()
	l.OutputGate.Activate()
	l.ForgetGate.Activate()
	l.Candidate.Activate()

	s := values(l.Cell)
	mulInto(s, i, c)
	if sPrev := cellOf(prev); sPrev != nil {
		addMul(s, f, sPrev)
	}
	l.Cell.Activate()

	mulInto(values(l.out), o, values(l.Cell))
	return nil
}

func (l *LSTMStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*LSTMParams)
	if !ok {
		return paramsMismatch(LSTM, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(LSTM)
	if err != nil {
		return err
	}

	gy := errs(l.out)
	var n *LSTMStructure
	if next != nil {
		n = next.(*LSTMStructure)
		linearT(gy, l.params.InputGate.U.Values, errs(n.InputGate), 1)
		linearT(gy, l.params.OutputGate.U.Values, errs(n.OutputGate), 1)
		linearT(gy, l.params.ForgetGate.U.Values, errs(n.ForgetGate), 1)
		linearT(gy, l.params.Candidate.U.Values, errs(n.Candidate), 1)
	}

	gi, gOut, gf, gc, gs := errs(l.InputGate), errs(l.OutputGate), errs(l.ForgetGate), errs(l.Candidate), errs(l.Cell)
	mulInto(gOut, gy, values(l.Cell))
	l.OutputGate.BackwardActivation()

	mulInto(gs, gy, values(l.OutputGate))
	l.Cell.BackwardActivation()
	if n != nil {
		addMul(gs, errs(n.Cell), values(n.ForgetGate))
	}

	mulInto(gi, gs, values(l.Candidate))
	mulInto(gc, gs, values(l.InputGate))
	if sPrev := cellOf(prev); sPrev != nil {
		mulInto(gf, gs, sPrev)
	} else {
		zero(gf)
	}
	l.InputGate.BackwardActivation()
	l.ForgetGate.BackwardActivation()
	l.Candidate.BackwardActivation()

	p := outputOf(prev)
	pe.InputGate.accumulate(gi, l.in, p)
	pe.OutputGate.accumulate(gOut, l.in, p)
	pe.ForgetGate.accumulate(gf, l.in, p)
	pe.Candidate.accumulate(gc, l.in, p)

	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.InputGate.W.Values, gi, 1)
		linearT(gx, l.params.OutputGate.W.Values, gOut, 1)
		linearT(gx, l.params.ForgetGate.W.Values, gf, 1)
		linearT(gx, l.params.Candidate.W.Values, gc, 1)
		l.in.setErrors(gx)
	}
	return nil
}
