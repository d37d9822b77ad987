package layers

import (
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
	"gorgonia.org/vecf64"
)

// DeltaRNNStructure is a Delta-RNN step:
//
//	wx = W·x
//	wh = U·yPrev
//	c = f(α ⊙ wx ⊙ wh + β1 ⊙ wx + β2 ⊙ wh + b)
//	r = σ(wx + br)
//	y = f((1 - r) ⊙ c + r ⊙ yPrev)
type DeltaRNNStructure struct {
	base
	params *DeltaRNNParams

	Candidate     *arrays.AugmentedArray
	PartitionGate *arrays.AugmentedArray

	wx, wh []float64
	// errors of wh, read by the previous step
	whErrors []float64
	wxErrors []float64
}

func NewDeltaRNN(in *Input, p *DeltaRNNParams, act activation.Function) (*DeltaRNNStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	b.out.SetActivation(b.act)
	n := p.OutputSize()
	return &DeltaRNNStructure{
		base:          b,
		params:        p,
		Candidate:     gate(n, b.act),
		PartitionGate: gate(n, activation.Sigmoid{}),
		wx:            make([]float64, n),
		wh:            make([]float64, n),
		whErrors:      make([]float64, n),
		wxErrors:      make([]float64, n),
	}, nil
}

func (l *DeltaRNNStructure) Kind() Kind     { return DeltaRNN }
func (l *DeltaRNNStructure) Params() Params { return l.params }

func (l *DeltaRNNStructure) Forward() error {
	prev, _, err := l.neighbours(DeltaRNN)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	p := outputOf(prev)
	ps := l.params
	alpha, beta1, beta2 := data(ps.Alpha.Values), data(ps.Beta1.Values), data(ps.Beta2.Values)

	l.in.linear(l.wx, ps.W.Values, 0)
	if p != nil {
		linear(l.wh, ps.U.Values, p, 0)
	} else {
		zero(l.wh)
	}

	c := values(l.Candidate)
	copy(c, data(ps.B.Values))
	for i := range c {
		c[i] += alpha[i]*l.wx[i]*l.wh[i] + beta1[i]*l.wx[i] + beta2[i]*l.wh[i]
	}
	l.Candidate.Activate()

	r := values(l.PartitionGate)
	copy(r, data(ps.PartitionB.Values))
	vecf64.Add(r, l.wx)
	l.PartitionGate.Activate()

	y := values(l.out)
	for i := range y {
		y[i] = (1 - r[i]) * c[i]
	}
	if p != nil {
		addMul(y, r, p)
	}
	l.out.Activate()
	return nil
}

func (l *DeltaRNNStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*DeltaRNNParams)
	if !ok {
		return paramsMismatch(DeltaRNN, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(DeltaRNN)
	if err != nil {
		return err
	}
	ps := l.params

	gy := errs(l.out)
	if next != nil {
		n := next.(*DeltaRNNStructure)
		linearT(gy, ps.U.Values, n.whErrors, 1)
		addMul(gy, errs(n.out), values(n.PartitionGate))
	}
	l.out.BackwardActivation()

	p := outputOf(prev)
	c, r := values(l.Candidate), values(l.PartitionGate)
	gc, gr := errs(l.Candidate), errs(l.PartitionGate)
	for i, g := range gy {
		gc[i] = g * (1 - r[i])
		gr[i] = -g * c[i]
		if p != nil {
			gr[i] += g * p[i]
		}
	}
	l.Candidate.BackwardActivation()
	l.PartitionGate.BackwardActivation()

	alpha, beta1, beta2 := data(ps.Alpha.Values), data(ps.Beta1.Values), data(ps.Beta2.Values)
	galpha, gbeta1, gbeta2 := data(pe.Alpha.Values), data(pe.Beta1.Values), data(pe.Beta2.Values)
	vecf64.Add(data(pe.B.Values), gc)
	vecf64.Add(data(pe.PartitionB.Values), gr)
	for i, g := range gc {
		galpha[i] += g * l.wx[i] * l.wh[i]
		gbeta1[i] += g * l.wx[i]
		gbeta2[i] += g * l.wh[i]
		l.wxErrors[i] = g*(alpha[i]*l.wh[i]+beta1[i]) + gr[i]
		l.whErrors[i] = g * (alpha[i]*l.wx[i] + beta2[i])
	}

	l.in.accumulate(pe.W.Values, l.wxErrors)
	if p != nil {
		outer(pe.U.Values, l.whErrors, p)
	} else {
		zero(l.whErrors)
	}

	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, ps.W.Values, l.wxErrors, 0)
		l.in.setErrors(gx)
	}
	return nil
}
