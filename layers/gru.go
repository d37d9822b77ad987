package layers

import (
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
)

// GRUStructure is a Gated Recurrent Unit step:
//
//	r = σ(Wr·x + Ur·yPrev + br)
//	z = σ(Wz·x + Uz·yPrev + bz)
//	c = f(Wc·x + Uc·(r ⊙ yPrev) + bc)
//	y = (1 - z) ⊙ c + z ⊙ yPrev
//
// The activation of the layer is applied to the candidate, the output has none.
type GRUStructure struct {
	base
	params *GRUParams

	Candidate     *arrays.AugmentedArray
	ResetGate     *arrays.AugmentedArray
	PartitionGate *arrays.AugmentedArray

	resetPrev []float64 // r ⊙ yPrev
	buf       []float64
}

func NewGRU(in *Input, p *GRUParams, act activation.Function) (*GRUStructure, error) {
	b, err := newBase(in, p, act)
	if err != nil {
		return nil, err
	}
	n := p.OutputSize()
	return &GRUStructure{
		base:          b,
		params:        p,
		Candidate:     gate(n, b.act),
		ResetGate:     gate(n, activation.Sigmoid{}),
		PartitionGate: gate(n, activation.Sigmoid{}),
		resetPrev:     make([]float64, n),
		buf:           make([]float64, n),
	}, nil
}

func (l *GRUStructure) Kind() Kind     { return GRU }
func (l *GRUStructure) Params() Params { return l.params }

func (l *GRUStructure) Forward() error {
	prev, _, err := l.neighbours(GRU)
	if err != nil {
		return err
	}
	if err = l.in.prepare(); err != nil {
		return err
	}
	p := outputOf(prev)
	c, r, z := values(l.Candidate), values(l.ResetGate), values(l.PartitionGate)

	l.params.ResetGate.forward(r, l.in, p)
	l.params.PartitionGate.forward(z, l.in, p)
	l.ResetGate.Activate()
	l.PartitionGate.Activate()

	var rp []float64
	if p != nil {
		rp = l.resetPrev
		mulInto(rp, r, p)
	}
	l.params.Candidate.forward(c, l.in, rp)
	l.Candidate.Activate()

	y := values(l.out)
	oneMinus(y, z)
	for i := range y {
		y[i] *= c[i]
	}
	if p != nil {
		addMul(y, z, p)
	}
	return nil
}

func (l *GRUStructure) Backward(paramsErrors Params, propagateToInput bool) error {
	pe, ok := paramsErrors.(*GRUParams)
	if !ok {
		return paramsMismatch(GRU, paramsErrors)
	}
	if err := l.in.checkPropagation(propagateToInput); err != nil {
		return err
	}
	prev, next, err := l.neighbours(GRU)
	if err != nil {
		return err
	}

	gy := errs(l.out)
	if next != nil {
		n := next.(*GRUStructure)
		addMul(gy, errs(n.out), values(n.PartitionGate))
		linearT(gy, l.params.ResetGate.U.Values, errs(n.ResetGate), 1)
		linearT(gy, l.params.PartitionGate.U.Values, errs(n.PartitionGate), 1)
		linearT(l.buf, l.params.Candidate.U.Values, errs(n.Candidate), 0)
		addMul(gy, l.buf, values(n.ResetGate))
	}

	p := outputOf(prev)
	c, z := values(l.Candidate), values(l.PartitionGate)
	gc, gr, gz := errs(l.Candidate), errs(l.ResetGate), errs(l.PartitionGate)

	oneMinus(gc, z)
	for i := range gc {
		gc[i] *= gy[i]
		if p != nil {
			gz[i] = gy[i] * (p[i] - c[i])
		} else {
			gz[i] = -gy[i] * c[i]
		}
	}
	l.Candidate.BackwardActivation()
	l.PartitionGate.BackwardActivation()

	var rp []float64
	if p != nil {
		rp = l.resetPrev
		linearT(l.buf, l.params.Candidate.U.Values, gc, 0)
		mulInto(gr, l.buf, p)
	} else {
		zero(gr)
	}
	l.ResetGate.BackwardActivation()

	pe.Candidate.accumulate(gc, l.in, rp)
	pe.ResetGate.accumulate(gr, l.in, p)
	pe.PartitionGate.accumulate(gz, l.in, p)

	if propagateToInput {
		gx := l.in.gradient()
		linearT(gx, l.params.Candidate.W.Values, gc, 1)
		linearT(gx, l.params.ResetGate.W.Values, gr, 1)
		linearT(gx, l.params.PartitionGate.W.Values, gz, 1)
		l.in.setErrors(gx)
	}
	return nil
}
