package layers

import (
	"fmt"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf64"
)

// Param is a named trainable array.
type Param struct {
	Name   string
	Values *tensor.Dense
	bias   bool
}

func newWeights(name string, rows, cols int) *Param {
	return &Param{Name: name, Values: arrays.Zeros(rows, cols)}
}

func newBiases(name string, size int) *Param {
	return &Param{Name: name, Values: arrays.Zeros(size), bias: true}
}

// IsBias returns true for bias vectors.
func (p *Param) IsBias() bool { return p.bias }

func (p *Param) String() string { return fmt.Sprintf("%s%v", p.Name, p.Values.Shape()) }

// Params is the parameter container of one layer. Arrays enumerates the
// trainable arrays in a fixed order, which is the same for any two Params of
// the same kind and sizes.
type Params interface {
	Kind() Kind
	InputSize() int
	OutputSize() int
	Arrays() []*Param
}

type dims struct{ in, out int }

func (d dims) InputSize() int  { return d.in }
func (d dims) OutputSize() int { return d.out }

// Unit groups the weights of one gate (or candidate): input weights W,
// recurrent weights U and biases B. U and B are nil when the unit has none.
type Unit struct {
	W, U, B *Param
}

func newUnit(name string, in, out int, recurrent, bias bool) Unit {
	u := Unit{W: newWeights(name+"_w", out, in)}
	if recurrent {
		u.U = newWeights(name+"_u", out, out)
	}
	if bias {
		u.B = newBiases(name+"_b", out)
	}
	return u
}

func (u Unit) arrays() []*Param {
	retVal := []*Param{u.W}
	if u.U != nil {
		retVal = append(retVal, u.U)
	}
	if u.B != nil {
		retVal = append(retVal, u.B)
	}
	return retVal
}

// forward sets dst = W·x + U·prev + B. prev may be nil.
func (u Unit) forward(dst []float64, in *Input, prev []float64) {
	if u.B != nil {
		copy(dst, data(u.B.Values))
		in.linear(dst, u.W.Values, 1)
	} else {
		in.linear(dst, u.W.Values, 0)
	}
	if prev != nil && u.U != nil {
		linear(dst, u.U.Values, prev, 1)
	}
}

// accumulate adds the gradients of the unit, given the errors g of its output,
// into the unit's counterpart in the params errors.
func (u Unit) accumulate(g []float64, in *Input, prev []float64) {
	if u.B != nil {
		vecf64.Add(data(u.B.Values), g)
	}
	in.accumulate(u.W.Values, g)
	if prev != nil && u.U != nil {
		outer(u.U.Values, g, prev)
	}
}

// FeedforwardParams are the parameters of a Feedforward layer.
type FeedforwardParams struct {
	dims
	W, B *Param
}

func NewFeedforwardParams(in, out int) *FeedforwardParams {
	return &FeedforwardParams{dims: dims{in, out}, W: newWeights("w", out, in), B: newBiases("b", out)}
}

func (p *FeedforwardParams) Kind() Kind       { return Feedforward }
func (p *FeedforwardParams) Arrays() []*Param { return []*Param{p.W, p.B} }

// AffineParams are the parameters of an Affine layer merging two inputs.
type AffineParams struct {
	dims
	in2       int
	W1, W2, B *Param
}

func NewAffineParams(in1, in2, out int) *AffineParams {
	return &AffineParams{
		dims: dims{in1, out},
		in2:  in2,
		W1:   newWeights("w1", out, in1),
		W2:   newWeights("w2", out, in2),
		B:    newBiases("b", out),
	}
}

func (p *AffineParams) Kind() Kind       { return Affine }
func (p *AffineParams) InputSize2() int  { return p.in2 }
func (p *AffineParams) Arrays() []*Param { return []*Param{p.W1, p.W2, p.B} }

// SimpleRecurrentParams are the parameters of a SimpleRecurrent layer.
type SimpleRecurrentParams struct {
	dims
	Unit
}

func NewSimpleRecurrentParams(in, out int) *SimpleRecurrentParams {
	return &SimpleRecurrentParams{dims: dims{in, out}, Unit: newUnit("unit", in, out, true, true)}
}

func (p *SimpleRecurrentParams) Kind() Kind       { return SimpleRecurrent }
func (p *SimpleRecurrentParams) Arrays() []*Param { return p.Unit.arrays() }

// RANParams are the parameters of a Recurrent Additive Network layer.
type RANParams struct {
	dims
	Candidate, InputGate, ForgetGate Unit
}

func NewRANParams(in, out int) *RANParams {
	return &RANParams{
		dims:       dims{in, out},
		Candidate:  newUnit("candidate", in, out, false, true),
		InputGate:  newUnit("inputGate", in, out, true, true),
		ForgetGate: newUnit("forgetGate", in, out, true, true),
	}
}

func (p *RANParams) Kind() Kind { return RAN }
func (p *RANParams) Arrays() []*Param {
	return concat(p.Candidate, p.InputGate, p.ForgetGate)
}

// GRUParams are the parameters of a Gated Recurrent Unit layer.
type GRUParams struct {
	dims
	Candidate, ResetGate, PartitionGate Unit
}

func NewGRUParams(in, out int) *GRUParams {
	return &GRUParams{
		dims:          dims{in, out},
		Candidate:     newUnit("candidate", in, out, true, true),
		ResetGate:     newUnit("resetGate", in, out, true, true),
		PartitionGate: newUnit("partitionGate", in, out, true, true),
	}
}

func (p *GRUParams) Kind() Kind { return GRU }
func (p *GRUParams) Arrays() []*Param {
	return concat(p.Candidate, p.ResetGate, p.PartitionGate)
}

// LSTMParams are the parameters of a Long Short-Term Memory layer.
type LSTMParams struct {
	dims
	InputGate, OutputGate, ForgetGate, Candidate Unit
}

func NewLSTMParams(in, out int) *LSTMParams {
	return &LSTMParams{
		dims:       dims{in, out},
		InputGate:  newUnit("inputGate", in, out, true, true),
		OutputGate: newUnit("outputGate", in, out, true, true),
		ForgetGate: newUnit("forgetGate", in, out, true, true),
		Candidate:  newUnit("candidate", in, out, true, true),
	}
}

func (p *LSTMParams) Kind() Kind { return LSTM }
func (p *LSTMParams) Arrays() []*Param {
	return concat(p.InputGate, p.OutputGate, p.ForgetGate, p.Candidate)
}

// CFNParams are the parameters of a Chaos Free Network layer.
// The candidate has input weights only.
type CFNParams struct {
	dims
	Candidate, InputGate, ForgetGate Unit
}

func NewCFNParams(in, out int) *CFNParams {
	return &CFNParams{
		dims:       dims{in, out},
		Candidate:  newUnit("candidate", in, out, false, false),
		InputGate:  newUnit("inputGate", in, out, true, true),
		ForgetGate: newUnit("forgetGate", in, out, true, true),
	}
}

func (p *CFNParams) Kind() Kind { return CFN }
func (p *CFNParams) Arrays() []*Param {
	return concat(p.Candidate, p.InputGate, p.ForgetGate)
}

// DeltaRNNParams are the parameters of a Delta-RNN layer.
//
// W and U project the input and the previous output; Alpha, Beta1 and Beta2
// mix the two projections into the candidate, whose bias is B. PartitionB is the
// bias of the partition gate.
type DeltaRNNParams struct {
	dims
	W, U                *Param
	B, PartitionB       *Param
	Alpha, Beta1, Beta2 *Param
}

func NewDeltaRNNParams(in, out int) *DeltaRNNParams {
	return &DeltaRNNParams{
		dims:       dims{in, out},
		W:          newWeights("w", out, in),
		U:          newWeights("u", out, out),
		B:          newBiases("b", out),
		PartitionB: newBiases("partition_b", out),
		Alpha:      &Param{Name: "alpha", Values: arrays.Zeros(out)},
		Beta1:      &Param{Name: "beta1", Values: arrays.Zeros(out)},
		Beta2:      &Param{Name: "beta2", Values: arrays.Zeros(out)},
	}
}

func (p *DeltaRNNParams) Kind() Kind { return DeltaRNN }
func (p *DeltaRNNParams) Arrays() []*Param {
	return []*Param{p.W, p.U, p.B, p.PartitionB, p.Alpha, p.Beta1, p.Beta2}
}

func concat(units ...Unit) []*Param {
	var retVal []*Param
	for _, u := range units {
		retVal = append(retVal, u.arrays()...)
	}
	return retVal
}

// NewParams creates zeroed parameters for a layer of the given kind.
// Affine layers have two inputs and are built with NewAffineParams.
func NewParams(kind Kind, in, out int) (Params, error) {
	switch kind {
	case Feedforward:
		return NewFeedforwardParams(in, out), nil
	case SimpleRecurrent:
		return NewSimpleRecurrentParams(in, out), nil
	case RAN:
		return NewRANParams(in, out), nil
	case GRU:
		return NewGRUParams(in, out), nil
	case LSTM:
		return NewLSTMParams(in, out), nil
	case CFN:
		return NewCFNParams(in, out), nil
	case DeltaRNN:
		return NewDeltaRNNParams(in, out), nil
	}
	return nil, errors.Wrapf(seqnet.ErrUnimplemented, "no single input parameters for %v layers", kind)
}

// ZerosLike creates zeroed parameters of the same kind and sizes of p.
func ZerosLike(p Params) (Params, error) {
	if a, ok := p.(*AffineParams); ok {
		return NewAffineParams(a.in, a.in2, a.out), nil
	}
	return NewParams(p.Kind(), p.InputSize(), p.OutputSize())
}

// CloneParams deep copies p.
func CloneParams(p Params) (Params, error) {
	retVal, err := ZerosLike(p)
	if err != nil {
		return nil, err
	}
	if err = AssignParams(retVal, p); err != nil {
		return nil, err
	}
	return retVal, nil
}

// ZeroParams sets every array of p to zero.
func ZeroParams(p Params) {
	for _, a := range p.Arrays() {
		a.Values.Zero()
	}
}

// AssignParams copies the values of src into dst.
func AssignParams(dst, src Params) error {
	return pairwise(dst, src, func(d, s []float64) { copy(d, s) })
}

// AddParams adds src to dst in place.
func AddParams(dst, src Params) error {
	return pairwise(dst, src, vecf64.Add)
}

func pairwise(dst, src Params, fn func(d, s []float64)) error {
	da, sa := dst.Arrays(), src.Arrays()
	if dst.Kind() != src.Kind() || len(da) != len(sa) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "%v params and %v params", dst.Kind(), src.Kind())
	}
	for i := range da {
		if !arrays.SameShape(da[i].Values.Shape(), sa[i].Values.Shape()) {
			return errors.Wrapf(seqnet.ErrShapeMismatch, "%v vs %v", da[i], sa[i])
		}
	}
	for i := range da {
		fn(data(da[i].Values), data(sa[i].Values))
	}
	return nil
}

// InitParams fills p using gorgonia initialisers: weights matrices with weights,
// biases with biases. Gating vectors which are not biases are set to one.
func InitParams(p Params, weights, biases G.InitWFn) {
	ones := G.Ones()
	for _, a := range p.Arrays() {
		shape := a.Values.Shape().Clone()
		var backing interface{}
		switch {
		case a.bias:
			backing = biases(tensor.Float64, shape...)
		case shape.Dims() == 2:
			backing = weights(tensor.Float64, shape...)
		default:
			backing = ones(tensor.Float64, shape...)
		}
		copy(data(a.Values), backing.([]float64))
	}
}
