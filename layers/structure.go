package layers

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/pkg/errors"
)

// Structure is the computation of one layer at one time step.
//
// Forward reads the input and writes the output values. Backward expects the
// output errors to be set; it accumulates the parameters gradients into
// paramsErrors, which must have the same kind and sizes of Params(), and, when
// propagateToInput is true, overwrites the input errors.
//
// Recurrent structures read the previous step through their ContextWindow on
// Forward, and the already backpropagated next step on Backward.
type Structure interface {
	Kind() Kind
	Input() *Input
	Output() *arrays.AugmentedArray
	Params() Params
	SetWindow(w ContextWindow)

	Forward() error
	Backward(paramsErrors Params, propagateToInput bool) error
}

type base struct {
	in     *Input
	out    *arrays.AugmentedArray
	act    activation.Function
	window ContextWindow
}

func newBase(in *Input, p Params, act activation.Function) (base, error) {
	if in.Size() != p.InputSize() {
		return base{}, errors.Wrapf(seqnet.ErrShapeMismatch, "input of size %d for %v params with input size %d", in.Size(), p.Kind(), p.InputSize())
	}
	if act == nil {
		act = activation.Identity{}
	}
	return base{
		in:     in,
		out:    arrays.New(p.OutputSize()),
		act:    act,
		window: Empty{},
	}, nil
}

func (b *base) Input() *Input                  { return b.in }
func (b *base) Output() *arrays.AugmentedArray { return b.out }

// SetWindow sets the context window. A nil window is Empty.
func (b *base) SetWindow(w ContextWindow) {
	if w == nil {
		w = Empty{}
	}
	b.window = w
}

// neighbours returns the adjacent structures, checking they are of the same kind.
func (b *base) neighbours(kind Kind) (prev, next Structure, err error) {
	prev, next = b.window.PrevState(), b.window.NextState()
	if err = adjacent(prev, kind); err != nil {
		return nil, nil, err
	}
	if err = adjacent(next, kind); err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func adjacent(s Structure, kind Kind) error {
	if s != nil && s.Kind() != kind {
		return errors.Wrapf(seqnet.ErrInvalidState, "%v structure adjacent to a %v structure", s.Kind(), kind)
	}
	return nil
}

func paramsMismatch(want Kind, got Params) error {
	return errors.Wrapf(seqnet.ErrShapeMismatch, "%v params errors given to a %v structure", got.Kind(), want)
}

// gate creates a gate array with the given activation.
func gate(size int, act activation.Function) *arrays.AugmentedArray {
	a := arrays.New(size)
	a.SetActivation(act)
	return a
}

func errs(a *arrays.AugmentedArray) []float64 { return data(a.Errors()) }

// mulInto sets dst = a ⊙ b.
func mulInto(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// addMul adds a ⊙ b to dst.
func addMul(dst, a, b []float64) {
	for i := range dst {
		dst[i] += a[i] * b[i]
	}
}

// oneMinus sets dst = 1 - a.
func oneMinus(dst, a []float64) {
	for i := range dst {
		dst[i] = 1 - a[i]
	}
}

// NewStructure creates the structure of a single input layer of the given kind.
func NewStructure(kind Kind, in *Input, p Params, act activation.Function) (Structure, error) {
	if p.Kind() != kind {
		return nil, errors.Wrapf(seqnet.ErrShapeMismatch, "%v params for a %v structure", p.Kind(), kind)
	}
	switch kind {
	case Feedforward:
		return NewFeedforward(in, p.(*FeedforwardParams), act)
	case SimpleRecurrent:
		return NewSimpleRecurrent(in, p.(*SimpleRecurrentParams), act)
	case RAN:
		return NewRAN(in, p.(*RANParams), act)
	case GRU:
		return NewGRU(in, p.(*GRUParams), act)
	case LSTM:
		return NewLSTM(in, p.(*LSTMParams), act)
	case CFN:
		return NewCFN(in, p.(*CFNParams), act)
	case DeltaRNN:
		return NewDeltaRNN(in, p.(*DeltaRNNParams), act)
	}
	return nil, errors.Wrapf(seqnet.ErrUnimplemented, "no single input structure for %v layers", kind)
}
