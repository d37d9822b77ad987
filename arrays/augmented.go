package arrays

import (
	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/activation"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf64"
)

// AugmentedArray is a value buffer paired with an error buffer of the same shape,
// and an optional activation function.
//
// The errors are zero at construction.
type AugmentedArray struct {
	values       *tensor.Dense
	errors       *tensor.Dense
	notActivated *tensor.Dense // set with an activation
	activation   activation.Function
}

// New creates an AugmentedArray of zeros.
func New(shape ...int) *AugmentedArray {
	return &AugmentedArray{
		values: Zeros(shape...),
		errors: Zeros(shape...),
	}
}

// FromValues creates an AugmentedArray whose shape and values are copied from v.
func FromValues(v *tensor.Dense) (*AugmentedArray, error) {
	if err := checkFloat64(v); err != nil {
		return nil, err
	}
	a := New(v.Shape().Clone()...)
	copy(Float64s(a.values), Float64s(v))
	return a, nil
}

func (a *AugmentedArray) Values() *tensor.Dense { return a.values }
func (a *AugmentedArray) Errors() *tensor.Dense { return a.errors }
func (a *AugmentedArray) Shape() tensor.Shape   { return a.values.Shape() }
func (a *AugmentedArray) Size() int             { return a.values.Shape().TotalSize() }

// AssignValues overwrites the values in place.
func (a *AugmentedArray) AssignValues(v *tensor.Dense) error {
	return errors.WithMessage(Copy(a.values, v), "assign values")
}

// AssignErrors overwrites the errors in place.
func (a *AugmentedArray) AssignErrors(e *tensor.Dense) error {
	return errors.WithMessage(Copy(a.errors, e), "assign errors")
}

// AccumulateErrors adds e to the errors.
func (a *AugmentedArray) AccumulateErrors(e *tensor.Dense) error {
	if err := checkFloat64(e); err != nil {
		return err
	}
	if !SameShape(a.errors.Shape(), e.Shape()) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "cannot accumulate errors of shape %v into %v", e.Shape(), a.errors.Shape())
	}
	vecf64.Add(Float64s(a.errors), Float64s(e))
	return nil
}

// ZeroErrors resets the errors.
func (a *AugmentedArray) ZeroErrors() { a.errors.Zero() }

// SetActivation sets the activation function. A nil function removes it.
func (a *AugmentedArray) SetActivation(fn activation.Function) {
	a.activation = fn
	if fn == nil {
		a.notActivated = nil
		return
	}
	if a.notActivated == nil {
		a.notActivated = Zeros(a.values.Shape().Clone()...)
	}
}

func (a *AugmentedArray) Activation() activation.Function { return a.activation }
func (a *AugmentedArray) HasActivation() bool             { return a.activation != nil }

// Activate applies the activation to the values, keeping the values before the activation.
// It is a no-op when there is no activation.
func (a *AugmentedArray) Activate() {
	if a.activation == nil {
		return
	}
	x := Float64s(a.notActivated)
	copy(x, Float64s(a.values))
	a.activation.Apply(Float64s(a.values), x)
}

// NotActivatedValues returns the values before the last Activate.
// Without an activation they are the values themselves.
func (a *AugmentedArray) NotActivatedValues() *tensor.Dense {
	if a.notActivated == nil {
		return a.values
	}
	return a.notActivated
}

// ActivationDerivative returns a new array with the derivative of the activation
// at the current values, or nil when there is no activation.
func (a *AugmentedArray) ActivationDerivative() *tensor.Dense {
	if a.activation == nil {
		return nil
	}
	d := Zeros(a.values.Shape().Clone()...)
	a.activation.Derivative(Float64s(d), Float64s(a.values))
	return d
}

// BackwardActivation multiplies the errors in place by the derivative of the activation,
// turning them into errors of the not activated values.
func (a *AugmentedArray) BackwardActivation() {
	if a.activation == nil {
		return
	}
	a.activation.Backprop(Float64s(a.errors), Float64s(a.values))
}

// Clone returns a deep copy. The activation function is shared, it is stateless.
func (a *AugmentedArray) Clone() *AugmentedArray {
	retVal := &AugmentedArray{
		values:     a.values.Clone().(*tensor.Dense),
		errors:     a.errors.Clone().(*tensor.Dense),
		activation: a.activation,
	}
	if a.notActivated != nil {
		retVal.notActivated = a.notActivated.Clone().(*tensor.Dense)
	}
	return retVal
}
