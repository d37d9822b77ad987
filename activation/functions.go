package activation

import (
	"fmt"
	"math"
)

// Identity is f(x) = x.
type Identity struct{}

func (Identity) Apply(dst, x []float64) { copy(dst, x) }
func (Identity) Derivative(dst, y []float64) {
	for i := range dst {
		dst[i] = 1
	}
}
func (Identity) Backprop(grad, y []float64) {}
func (Identity) String() string             { return "Identity" }

// Sigmoid is the logistic function.
type Sigmoid struct{}

var sigmoidDeriv elementwise = func(y float64) float64 { return y * (1 - y) }

func (Sigmoid) Apply(dst, x []float64) {
	for i, v := range x {
		dst[i] = 1 / (1 + math.Exp(-v))
	}
}
func (Sigmoid) Derivative(dst, y []float64) { sigmoidDeriv.derivative(dst, y) }
func (Sigmoid) Backprop(grad, y []float64)  { sigmoidDeriv.backprop(grad, y) }
func (Sigmoid) String() string              { return "Sigmoid" }

// Tanh is the hyperbolic tangent.
type Tanh struct{}

var tanhDeriv elementwise = func(y float64) float64 { return 1 - y*y }

func (Tanh) Apply(dst, x []float64) {
	for i, v := range x {
		dst[i] = math.Tanh(v)
	}
}
func (Tanh) Derivative(dst, y []float64) { tanhDeriv.derivative(dst, y) }
func (Tanh) Backprop(grad, y []float64)  { tanhDeriv.backprop(grad, y) }
func (Tanh) String() string              { return "Tanh" }

// ReLU is the rectifier max(0, x).
type ReLU struct{}

var reluDeriv elementwise = func(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

func (ReLU) Apply(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = 0
		}
	}
}
func (ReLU) Derivative(dst, y []float64) { reluDeriv.derivative(dst, y) }
func (ReLU) Backprop(grad, y []float64)  { reluDeriv.backprop(grad, y) }
func (ReLU) String() string              { return "ReLU" }

// ELU is the exponential linear unit. Alpha must be positive.
type ELU struct {
	Alpha float64
}

func (f ELU) deriv() elementwise {
	return func(y float64) float64 {
		if y > 0 {
			return 1
		}
		return y + f.Alpha
	}
}

func (f ELU) Apply(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = f.Alpha * (math.Exp(v) - 1)
		}
	}
}
func (f ELU) Derivative(dst, y []float64) { f.deriv().derivative(dst, y) }
func (f ELU) Backprop(grad, y []float64)  { f.deriv().backprop(grad, y) }
func (f ELU) String() string              { return fmt.Sprintf("ELU(%v)", f.Alpha) }

// Softmax normalises the array into a probability distribution.
type Softmax struct{}

func (Softmax) Apply(dst, x []float64) {
	if len(x) == 0 {
		return
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range x {
		dst[i] = math.Exp(v - max)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// Derivative returns the diagonal of the Jacobian. Backprop uses the whole Jacobian.
func (Softmax) Derivative(dst, y []float64) { sigmoidDeriv.derivative(dst, y) }

func (Softmax) Backprop(grad, y []float64) {
	var dot float64
	for i, v := range y {
		dot += grad[i] * v
	}
	for i, v := range y {
		grad[i] = v * (grad[i] - dot)
	}
}
func (Softmax) String() string { return "Softmax" }
