// Package activation provides the activation functions applied to layer outputs and gates.
package activation

import "fmt"

// Function is an activation function applied to a whole array.
//
// The derivative is expressed in terms of the already computed output y = f(x),
// so that the backward pass never has to recompute f.
type Function interface {
	// Apply writes f(x) into dst. dst and x may be the same slice.
	Apply(dst, x []float64)

	// Derivative writes f'(x) into dst, given y = f(x).
	Derivative(dst, y []float64)

	// Backprop multiplies grad in place by the derivative of the function at y.
	// For element-wise functions this is grad ⊙ f'(x). Functions whose outputs are
	// not independent (Softmax) apply the whole Jacobian.
	Backprop(grad, y []float64)

	fmt.Stringer
}

// elementwise implements Backprop for functions with a diagonal Jacobian.
type elementwise func(y float64) float64

func (d elementwise) derivative(dst, y []float64) {
	for i, v := range y {
		dst[i] = d(v)
	}
}

func (d elementwise) backprop(grad, y []float64) {
	for i, v := range y {
		grad[i] *= d(v)
	}
}
