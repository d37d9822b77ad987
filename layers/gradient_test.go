package layers

import (
	"math/rand"
	"testing"

	"github.com/gorgonia/seqnet/activation"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

// unrolled is one layer unrolled over a short sequence, with the loss
// Σ_t y_t · c_t for fixed random coefficients c_t.
type unrolled struct {
	params Params
	inputs []*arrays.AugmentedArray
	states StateSlice
	coeffs [][]float64
}

func newUnrolled(t *testing.T, kind Kind, in, out, length int, act activation.Function) *unrolled {
	rng := rand.New(rand.NewSource(int64(kind) + 42))
	p, err := NewParams(kind, in, out)
	require.NoError(t, err)
	for _, a := range p.Arrays() {
		for i := range data(a.Values) {
			data(a.Values)[i] = rng.Float64() - 0.5
		}
	}

	u := &unrolled{params: p, states: make(StateSlice, length)}
	for step := 0; step < length; step++ {
		x := arrays.New(in)
		c := make([]float64, out)
		for i := range data(x.Values()) {
			data(x.Values())[i] = 2*rng.Float64() - 1
		}
		for i := range c {
			c[i] = 2*rng.Float64() - 1
		}
		s, err := NewStructure(kind, DenseInput(x), p, act)
		require.NoError(t, err)
		s.SetWindow(WindowAt(u.states, step, length))
		u.states[step] = s
		u.inputs = append(u.inputs, x)
		u.coeffs = append(u.coeffs, c)
	}
	return u
}

func (u *unrolled) loss() float64 {
	var retVal float64
	for step, s := range u.states {
		if err := s.Forward(); err != nil {
			panic(err)
		}
		for i, v := range data(s.Output().Values()) {
			retVal += v * u.coeffs[step][i]
		}
	}
	return retVal
}

func (u *unrolled) backward(t *testing.T) Params {
	pe, err := ZerosLike(u.params)
	require.NoError(t, err)
	for step := len(u.states) - 1; step >= 0; step-- {
		s := u.states[step]
		copy(errs(s.Output()), u.coeffs[step])
		require.NoError(t, s.Backward(pe, true))
	}
	return pe
}

func clone(a []float64) []float64 { return append([]float64(nil), a...) }

// numeric computes the gradient of the loss with respect to v by central differences.
func (u *unrolled) numeric(v []float64) []float64 {
	orig := clone(v)
	f := func(x []float64) float64 {
		copy(v, x)
		return u.loss()
	}
	retVal := fd.Gradient(nil, f, orig, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	copy(v, orig)
	return retVal
}

func TestGradients(t *testing.T) {
	kinds := []Kind{Feedforward, SimpleRecurrent, RAN, GRU, LSTM, CFN, DeltaRNN}
	acts := []activation.Function{activation.Tanh{}, activation.Sigmoid{}, activation.ELU{Alpha: 0.7}}
	for _, kind := range kinds {
		for _, act := range acts {
			for _, length := range []int{1, 4} {
				u := newUnrolled(t, kind, 3, 2, length, act)
				u.loss()
				pe := u.backward(t)

				inputErrors := make([][]float64, length)
				for step, x := range u.inputs {
					inputErrors[step] = clone(errs(x))
				}

				for i, a := range u.params.Arrays() {
					want := u.numeric(data(a.Values))
					assert.InDeltaSlice(t, want, data(pe.Arrays()[i].Values), 1e-5, "%v %v length %d: %v", kind, act, length, a)
				}
				for step, x := range u.inputs {
					want := u.numeric(data(x.Values()))
					assert.InDeltaSlice(t, want, inputErrors[step], 1e-5, "%v %v length %d: input %d", kind, act, length, step)
				}
			}
		}
	}
}

func TestSoftmaxOutput(t *testing.T) {
	u := newUnrolled(t, Feedforward, 4, 3, 1, activation.Softmax{})
	u.loss()
	pe := u.backward(t)
	for i, a := range u.params.Arrays() {
		want := u.numeric(data(a.Values))
		assert.InDeltaSlice(t, want, data(pe.Arrays()[i].Values), 1e-5, "%v", a)
	}
}
