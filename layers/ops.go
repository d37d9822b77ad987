package layers

import (
	"github.com/gorgonia/seqnet/arrays"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gorgonia.org/tensor"
)

var data = arrays.Float64s

func general(w *tensor.Dense) blas64.General {
	s := w.Shape()
	return blas64.General{Rows: s[0], Cols: s[1], Stride: s[1], Data: data(w)}
}

func vec(x []float64) blas64.Vector { return blas64.Vector{N: len(x), Inc: 1, Data: x} }

// linear sets dst = W·x + beta·dst.
func linear(dst []float64, w *tensor.Dense, x []float64, beta float64) {
	blas64.Gemv(blas.NoTrans, 1, general(w), vec(x), beta, vec(dst))
}

// linearT sets dst = Wᵀ·g + beta·dst.
func linearT(dst []float64, w *tensor.Dense, g []float64, beta float64) {
	blas64.Gemv(blas.Trans, 1, general(w), vec(g), beta, vec(dst))
}

// outer accumulates g·xᵀ into gw.
func outer(gw *tensor.Dense, g, x []float64) {
	blas64.Ger(1, vec(g), vec(x), general(gw))
}

func zero(a []float64) {
	for i := range a {
		a[i] = 0
	}
}

// values returns the values of a, or nil for a nil array.
func values(a *arrays.AugmentedArray) []float64 {
	if a == nil {
		return nil
	}
	return data(a.Values())
}
