package layers

import (
	"math/rand"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Input is the input of a layer: either an AugmentedArray shared with its
// producer (the previous layer's output, or the network input), or a sparse
// binary vector.
//
// Dropout is applied on the way in: when a mask is set the layer sees the
// values multiplied by the mask, and the errors it propagates back are masked
// the same way.
type Input struct {
	size   int
	dense  *arrays.AugmentedArray
	sparse *arrays.SparseBinary

	mask   []float64
	masked []float64
	gx     []float64
}

// DenseInput wraps a. The input errors are written into a's errors.
func DenseInput(a *arrays.AugmentedArray) *Input {
	return &Input{size: a.Size(), dense: a}
}

// SparseInput creates a sparse binary input of the given size. The vector is
// set with SetSparse before every forward.
func SparseInput(size int) *Input {
	return &Input{size: size}
}

func (in *Input) Size() int                     { return in.size }
func (in *Input) IsSparse() bool                { return in.dense == nil }
func (in *Input) Array() *arrays.AugmentedArray { return in.dense }
func (in *Input) Sparse() *arrays.SparseBinary  { return in.sparse }
func (in *Input) Mask() []float64               { return in.mask }

// SetSparse sets the active elements of a sparse input.
func (in *Input) SetSparse(x *arrays.SparseBinary) error {
	if !in.IsSparse() {
		return errors.Wrap(seqnet.ErrUnsupportedInputKind, "SetSparse on a dense input")
	}
	if x.Size() != in.size {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "sparse input of size %d, expected %d", x.Size(), in.size)
	}
	in.sparse = x
	return nil
}

// Drop draws a new inverted dropout mask: every element is kept with
// probability 1-p and scaled by 1/(1-p). Sparse inputs are never dropped.
func (in *Input) Drop(p float64, rng *rand.Rand) {
	if in.IsSparse() || p <= 0 {
		in.mask = nil
		return
	}
	if in.mask == nil {
		in.mask = make([]float64, in.size)
	}
	scale := 1 / (1 - p)
	for i := range in.mask {
		if rng.Float64() < p {
			in.mask[i] = 0
		} else {
			in.mask[i] = scale
		}
	}
}

// Undrop removes the dropout mask.
func (in *Input) Undrop() { in.mask = nil }

// prepare caches the values seen by the layer. It is called at the start of
// every forward.
func (in *Input) prepare() error {
	if in.IsSparse() {
		if in.sparse == nil {
			return errors.Wrap(seqnet.ErrInvalidState, "sparse input not set")
		}
		return nil
	}
	if in.mask == nil {
		in.masked = nil
		return nil
	}
	if in.masked == nil {
		in.masked = make([]float64, in.size)
	}
	for i, v := range data(in.dense.Values()) {
		in.masked[i] = v * in.mask[i]
	}
	return nil
}

// x returns the dense values seen by the layer.
func (in *Input) x() []float64 {
	if in.masked != nil {
		return in.masked
	}
	return data(in.dense.Values())
}

// linear sets dst = W·x + beta·dst.
func (in *Input) linear(dst []float64, w *tensor.Dense, beta float64) {
	if !in.IsSparse() {
		linear(dst, w, in.x(), beta)
		return
	}
	if beta == 0 {
		zero(dst)
	}
	wd, cols := data(w), w.Shape()[1]
	for _, j := range in.sparse.Active() {
		for i := range dst {
			dst[i] += wd[i*cols+j]
		}
	}
}

// accumulate adds g·xᵀ to gw.
func (in *Input) accumulate(gw *tensor.Dense, g []float64) {
	if !in.IsSparse() {
		outer(gw, g, in.x())
		return
	}
	gd, cols := data(gw), gw.Shape()[1]
	for _, j := range in.sparse.Active() {
		for i, v := range g {
			gd[i*cols+j] += v
		}
	}
}

func (in *Input) checkPropagation(propagate bool) error {
	if propagate && in.IsSparse() {
		return errors.Wrap(seqnet.ErrUnsupportedInputKind, "cannot propagate errors to a sparse input")
	}
	return nil
}

// gradient returns a zeroed scratch buffer the size of the input, to be filled
// with the input errors and handed to setErrors.
func (in *Input) gradient() []float64 {
	if in.gx == nil {
		in.gx = make([]float64, in.size)
	}
	zero(in.gx)
	return in.gx
}

// setErrors masks gx and overwrites the errors of the input array.
func (in *Input) setErrors(gx []float64) {
	if in.mask != nil {
		for i := range gx {
			gx[i] *= in.mask[i]
		}
	}
	copy(data(in.dense.Errors()), gx)
}
