package arrays

import (
	"sort"

	"github.com/gorgonia/seqnet"
	"github.com/pkg/errors"
)

// SparseBinary is a binary vector stored as the indices of its active (one) elements.
// It is used as layer input, never as output, and has no errors.
type SparseBinary struct {
	size   int
	active []int
}

// NewSparseBinary creates a sparse binary vector of the given size.
// The active indices are deduplicated and sorted.
func NewSparseBinary(size int, active ...int) (*SparseBinary, error) {
	idx := make([]int, 0, len(active))
	seen := make(map[int]struct{}, len(active))
	for _, i := range active {
		if i < 0 || i >= size {
			return nil, errors.Wrapf(seqnet.ErrShapeMismatch, "active index %d out of range [0, %d)", i, size)
		}
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return &SparseBinary{size: size, active: idx}, nil
}

func (s *SparseBinary) Size() int     { return s.size }
func (s *SparseBinary) Active() []int { return s.active }

// Dense expands the vector into its dense values.
func (s *SparseBinary) Dense() []float64 {
	retVal := make([]float64, s.size)
	for _, i := range s.active {
		retVal[i] = 1
	}
	return retVal
}
