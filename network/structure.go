package network

import (
	"math/rand"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/arrays"
	"github.com/gorgonia/seqnet/layers"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Structure runs one time step through all the layers of a network. The output
// of every layer is the input of the next one.
type Structure struct {
	Layers []layers.Structure

	nn    *NeuralNetwork
	input *arrays.AugmentedArray // nil when the input is sparse
	rng   *rand.Rand
}

// maebe builds the layers of a structure, skipping every step after an error.
type maebe struct {
	err error
}

func (m *maebe) layer(kind layers.Kind, in *layers.Input, p layers.Params, conf LayerConfig) layers.Structure {
	if m.err != nil {
		return nil
	}
	var retVal layers.Structure
	if retVal, m.err = layers.NewStructure(kind, in, p, conf.Activation); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return retVal
}

func (m *maebe) next(s layers.Structure) *layers.Input {
	if m.err != nil {
		return nil
	}
	return layers.DenseInput(s.Output())
}

// NewStructure creates a structure sharing the model of nn. The rng draws the
// dropout masks.
func NewStructure(nn *NeuralNetwork, rng *rand.Rand) (*Structure, error) {
	retVal := &Structure{nn: nn, rng: rng}

	var in *layers.Input
	if nn.InputKind() == SparseBinary {
		in = layers.SparseInput(nn.InputSize())
	} else {
		retVal.input = arrays.New(nn.InputSize())
		in = layers.DenseInput(retVal.input)
	}

	m := new(maebe)
	for i, p := range nn.Model.Layers {
		conf := nn.Layers[i+1]
		s := m.layer(conf.Connection, in, p, conf)
		in = m.next(s)
		retVal.Layers = append(retVal.Layers, s)
	}
	if m.err != nil {
		return nil, m.err
	}
	return retVal, nil
}

// Forward runs the layers on a dense input.
func (s *Structure) Forward(x *tensor.Dense, useDropout bool) error {
	if s.input == nil {
		return errors.Wrap(seqnet.ErrUnsupportedInputKind, "dense input given to a network with sparse input")
	}
	if err := s.input.AssignValues(x); err != nil {
		return err
	}
	return s.forward(useDropout)
}

// ForwardSparse runs the layers on a sparse binary input.
func (s *Structure) ForwardSparse(x *arrays.SparseBinary, useDropout bool) error {
	if s.input != nil {
		return errors.Wrap(seqnet.ErrUnsupportedInputKind, "sparse input given to a network with dense input")
	}
	if err := s.Layers[0].Input().SetSparse(x); err != nil {
		return err
	}
	return s.forward(useDropout)
}

func (s *Structure) forward(useDropout bool) error {
	for i, l := range s.Layers {
		if p := s.nn.Layers[i].Dropout; useDropout && p > 0 {
			l.Input().Drop(p, s.rng)
		} else {
			l.Input().Undrop()
		}
		if err := l.Forward(); err != nil {
			return errors.WithMessagef(err, "forward of layer %d", i)
		}
	}
	return nil
}

// Backward sets the errors of the output and propagates them through all the
// layers, accumulating the gradients into paramsErrors. The errors of the
// input are computed only when propagateToInput is true.
func (s *Structure) Backward(outputErrors *tensor.Dense, paramsErrors *Params, propagateToInput bool) error {
	if len(paramsErrors.Layers) != len(s.Layers) {
		return errors.Wrapf(seqnet.ErrShapeMismatch, "params errors of %d layers for %d layers", len(paramsErrors.Layers), len(s.Layers))
	}
	if err := s.Output().AssignErrors(outputErrors); err != nil {
		return err
	}
	for i := len(s.Layers) - 1; i >= 0; i-- {
		if err := s.Layers[i].Backward(paramsErrors.Layers[i], i > 0 || propagateToInput); err != nil {
			return errors.WithMessagef(err, "backward of layer %d", i)
		}
	}
	return nil
}

// Output is the output of the last layer.
func (s *Structure) Output() *arrays.AugmentedArray { return s.Layers[len(s.Layers)-1].Output() }

// InputErrors returns the errors of the input, or nil when it is sparse.
func (s *Structure) InputErrors() *tensor.Dense {
	if s.input == nil {
		return nil
	}
	return s.input.Errors()
}

// SetWindows sets the context window of every layer.
func (s *Structure) SetWindows(window func(layer int) layers.ContextWindow) {
	for i, l := range s.Layers {
		l.SetWindow(window(i))
	}
}
