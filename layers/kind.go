// Package layers implements one layer's forward and backward computation for one
// time step, for every supported connection kind.
//
// A layer structure never owns its parameters: the structures of all the time
// steps of a sequence share the same Params, while the gradients are accumulated
// into a separate Params given to Backward.
package layers

// Kind is the connection type of a layer.
type Kind uint8

const (
	Feedforward Kind = iota
	Affine
	SimpleRecurrent
	RAN
	GRU
	LSTM
	CFN
	DeltaRNN
	MAXKIND
)

func (k Kind) String() string {
	switch k {
	case Feedforward:
		return "Feedforward"
	case Affine:
		return "Affine"
	case SimpleRecurrent:
		return "SimpleRecurrent"
	case RAN:
		return "RAN"
	case GRU:
		return "GRU"
	case LSTM:
		return "LSTM"
	case CFN:
		return "CFN"
	case DeltaRNN:
		return "DeltaRNN"
	}
	return "UNKNOWN KIND"
}

// IsRecurrent returns true if layers of this kind read the previous time step.
func (k Kind) IsRecurrent() bool {
	switch k {
	case SimpleRecurrent, RAN, GRU, LSTM, CFN, DeltaRNN:
		return true
	}
	return false
}
