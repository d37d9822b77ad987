package layers

// ContextWindow gives a recurrent layer structure read access to the structures
// of the same layer at the adjacent time steps. A nil Structure means there is no
// such step.
type ContextWindow interface {
	PrevState() Structure
	NextState() Structure
}

// StateResolver resolves the structure at a given time step, or nil when the
// step does not exist. Windows keep a resolver and a step index instead of live
// references, so that adjacent steps can be built in any order.
type StateResolver interface {
	StateAt(step int) Structure
}

// StateSlice is a StateResolver over a plain slice.
type StateSlice []Structure

func (s StateSlice) StateAt(step int) Structure {
	if step < 0 || step >= len(s) {
		return nil
	}
	return s[step]
}

// Empty is the window of a sequence of length one.
type Empty struct{}

func (Empty) PrevState() Structure { return nil }
func (Empty) NextState() Structure { return nil }

// Back is the window of the last step of a sequence: it only looks back.
type Back struct {
	States StateResolver
	Step   int
}

func (w Back) PrevState() Structure { return w.States.StateAt(w.Step - 1) }
func (w Back) NextState() Structure { return nil }

// Front is the window of the first step of a sequence: it only looks ahead.
type Front struct {
	States StateResolver
	Step   int
}

func (w Front) PrevState() Structure { return nil }
func (w Front) NextState() Structure { return w.States.StateAt(w.Step + 1) }

// Bilateral is the window of an inner step.
type Bilateral struct {
	States StateResolver
	Step   int
}

func (w Bilateral) PrevState() Structure { return w.States.StateAt(w.Step - 1) }
func (w Bilateral) NextState() Structure { return w.States.StateAt(w.Step + 1) }

// WindowAt returns the window of the given step in a sequence of the given length.
func WindowAt(states StateResolver, step, length int) ContextWindow {
	switch {
	case length <= 1:
		return Empty{}
	case step == 0:
		return Front{States: states, Step: step}
	case step == length-1:
		return Back{States: states, Step: step}
	default:
		return Bilateral{States: states, Step: step}
	}
}
