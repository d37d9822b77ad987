package processor

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/gorgonia/seqnet/network"
	"github.com/pkg/errors"
)

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}

// Accumulator sums parameters gradients sent from many goroutines. The sum is
// owned by a single goroutine, so that processors running in parallel never
// write to the same gradients.
type Accumulator struct {
	in        chan *network.Params
	done      chan struct{}
	closeOnce sync.Once

	sum   *network.Params
	count int
	errs  manyErr
}

// NewAccumulator creates an accumulator of gradients of nn.
func NewAccumulator(nn *network.NeuralNetwork) (*Accumulator, error) {
	sum, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	a := &Accumulator{
		in:   make(chan *network.Params),
		done: make(chan struct{}),
		sum:  sum,
	}
	go a.loop()
	return a, nil
}

func (a *Accumulator) loop() {
	for p := range a.in {
		if err := a.sum.Add(p); err != nil {
			a.errs = append(a.errs, errors.WithMessagef(err, "gradients %d", a.count+len(a.errs)))
			continue
		}
		a.count++
	}
	close(a.done)
}

// Send adds p to the sum. p must not be modified afterwards: send the copy
// returned by ParamsErrors. Send panics after Close.
func (a *Accumulator) Send(p *network.Params) { a.in <- p }

// Close waits for the gradients sent so far and returns their sum and count.
// Gradients that could not be summed are reported in the error. Closing again
// returns the same results.
func (a *Accumulator) Close() (*network.Params, int, error) {
	a.closeOnce.Do(func() {
		close(a.in)
		<-a.done
	})
	if len(a.errs) > 0 {
		return a.sum, a.count, a.errs
	}
	return a.sum, a.count, nil
}
