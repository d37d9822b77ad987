package processor

import (
	"sync"

	"github.com/gorgonia/seqnet"
	"github.com/gorgonia/seqnet/network"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type resetter interface {
	reset()
}

// pool hands out items by id. Released ids go to a freelist and are handed out
// again, last released first, before any new item is made.
type pool struct {
	sync.Mutex
	items    []interface{}
	inUse    []bool
	freelist []int

	factory func(id int) (interface{}, error)
	log     logrus.FieldLogger
}

func (p *pool) get() (interface{}, error) {
	p.Lock()
	defer p.Unlock()
	if l := len(p.freelist); l > 0 {
		id := p.freelist[l-1]
		p.freelist = p.freelist[:l-1]
		p.inUse[id] = true
		if r, ok := p.items[id].(resetter); ok {
			r.reset()
		}
		return p.items[id], nil
	}

	id := len(p.items)
	item, err := p.factory(id)
	if err != nil {
		return nil, err
	}
	p.items = append(p.items, item)
	p.inUse = append(p.inUse, true)
	p.log.WithField("size", len(p.items)).Debug("pool grown")
	return item, nil
}

func (p *pool) release(id int) error {
	p.Lock()
	defer p.Unlock()
	if id < 0 || id >= len(p.items) {
		return errors.Wrapf(seqnet.ErrInvalidState, "unknown id %d", id)
	}
	if !p.inUse[id] {
		return errors.Wrapf(seqnet.ErrInvalidState, "id %d released twice", id)
	}
	p.inUse[id] = false
	p.freelist = append(p.freelist, id)
	return nil
}

// Size returns the number of items made.
func (p *pool) Size() int {
	p.Lock()
	defer p.Unlock()
	return len(p.items)
}

// InUse returns the number of items handed out and not released.
func (p *pool) InUse() int {
	p.Lock()
	defer p.Unlock()
	return len(p.items) - len(p.freelist)
}

// RecurrentPool is a pool of recurrent processors of one network.
type RecurrentPool struct {
	pool
}

func NewRecurrentPool(nn *network.NeuralNetwork) *RecurrentPool {
	return &RecurrentPool{pool{
		factory: func(id int) (interface{}, error) { return NewRecurrent(nn, id) },
		log:     nn.Logger().WithField("pool", "recurrent"),
	}}
}

// Get returns a free processor, making a new one if there are none. A reused
// processor starts idle, without the sequence or the gradients of its previous
// owner.
func (p *RecurrentPool) Get() (*Recurrent, error) {
	item, err := p.get()
	if err != nil {
		return nil, err
	}
	return item.(*Recurrent), nil
}

// Release makes the processor with the given id available again.
func (p *RecurrentPool) Release(id int) error { return p.release(id) }

// FeedforwardPool is a pool of feedforward processors of one network.
type FeedforwardPool struct {
	pool
}

func NewFeedforwardPool(nn *network.NeuralNetwork) *FeedforwardPool {
	return &FeedforwardPool{pool{
		factory: func(id int) (interface{}, error) { return NewFeedforward(nn, id) },
		log:     nn.Logger().WithField("pool", "feedforward"),
	}}
}

func (p *FeedforwardPool) Get() (*Feedforward, error) {
	item, err := p.get()
	if err != nil {
		return nil, err
	}
	return item.(*Feedforward), nil
}

func (p *FeedforwardPool) Release(id int) error { return p.release(id) }
