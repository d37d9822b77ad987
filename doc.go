// Package seqnet is a small neural network computation engine.
//
// It builds layered models (feedforward and recurrent), runs the forward
// inference and propagates the errors backward, through time when the
// network is recurrent.
//
// The packages are organised leaves first:
//
//	activation	activation functions
//	arrays		AugmentedArray (values + errors + activation) and sparse inputs
//	layers		layer structures for each connection kind, their parameters and context windows
//	network		network configuration, model parameters and the per step network structure
//	processor	feedforward and recurrent processors, processor pools
//
// A typical training loop for a recurrent network:
//
//	nn, err := network.New(network.RecurrentConf(layers.LSTM, 10, 20, 5, activation.Tanh{}, activation.Softmax{}))
//	pool := processor.NewRecurrentPool(nn)
//	p, err := pool.Get()
//	outputs, err := p.Forward(sequence, true)
//	err = p.Backward(outputErrors, false)
//	grads, err := p.ParamsErrors()
//	err = nn.Update(grads, G.NewVanillaSolver(G.WithLearnRate(0.01)))
//	pool.Release(p.ID())
package seqnet
