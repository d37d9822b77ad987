package network

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

func nodeName(layer int) string { return fmt.Sprintf("layer%d", layer) }

// ToDot returns the topology of the network in the dot format. Recurrent
// layers have a dashed edge to themselves.
func (nn *NeuralNetwork) ToDot() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}

	for i, l := range nn.Layers {
		label := fmt.Sprintf("input %d (%v)", l.Size, l.InputKind)
		if i > 0 {
			label = fmt.Sprintf("%v %d (%v)", l.Connection, l.Size, l.Activation)
		}
		attrs := map[string]string{
			"shape": "box",
			"label": fmt.Sprintf("%q", label),
		}
		if err := g.AddNode("G", nodeName(i), attrs); err != nil {
			return "", errors.WithStack(err)
		}
	}

	for i := 1; i < len(nn.Layers); i++ {
		l := nn.Layers[i]
		attrs := map[string]string{}
		if d := nn.Layers[i-1].Dropout; d > 0 {
			attrs["label"] = fmt.Sprintf("\"dropout %v\"", d)
		}
		if err := g.AddEdge(nodeName(i-1), nodeName(i), true, attrs); err != nil {
			return "", errors.WithStack(err)
		}
		if l.Connection.IsRecurrent() {
			if err := g.AddEdge(nodeName(i), nodeName(i), true, map[string]string{"style": "dashed"}); err != nil {
				return "", errors.WithStack(err)
			}
		}
	}
	return g.String(), nil
}
