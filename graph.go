package helios

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/gorgonia/helios/internal/partition"
)

var workerColours = []string{"lightblue", "lightpink", "palegreen", "khaki", "plum", "lightsalmon", "lightcyan", "wheat"}

// ToDot renders the network as a Graphviz digraph. Every layer is a cluster,
// every neuron is filled with the colour of the worker that owns it and every
// edge is labelled with its weight.
func (net *Network) ToDot() (string, error) {
	if err := net.acquire(); err != nil {
		return "", err
	}
	defer net.mu.Unlock()

	g := gographviz.NewEscape()
	if err := g.SetName("G"); err != nil {
		return "", err
	}
	g.SetDir(true)
	var m maebe
	m.do(func() error { return g.AddAttr("G", "rankdir", "LR") })

	m.do(func() error { return g.AddSubGraph("G", "cluster_input", map[string]string{"label": "input"}) })
	for i := 0; i < net.conf.Dimensionality; i++ {
		name := inputName(i)
		m.do(func() error { return g.AddNode("cluster_input", name, map[string]string{"shape": "box"}) })
	}

	for l, width := range net.conf.Layers {
		cluster := fmt.Sprintf("cluster_layer%d", l)
		m.do(func() error {
			return g.AddSubGraph("G", cluster, map[string]string{"label": fmt.Sprintf("layer %d", l)})
		})

		ranges := partition.Split(width, net.conf.Workers)
		block := net.ly.layerWeights(net.weights, l)
		for n := 0; n < width; n++ {
			name := neuronName(l, n)
			attrs := map[string]string{
				"style":     "filled",
				"fillcolor": workerColours[partition.Owner(ranges, n)%len(workerColours)],
			}
			m.do(func() error { return g.AddNode(cluster, name, attrs) })

			w := row(block, net.ly.mw, n)
			for i := 0; i < net.conf.fanIn(l); i++ {
				src := inputName(i)
				if l > 0 {
					src = neuronName(l-1, i)
				}
				label := map[string]string{"label": fmt.Sprintf("%.3f", w[i])}
				m.do(func() error { return g.AddEdge(src, name, true, label) })
			}
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return g.String(), nil
}

func inputName(i int) string     { return fmt.Sprintf("in%d", i) }
func neuronName(l, n int) string { return fmt.Sprintf("l%dn%d", l, n) }
