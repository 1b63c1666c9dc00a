package serialize

import (
	"encoding/json"

	"github.com/lsst-dm/Daxgen/internal/graph"
)

const (
	taskPrefix = "task/"
	dataPrefix = "data/"
)

type nodeLinkGraph struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Links      []nodeLinkLink `json:"links"`
}

type nodeLinkNode struct {
	ID        string   `json:"id"`
	Bipartite int      `json:"bipartite"`
	LFN       string   `json:"lfn,omitempty"`
	External  bool     `json:"external,omitempty"`
	URL       string   `json:"url,omitempty"`
	Site      string   `json:"site,omitempty"`
	Name      string   `json:"name,omitempty"`
	Stage     string   `json:"stage,omitempty"`
	Args      []string `json:"args,omitempty"`
}

type nodeLinkLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// encodeNodeLink exports the graph as a bipartite node-link document. Data
// nodes have bipartite 0 and task nodes bipartite 1; links run from producer
// to data and from data to consumer.
func encodeNodeLink(g graph.Graph) ([]byte, error) {
	out := nodeLinkGraph{
		Directed: true,
		Graph:    map[string]any{"name": g.Name()},
		Nodes:    []nodeLinkNode{},
		Links:    []nodeLinkLink{},
	}

	for _, u := range g.Units() {
		out.Nodes = append(out.Nodes, nodeLinkNode{
			ID:       dataPrefix + u.ID(),
			LFN:      u.ID(),
			External: u.External,
			URL:      u.URL,
			Site:     u.Site,
		})
	}
	for _, n := range g.Nodes() {
		id := n.ID.String()
		out.Nodes = append(out.Nodes, nodeLinkNode{
			ID:        taskPrefix + id,
			Bipartite: 1,
			Name:      n.Binding.Transformation,
			Stage:     n.Stage,
			Args:      n.Arguments,
		})
		for _, u := range n.Consumes {
			out.Links = append(out.Links, nodeLinkLink{Source: dataPrefix + u.ID(), Target: taskPrefix + id})
		}
		for _, u := range n.Produces {
			out.Links = append(out.Links, nodeLinkLink{Source: taskPrefix + id, Target: dataPrefix + u.ID()})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
