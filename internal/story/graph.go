// Package story implements the branching typing story.
package story

import (
	"sort"

	"github.com/verte-zerg/typist/internal/model"
)

// Graph is a validated, immutable set of story nodes.
type Graph struct {
	start string
	byID  map[string]model.StoryNode
}

// NewGraph validates nodes and builds a graph rooted at start.
func NewGraph(start string, nodes []model.StoryNode) (*Graph, error) {
	if err := validateNodes(start, nodes); err != nil {
		return nil, err
	}
	g := &Graph{
		start: start,
		byID:  make(map[string]model.StoryNode, len(nodes)),
	}
	for _, n := range nodes {
		g.byID[n.ID] = cloneNode(n)
	}
	return g, nil
}

// MustGraph is NewGraph that panics on invalid data.
func MustGraph(start string, nodes []model.StoryNode) *Graph {
	g, err := NewGraph(start, nodes)
	if err != nil {
		panic(err)
	}
	return g
}

// Start returns the id of the first chapter.
func (g *Graph) Start() string {
	return g.start
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (model.StoryNode, bool) {
	n, ok := g.byID[id]
	if !ok {
		return model.StoryNode{}, false
	}
	return cloneNode(n), true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.byID)
}

// IDs returns node ids in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.byID))
	for id := range g.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Endings returns the ids of terminal nodes in sorted order.
func (g *Graph) Endings() []string {
	var ids []string
	for _, id := range g.IDs() {
		if g.byID[id].Terminal() {
			ids = append(ids, id)
		}
	}
	return ids
}

func cloneNode(n model.StoryNode) model.StoryNode {
	if n.Choices != nil {
		n.Choices = append([]model.Choice(nil), n.Choices...)
	}
	return n
}
