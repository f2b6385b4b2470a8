package graph

import (
	"fmt"
	"strconv"

	"github.com/ha1tch/drugref/pkg/models"
)

// Elements converts a graph into the element list consumed by graph viewers:
// one entry per node followed by one entry per edge. Trial and publication
// titles are left out of node labels.
func Elements(g *models.Graph) []models.Element {
	elements := make([]models.Element, 0, len(g.Nodes)+len(g.Edges))

	for _, n := range g.Nodes {
		label := n.Label
		if n.Type == models.NodeTrial || n.Type == models.NodePubmed {
			label = ""
		}
		elements = append(elements, models.Element{Data: models.ElementData{
			ID:      strconv.Itoa(n.ID),
			Label:   label,
			Classes: string(n.Type),
		}})
	}

	for _, e := range g.Edges {
		elements = append(elements, models.Element{Data: models.ElementData{
			Source:  strconv.Itoa(e.Source),
			Target:  strconv.Itoa(e.Target),
			Label:   "",
			Classes: models.ElementEdge,
		}})
	}

	return elements
}

// FromElements rebuilds nodes and edges from an element list.
// The element format drops edge ids and dates, so edges are renumbered in
// list order and carry an empty date.
func FromElements(elements []models.Element) (*models.Graph, error) {
	g := &models.Graph{}

	for i, el := range elements {
		d := el.Data
		if d.Classes == models.ElementEdge {
			source, err := strconv.Atoi(d.Source)
			if err != nil {
				return nil, fmt.Errorf("element %d: invalid edge source %q: %w", i, d.Source, err)
			}
			target, err := strconv.Atoi(d.Target)
			if err != nil {
				return nil, fmt.Errorf("element %d: invalid edge target %q: %w", i, d.Target, err)
			}
			g.Edges = append(g.Edges, models.Edge{
				ID:     len(g.Edges),
				Source: source,
				Target: target,
			})
			continue
		}

		typ := models.NodeType(d.Classes)
		if !typ.Valid() {
			return nil, fmt.Errorf("element %d: unknown class %q", i, d.Classes)
		}
		id, err := strconv.Atoi(d.ID)
		if err != nil {
			return nil, fmt.Errorf("element %d: invalid node id %q: %w", i, d.ID, err)
		}
		g.Nodes = append(g.Nodes, models.Node{ID: id, Type: typ, Label: d.Label})
	}

	return g, nil
}

// Stats summarizes a graph by node type
func Stats(g *models.Graph) models.GraphStats {
	stats := models.GraphStats{
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		NodesByType: make(map[models.NodeType]int),
	}
	for _, n := range g.Nodes {
		stats.NodesByType[n.Type]++
	}
	return stats
}
