package graph

import (
	"fmt"

	"github.com/ha1tch/drugref/pkg/models"
)

// JournalReferenceCounts counts, for every journal node in node order, the
// edges having that journal at either endpoint
func JournalReferenceCounts(nodes []models.Node, edges []models.Edge) []models.JournalStat {
	counts := make(map[int]int)
	for _, e := range edges {
		counts[e.Source]++
		if e.Target != e.Source {
			counts[e.Target]++
		}
	}

	var stats []models.JournalStat
	for _, n := range nodes {
		if n.Type != models.NodeJournal {
			continue
		}
		stats = append(stats, models.JournalStat{
			NodeID:     n.ID,
			Journal:    n.Label,
			References: counts[n.ID],
		})
	}
	return stats
}

// MostReferencingJournal returns the journal with the most drug references.
// Ties go to the journal that comes first in node order.
func MostReferencingJournal(nodes []models.Node, edges []models.Edge) (models.JournalStat, error) {
	stats := JournalReferenceCounts(nodes, edges)
	if len(stats) == 0 {
		return models.JournalStat{}, fmt.Errorf("%w: graph has no journal nodes", ErrEmptyInput)
	}

	best := stats[0]
	for _, s := range stats[1:] {
		if s.References > best.References {
			best = s
		}
	}
	return best, nil
}
