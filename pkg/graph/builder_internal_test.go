package graph

import (
	"testing"

	"github.com/ha1tch/drugref/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forgetfulStore never resolves existing nodes by lookup
type forgetfulStore struct {
	*Store
}

func (f forgetfulStore) FindNode(typ models.NodeType, label string) (int, bool) {
	return 0, false
}

func TestBuilder_LookupMissSkipsEdge(t *testing.T) {
	b := NewBuilder(nil, zerolog.Nop())
	b.newStore = func() graphStore { return forgetfulStore{NewStore()} }

	drugs := []models.Drug{
		{ID: "1", Name: "ATROPINE"},
		{ID: "2", Name: "BETAMETHASONE"},
	}
	trials := []models.Record{
		{ID: "t1", Title: "Atropine study", Date: "2020-01-01", Journal: "J"},
		{ID: "t2", Title: "Betamethasone study", Date: "2020-02-01", Journal: "J"},
	}

	g, err := b.Build(drugs, trials, nil)
	require.NoError(t, err)

	// the shared journal exists but cannot be resolved for the second drug
	assert.Len(t, g.Nodes, 5)
	assert.Equal(t, []models.Edge{
		{ID: 0, Source: 0, Target: 1, Date: "2020-01-01"},
		{ID: 1, Source: 0, Target: 2, Date: "2020-01-01"},
		{ID: 2, Source: 3, Target: 4, Date: "2020-02-01"},
	}, g.Edges)
	assert.Equal(t, 1, b.Stats().LookupMisses)
}
