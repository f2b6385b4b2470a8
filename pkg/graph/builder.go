package graph

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/validation"
)

// graphStore is the subset of Store the builder mutates
type graphStore interface {
	CreateNode(typ models.NodeType, label string) (int, bool)
	CreateEdge(source, target int, date string) (int, bool)
	FindNode(typ models.NodeType, label string) (int, bool)
	Graph() *models.Graph
}

// BuildStats counts what a build did
type BuildStats struct {
	Drugs          int `json:"drugs"`
	SkippedDrugs   int `json:"skipped_drugs"`
	References     int `json:"references"`
	LookupMisses   int `json:"lookup_misses"`
	DuplicateEdges int `json:"duplicate_edges"`
}

// Builder turns drug, trial and publication records into a reference graph
type Builder struct {
	matcher   *Matcher
	validator validation.Validator
	logger    zerolog.Logger
	newStore  func() graphStore
	stats     BuildStats
}

// NewBuilder creates a builder. A nil validator selects the field validator.
func NewBuilder(validator validation.Validator, logger zerolog.Logger) *Builder {
	if validator == nil {
		validator = validation.NewFieldValidator()
	}
	return &Builder{
		matcher:   NewMatcher(validator, logger),
		validator: validator,
		logger:    logger,
		newStore:  func() graphStore { return NewStore() },
	}
}

// Stats returns the counters of the last build
func (b *Builder) Stats() BuildStats {
	return b.stats
}

// Build creates the graph from scratch. Drugs are processed one at a time in
// input order, so the node and edge order is a function of the input order.
func (b *Builder) Build(drugs []models.Drug, trials, publications []models.Record) (*models.Graph, error) {
	if len(drugs) == 0 {
		return nil, fmt.Errorf("%w: no drugs to build from", ErrEmptyInput)
	}

	b.stats = BuildStats{}
	store := b.newStore()

	for _, drug := range drugs {
		if err := b.validator.ValidateDrug(drug); err != nil {
			b.logger.Warn().Err(err).Msg("Skipping drug")
			b.stats.SkippedDrugs++
			continue
		}

		// Quirk kept on purpose: a drug whose node already exists is skipped
		// without looking for references, so only the first record carrying a
		// given label contributes. Changing this changes the published graph.
		drugID, created := store.CreateNode(models.NodeDrug, drug.Name)
		if !created {
			b.logger.Debug().Str("drug", drug.Name).Int("node", drugID).Msg("Drug already in graph, skipping")
			b.stats.SkippedDrugs++
			continue
		}
		b.stats.Drugs++

		refs := b.matcher.FindReferences(drug.Name, trials, models.NodeTrial)
		b.addReferences(store, drugID, refs)

		refs = b.matcher.FindReferences(drug.Name, publications, models.NodePubmed)
		b.addReferences(store, drugID, refs)
	}

	g := store.Graph()
	b.logger.Info().
		Int("drugs", b.stats.Drugs).
		Int("skipped_drugs", b.stats.SkippedDrugs).
		Int("references", b.stats.References).
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Msg("Graph built")
	return g, nil
}

// addReferences wires drugID to the node of every reference
func (b *Builder) addReferences(store graphStore, drugID int, refs []models.Reference) {
	for _, ref := range refs {
		b.stats.References++

		targetID, created := store.CreateNode(ref.Kind, ref.Label)
		if !created {
			id, ok := store.FindNode(ref.Kind, ref.Label)
			if !ok {
				b.stats.LookupMisses++
				b.logger.Warn().
					Err(ErrLookupMiss).
					Str("kind", string(ref.Kind)).
					Str("label", ref.Label).
					Msg("Skipping edge")
				continue
			}
			targetID = id
		}

		if _, created := store.CreateEdge(drugID, targetID, ref.Date); !created {
			b.stats.DuplicateEdges++
		}
	}
}

// Build creates a graph with the default validator and no logging
func Build(drugs []models.Drug, trials, publications []models.Record) (*models.Graph, error) {
	return NewBuilder(nil, zerolog.Nop()).Build(drugs, trials, publications)
}
