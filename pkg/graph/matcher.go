package graph

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/validation"
)

// Matcher finds the records whose title mentions a drug
type Matcher struct {
	validator validation.Validator
	logger    zerolog.Logger
}

// NewMatcher creates a matcher. Records rejected by the validator are skipped.
func NewMatcher(validator validation.Validator, logger zerolog.Logger) *Matcher {
	if validator == nil {
		validator = validation.NewFieldValidator()
	}
	return &Matcher{
		validator: validator,
		logger:    logger,
	}
}

// FindReferences scans records in order and, for every title containing
// drugName (case-insensitive), emits a reference of the given kind to the
// record followed by a journal reference on the same date.
// Results are not deduplicated.
func (m *Matcher) FindReferences(drugName string, records []models.Record, kind models.NodeType) []models.Reference {
	needle := strings.ToLower(drugName)

	var refs []models.Reference
	for _, rec := range records {
		if err := m.validator.ValidateRecord(rec); err != nil {
			m.logger.Debug().Err(err).Str("kind", string(kind)).Msg("Skipping record")
			continue
		}
		if !strings.Contains(strings.ToLower(rec.Title), needle) {
			continue
		}
		refs = append(refs,
			models.Reference{Kind: kind, Label: rec.Title, Date: rec.Date},
			models.Reference{Kind: models.NodeJournal, Label: rec.Journal, Date: rec.Date},
		)
	}
	return refs
}

// FindReferences matches with the default field validator and no logging
func FindReferences(drugName string, records []models.Record, kind models.NodeType) []models.Reference {
	return NewMatcher(nil, zerolog.Nop()).FindReferences(drugName, records, kind)
}
