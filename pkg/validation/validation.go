package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ha1tch/drugref/pkg/models"
)

// ErrMissingField is returned when an input record lacks a required field
var ErrMissingField = errors.New("missing required field")

// Validator checks input records before they reach the graph builder
type Validator interface {
	ValidateDrug(d models.Drug) error
	ValidateRecord(r models.Record) error
}

// FieldValidator rejects records whose required fields are blank
type FieldValidator struct {
	// RecordFields lists the record fields that must be non-blank:
	// any of "id", "title", "date", "journal"
	RecordFields []string
}

// NewFieldValidator creates a validator requiring title, date and journal
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{
		RecordFields: []string{"title", "date", "journal"},
	}
}

// ValidateDrug checks that a drug has a name
func (v *FieldValidator) ValidateDrug(d models.Drug) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: drug %q has no name", ErrMissingField, d.ID)
	}
	return nil
}

// ValidateRecord checks a trial or publication record
func (v *FieldValidator) ValidateRecord(r models.Record) error {
	var missing []string
	for _, field := range v.RecordFields {
		if strings.TrimSpace(recordField(r, field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: record %q lacks %s", ErrMissingField, r.ID, strings.Join(missing, ", "))
	}
	return nil
}

func recordField(r models.Record, field string) string {
	switch field {
	case "id":
		return r.ID
	case "title":
		return r.Title
	case "date":
		return r.Date
	case "journal":
		return r.Journal
	default:
		return ""
	}
}

// NoOpValidator is a validator that always passes
type NoOpValidator struct{}

// NewNoOpValidator creates a no-op validator
func NewNoOpValidator() *NoOpValidator {
	return &NoOpValidator{}
}

// ValidateDrug always returns nil
func (n *NoOpValidator) ValidateDrug(d models.Drug) error {
	return nil
}

// ValidateRecord always returns nil
func (n *NoOpValidator) ValidateRecord(r models.Record) error {
	return nil
}
