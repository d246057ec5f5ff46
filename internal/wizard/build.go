package wizard

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

var validate = validator.New()

// BuildCollection assembles the submission payload from session state. The
// state must already satisfy the review-step guards, this re-checks them
// because submission is the one transition that leaves the session.
func BuildCollection(s State) (*entity.DatasetCollection, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, invalidf("collection name is required")
	}
	if len(s.Tables) == 0 {
		return nil, invalidf("at least one table must be uploaded")
	}
	primary, ok := s.PrimaryTable()
	if !ok {
		return nil, invalidf("a primary table must be selected")
	}

	collection := &entity.DatasetCollection{
		Name:          name,
		Description:   s.Description,
		ProjectID:     s.ProjectID,
		Tables:        s.Tables,
		PrimaryTable:  primary.Name,
		TargetColumn:  s.TargetColumn,
		Relationships: s.Relationships,
		Aggregations:  s.Aggregations,
		Status:        entity.StatusDraft,
	}
	if collection.Relationships == nil {
		collection.Relationships = []entity.TableRelationship{}
	}
	if collection.Aggregations == nil {
		collection.Aggregations = []entity.AggregationConfig{}
	}

	if err := validate.Struct(collection); err != nil {
		return nil, fmt.Errorf("collection payload failed validation: %w", err)
	}
	return collection, nil
}
