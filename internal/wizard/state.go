package wizard

import (
	"fmt"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

// State is the complete draft a wizard session accumulates before
// submission. It only ever changes through the reducer.
type State struct {
	Step          Step                       `json:"step"`
	ProjectID     string                     `json:"projectId"`
	Name          string                     `json:"name"`
	Description   string                     `json:"description"`
	TargetColumn  string                     `json:"targetColumn"`
	Tables        []entity.TableFile         `json:"tables"`
	Relationships []entity.TableRelationship `json:"relationships"`
	Aggregations  []entity.AggregationConfig `json:"aggregations"`
	Submitting    bool                       `json:"submitting"`
	SubmitError   string                     `json:"submitError,omitempty"`
}

func (s State) TableByID(id string) (entity.TableFile, bool) {
	for _, table := range s.Tables {
		if table.ID == id {
			return table, true
		}
	}
	return entity.TableFile{}, false
}

func (s State) TableByName(name string) (entity.TableFile, bool) {
	for _, table := range s.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return entity.TableFile{}, false
}

func (s State) PrimaryTable() (entity.TableFile, bool) {
	for _, table := range s.Tables {
		if table.IsPrimary {
			return table, true
		}
	}
	return entity.TableFile{}, false
}

// DetailTables returns every non-primary table, the only tables an
// aggregation may target.
func (s State) DetailTables() []entity.TableFile {
	details := make([]entity.TableFile, 0, len(s.Tables))
	for _, table := range s.Tables {
		if !table.IsPrimary {
			details = append(details, table)
		}
	}
	return details
}

// EdgesForTable returns every relationship touching the named table.
func (s State) EdgesForTable(name string) []entity.TableRelationship {
	var edges []entity.TableRelationship
	for _, rel := range s.Relationships {
		if rel.LeftTable == name || rel.RightTable == name {
			edges = append(edges, rel)
		}
	}
	return edges
}

func (s State) AggregationForTable(name string) (entity.AggregationConfig, bool) {
	for _, config := range s.Aggregations {
		if config.TableName == name {
			return config, true
		}
	}
	return entity.AggregationConfig{}, false
}

// Warnings lists review-step concerns that do not block submission.
func (s State) Warnings() []string {
	var warnings []string
	for _, config := range s.Aggregations {
		if len(config.Features) == 0 {
			warnings = append(warnings, fmt.Sprintf("aggregation for table %q has no features", config.TableName))
		}
		seen := make(map[string]int)
		for _, feature := range config.Features {
			seen[feature.Column]++
			if len(feature.Functions) == 0 {
				warnings = append(warnings, fmt.Sprintf("feature %q on table %q has no functions", feature.Column, config.TableName))
			}
		}
		reported := make(map[string]bool)
		for _, feature := range config.Features {
			if seen[feature.Column] > 1 && !reported[feature.Column] {
				reported[feature.Column] = true
				warnings = append(warnings, fmt.Sprintf("column %q on table %q has %d feature entries", feature.Column, config.TableName, seen[feature.Column]))
			}
		}
	}
	for _, table := range s.DetailTables() {
		if len(s.EdgesForTable(table.Name)) == 0 {
			warnings = append(warnings, fmt.Sprintf("table %q is not joined to any other table", table.Name))
		}
	}
	return warnings
}

// clone deep-copies the state so callers can never alias the store's copy.
func (s State) clone() State {
	out := s

	out.Tables = make([]entity.TableFile, len(s.Tables))
	for i, table := range s.Tables {
		out.Tables[i] = table
		out.Tables[i].Columns = append([]entity.Column(nil), table.Columns...)
	}

	out.Relationships = append([]entity.TableRelationship(nil), s.Relationships...)

	out.Aggregations = make([]entity.AggregationConfig, len(s.Aggregations))
	for i, config := range s.Aggregations {
		out.Aggregations[i] = config
		out.Aggregations[i].Features = make([]entity.AggregationFeature, len(config.Features))
		for j, feature := range config.Features {
			out.Aggregations[i].Features[j] = feature
			out.Aggregations[i].Features[j].Functions = append([]entity.AggregationFunction(nil), feature.Functions...)
		}
	}

	return out
}
