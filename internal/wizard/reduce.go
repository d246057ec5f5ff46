package wizard

import (
	"fmt"
	"strings"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

// reduce applies one action to a private copy of the state and returns the
// result. On error the store keeps its previous state, so every branch may
// mutate s freely.
func reduce(s State, action Action) (State, error) {
	if s.Submitting {
		switch action.(type) {
		case submitFailed:
		default:
			return s, conflictf("a submission is in progress")
		}
	}

	switch a := action.(type) {
	case AddTables:
		return reduceAddTables(s, a)
	case RemoveTable:
		return reduceRemoveTable(s, a)
	case SetPrimaryTable:
		return reduceSetPrimaryTable(s, a)
	case SetDetails:
		return reduceSetDetails(s, a)
	case AddRelationship:
		return reduceAddRelationship(s, a)
	case RemoveRelationship:
		return reduceRemoveRelationship(s, a)
	case AddAggregation:
		return reduceAddAggregation(s, a)
	case RemoveAggregation:
		return reduceRemoveAggregation(s, a)
	case UpdateAggregation:
		return reduceUpdateAggregation(s, a)
	case AddFeature:
		return reduceAddFeature(s, a)
	case RemoveFeature:
		return reduceRemoveFeature(s, a)
	case ToggleFunction:
		return reduceToggleFunction(s, a)
	case Advance:
		return reduceAdvance(s)
	case Back:
		return reduceBack(s, a)
	case submitStarted:
		if s.Step != StepReview {
			return s, conflictf("submission is only available from the review step")
		}
		s.Submitting = true
		s.SubmitError = ""
		return s, nil
	case submitFailed:
		s.Submitting = false
		s.SubmitError = a.reason
		return s, nil
	default:
		return s, fmt.Errorf("unhandled action %q", action.name())
	}
}

func reduceAddTables(s State, a AddTables) (State, error) {
	if len(a.Tables) == 0 {
		return s, invalidf("upload contains no tables")
	}

	wasEmpty := len(s.Tables) == 0
	for _, table := range a.Tables {
		table.Name = uniqueTableName(s, table.Name)
		if table.ColumnCount == 0 {
			table.ColumnCount = len(table.Columns)
		}
		table.IsPrimary = false
		s.Tables = append(s.Tables, table)
	}
	if wasEmpty {
		s.Tables[0].IsPrimary = true
	}
	return s, nil
}

func reduceRemoveTable(s State, a RemoveTable) (State, error) {
	idx := -1
	for i, table := range s.Tables {
		if table.ID == a.TableID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, &NotFoundError{Resource: "table"}
	}

	removed := s.Tables[idx]
	s.Tables = append(s.Tables[:idx], s.Tables[idx+1:]...)

	// Cascade: relationships and aggregations must never reference a table
	// that is gone. The primary flag is not reassigned automatically.
	kept := s.Relationships[:0]
	for _, rel := range s.Relationships {
		if rel.LeftTable != removed.Name && rel.RightTable != removed.Name {
			kept = append(kept, rel)
		}
	}
	s.Relationships = kept

	keptAggs := s.Aggregations[:0]
	for _, config := range s.Aggregations {
		if config.TableName != removed.Name {
			keptAggs = append(keptAggs, config)
		}
	}
	s.Aggregations = keptAggs

	return s, nil
}

func reduceSetPrimaryTable(s State, a SetPrimaryTable) (State, error) {
	if _, ok := s.TableByName(a.TableName); !ok {
		return s, &NotFoundError{Resource: "table"}
	}

	for i := range s.Tables {
		s.Tables[i].IsPrimary = s.Tables[i].Name == a.TableName
	}

	// A primary table cannot carry an aggregation config, drop any it had as
	// a detail table.
	kept := s.Aggregations[:0]
	for _, config := range s.Aggregations {
		if config.TableName != a.TableName {
			kept = append(kept, config)
		}
	}
	s.Aggregations = kept

	return s, nil
}

func reduceSetDetails(s State, a SetDetails) (State, error) {
	if a.Name != nil {
		s.Name = *a.Name
	}
	if a.Description != nil {
		s.Description = *a.Description
	}
	if a.TargetColumn != nil {
		s.TargetColumn = *a.TargetColumn
	}
	return s, nil
}

func reduceAddRelationship(s State, a AddRelationship) (State, error) {
	rel := a.Relationship
	if rel.LeftTable == rel.RightTable {
		return s, invalidf("a table cannot be joined to itself")
	}

	left, ok := s.TableByName(rel.LeftTable)
	if !ok {
		return s, invalidf("unknown table %q", rel.LeftTable)
	}
	right, ok := s.TableByName(rel.RightTable)
	if !ok {
		return s, invalidf("unknown table %q", rel.RightTable)
	}
	if !left.HasColumn(rel.LeftKey) {
		return s, invalidf("table %q has no column %q", rel.LeftTable, rel.LeftKey)
	}
	if !right.HasColumn(rel.RightKey) {
		return s, invalidf("table %q has no column %q", rel.RightTable, rel.RightKey)
	}

	if rel.JoinType == "" {
		rel.JoinType = entity.JoinLeft
	} else if !rel.JoinType.Valid() {
		return s, invalidf("unknown join type %q", rel.JoinType)
	}
	if rel.RelationshipType == "" {
		rel.RelationshipType = entity.OneToMany
	}

	s.Relationships = append(s.Relationships, rel)
	return s, nil
}

func reduceRemoveRelationship(s State, a RemoveRelationship) (State, error) {
	// Removing an id that is already gone is a no-op, the console may send
	// stale deletes after a table cascade.
	kept := s.Relationships[:0]
	for _, rel := range s.Relationships {
		if rel.ID != a.RelationshipID {
			kept = append(kept, rel)
		}
	}
	s.Relationships = kept
	return s, nil
}

func reduceAddAggregation(s State, a AddAggregation) (State, error) {
	table, ok := s.TableByName(a.TableName)
	if !ok {
		return s, &NotFoundError{Resource: "table"}
	}
	if table.IsPrimary {
		return s, invalidf("aggregations can only target detail tables, %q is the primary table", a.TableName)
	}
	if _, exists := s.AggregationForTable(a.TableName); exists {
		return s, invalidf("table %q already has an aggregation config", a.TableName)
	}

	groupBy := ""
	if len(table.Columns) > 0 {
		groupBy = table.Columns[0].Name
	}

	s.Aggregations = append(s.Aggregations, entity.AggregationConfig{
		ID:            a.ID,
		TableName:     a.TableName,
		GroupByColumn: groupBy,
		Prefix:        entity.DefaultPrefix(a.TableName),
		Features:      []entity.AggregationFeature{},
	})
	return s, nil
}

func reduceRemoveAggregation(s State, a RemoveAggregation) (State, error) {
	idx := aggregationIndex(s, a.TableName)
	if idx < 0 {
		return s, &NotFoundError{Resource: "aggregation"}
	}
	s.Aggregations = append(s.Aggregations[:idx], s.Aggregations[idx+1:]...)
	return s, nil
}

func reduceUpdateAggregation(s State, a UpdateAggregation) (State, error) {
	idx := aggregationIndex(s, a.TableName)
	if idx < 0 {
		return s, &NotFoundError{Resource: "aggregation"}
	}

	if a.GroupByColumn != nil {
		table, _ := s.TableByName(a.TableName)
		if !table.HasColumn(*a.GroupByColumn) {
			return s, invalidf("table %q has no column %q", a.TableName, *a.GroupByColumn)
		}
		s.Aggregations[idx].GroupByColumn = *a.GroupByColumn
	}
	if a.Prefix != nil {
		if strings.TrimSpace(*a.Prefix) == "" {
			return s, invalidf("prefix cannot be empty")
		}
		s.Aggregations[idx].Prefix = *a.Prefix
	}
	return s, nil
}

func reduceAddFeature(s State, a AddFeature) (State, error) {
	idx := aggregationIndex(s, a.TableName)
	if idx < 0 {
		return s, &NotFoundError{Resource: "aggregation"}
	}
	table, _ := s.TableByName(a.TableName)

	column := a.Column
	if column == "" {
		column = firstUnusedColumn(table, s.Aggregations[idx])
	} else if !table.HasColumn(column) {
		return s, invalidf("table %q has no column %q", a.TableName, column)
	}

	s.Aggregations[idx].Features = append(s.Aggregations[idx].Features, entity.AggregationFeature{
		Column:    column,
		Functions: []entity.AggregationFunction{entity.AggSum},
	})
	return s, nil
}

func reduceRemoveFeature(s State, a RemoveFeature) (State, error) {
	idx := aggregationIndex(s, a.TableName)
	if idx < 0 {
		return s, &NotFoundError{Resource: "aggregation"}
	}
	features := s.Aggregations[idx].Features
	if a.Index < 0 || a.Index >= len(features) {
		return s, invalidf("feature index %d out of range", a.Index)
	}
	s.Aggregations[idx].Features = append(features[:a.Index], features[a.Index+1:]...)
	return s, nil
}

func reduceToggleFunction(s State, a ToggleFunction) (State, error) {
	if !a.Function.Valid() {
		return s, invalidf("unknown aggregation function %q", a.Function)
	}
	idx := aggregationIndex(s, a.TableName)
	if idx < 0 {
		return s, &NotFoundError{Resource: "aggregation"}
	}
	features := s.Aggregations[idx].Features
	if a.Index < 0 || a.Index >= len(features) {
		return s, invalidf("feature index %d out of range", a.Index)
	}

	functions := features[a.Index].Functions
	for i, fn := range functions {
		if fn == a.Function {
			features[a.Index].Functions = append(functions[:i], functions[i+1:]...)
			return s, nil
		}
	}
	features[a.Index].Functions = append(functions, a.Function)
	return s, nil
}

func reduceAdvance(s State) (State, error) {
	if err := advanceGuard(s); err != nil {
		return s, err
	}
	next, ok := s.Step.next()
	if !ok {
		return s, invalidf("already at the final step")
	}
	s.Step = next
	return s, nil
}

// advanceGuard enforces the per-step forward conditions. Relationships and
// aggregations are optional, their steps never block.
func advanceGuard(s State) error {
	switch s.Step {
	case StepUpload:
		if strings.TrimSpace(s.Name) == "" {
			return invalidf("collection name is required")
		}
		if len(s.Tables) == 0 {
			return invalidf("at least one table must be uploaded")
		}
	case StepIdentify:
		if _, ok := s.PrimaryTable(); !ok {
			return invalidf("a primary table must be selected")
		}
	}
	return nil
}

func reduceBack(s State, a Back) (State, error) {
	if a.To == "" {
		prev, ok := s.Step.previous()
		if !ok {
			return s, invalidf("already at the first step")
		}
		s.Step = prev
		return s, nil
	}

	if !a.To.Valid() {
		return s, invalidf("unknown wizard step %q", a.To)
	}
	if a.To.Index() >= s.Step.Index() {
		return s, invalidf("can only navigate to an earlier step")
	}
	s.Step = a.To
	return s, nil
}

// uniqueTableName resolves upload name collisions with a deterministic
// numeric suffix: customers, customers_2, customers_3, ...
func uniqueTableName(s State, name string) string {
	if name == "" {
		name = "table"
	}
	if _, taken := s.TableByName(name); !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := s.TableByName(candidate); !taken {
			return candidate
		}
	}
}

func firstUnusedColumn(table entity.TableFile, config entity.AggregationConfig) string {
	used := make(map[string]bool, len(config.Features))
	for _, feature := range config.Features {
		used[feature.Column] = true
	}
	for _, col := range table.Columns {
		if !used[col.Name] {
			return col.Name
		}
	}
	if len(table.Columns) > 0 {
		return table.Columns[0].Name
	}
	return ""
}

func aggregationIndex(s State, tableName string) int {
	for i, config := range s.Aggregations {
		if config.TableName == tableName {
			return i
		}
	}
	return -1
}
