package wizard

import "github.com/kerem-kaynak/kolektor/internal/entity"

// Action is a request to change session state. Reducers are deterministic,
// so anything random (ids) is generated by the caller and carried on the
// action.
type Action interface {
	name() string
}

// AddTables appends a batch of uploaded tables. The whole batch lands in a
// single state transition so a multi-file upload is never half-applied.
type AddTables struct {
	Tables []entity.TableFile
}

// RemoveTable drops a table and cascades over every relationship and
// aggregation referencing it.
type RemoveTable struct {
	TableID string
}

// SetPrimaryTable flags one table as primary and clears the flag everywhere
// else.
type SetPrimaryTable struct {
	TableName string
}

// SetDetails updates the collection metadata fields. Nil means leave
// unchanged.
type SetDetails struct {
	Name         *string
	Description  *string
	TargetColumn *string
}

type AddRelationship struct {
	Relationship entity.TableRelationship
}

type RemoveRelationship struct {
	RelationshipID string
}

type AddAggregation struct {
	ID        string
	TableName string
}

type RemoveAggregation struct {
	TableName string
}

// UpdateAggregation changes the group-by column or output prefix of an
// existing config. Nil means leave unchanged.
type UpdateAggregation struct {
	TableName     string
	GroupByColumn *string
	Prefix        *string
}

// AddFeature adds a feature row for a column. An empty Column picks the
// first column that has no feature yet.
type AddFeature struct {
	TableName string
	Column    string
}

type RemoveFeature struct {
	TableName string
	Index     int
}

// ToggleFunction adds the function to the feature's set if absent, removes
// it if present. Newly added functions go to the end of the set.
type ToggleFunction struct {
	TableName string
	Index     int
	Function  entity.AggregationFunction
}

// Advance moves to the next step when the current step's guard passes.
type Advance struct{}

// Back moves to the previous step, or to any earlier step when To is set.
type Back struct {
	To Step
}

// submitStarted and submitFailed bracket the in-flight submission. They are
// dispatched by the session manager only.
type submitStarted struct{}

type submitFailed struct {
	reason string
}

func (AddTables) name() string          { return "add_tables" }
func (RemoveTable) name() string        { return "remove_table" }
func (SetPrimaryTable) name() string    { return "set_primary_table" }
func (SetDetails) name() string         { return "set_details" }
func (AddRelationship) name() string    { return "add_relationship" }
func (RemoveRelationship) name() string { return "remove_relationship" }
func (AddAggregation) name() string     { return "add_aggregation" }
func (RemoveAggregation) name() string  { return "remove_aggregation" }
func (UpdateAggregation) name() string  { return "update_aggregation" }
func (AddFeature) name() string         { return "add_feature" }
func (RemoveFeature) name() string      { return "remove_feature" }
func (ToggleFunction) name() string     { return "toggle_function" }
func (Advance) name() string            { return "advance" }
func (Back) name() string               { return "back" }
func (submitStarted) name() string      { return "submit_started" }
func (submitFailed) name() string       { return "submit_failed" }
