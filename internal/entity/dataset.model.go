package entity

type CollectionStatus string

const (
	StatusDraft      CollectionStatus = "draft"
	StatusProcessing CollectionStatus = "processing"
	StatusReady      CollectionStatus = "ready"
	StatusFailed     CollectionStatus = "failed"
)

func (s CollectionStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// DatasetCollection is the payload submitted to the ML engine when the
// wizard completes.
type DatasetCollection struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	ProjectID     string              `json:"projectId" validate:"required"`
	Tables        []TableFile         `json:"tables" validate:"min=1,dive"`
	PrimaryTable  string              `json:"primaryTable" validate:"required"`
	TargetColumn  string              `json:"targetColumn"`
	Relationships []TableRelationship `json:"relationships" validate:"dive"`
	Aggregations  []AggregationConfig `json:"aggregations" validate:"dive"`
	Status        CollectionStatus    `json:"status"`
}

// CollectionResource is the engine's view of a collection after wire
// normalization. Everything the console renders comes from this shape.
type CollectionResource struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	ProjectID         string           `json:"projectId,omitempty"`
	Status            CollectionStatus `json:"status"`
	PrimaryTable      string           `json:"primaryTable,omitempty"`
	TableCount        int              `json:"tableCount"`
	RowCount          int64            `json:"rowCount"`
	ColumnCount       int              `json:"columnCount"`
	CompletenessScore *float64         `json:"completenessScore,omitempty"`
	Message           string           `json:"message,omitempty"`
	CreatedAt         string           `json:"createdAt,omitempty"`
	UpdatedAt         string           `json:"updatedAt,omitempty"`
}
