package entity

type JoinType string

const (
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinInner JoinType = "inner"
	JoinOuter JoinType = "outer"
)

func (j JoinType) Valid() bool {
	switch j {
	case JoinLeft, JoinRight, JoinInner, JoinOuter:
		return true
	}
	return false
}

// Cardinality is advisory metadata for the engine's join planner, it is
// never validated against the actual data.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToOne  Cardinality = "many-to-one"
	ManyToMany Cardinality = "many-to-many"
)

type TableRelationship struct {
	ID               string      `json:"id"`
	LeftTable        string      `json:"leftTable" validate:"required"`
	LeftKey          string      `json:"leftKey" validate:"required"`
	RightTable       string      `json:"rightTable" validate:"required,nefield=LeftTable"`
	RightKey         string      `json:"rightKey" validate:"required"`
	JoinType         JoinType    `json:"joinType" validate:"oneof=left right inner outer"`
	RelationshipType Cardinality `json:"relationshipType"`
}
