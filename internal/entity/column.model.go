package entity

const DefaultColumnType = "VARCHAR"

type Column struct {
	Name         string `json:"name" validate:"required"`
	Type         string `json:"type"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}
