package entity

type TableFile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Filename    string   `json:"filename"`
	IsPrimary   bool     `json:"isPrimary"`
	Columns     []Column `json:"columns" validate:"min=1,dive"`
	RowCount    int64    `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
	FileSize    int64    `json:"fileSize"`
}

func (t TableFile) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

func (t TableFile) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}
