package services

import (
	"encoding/json"
	"strings"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

// wireCollection accepts every field spelling the engine deployments have
// used, camelCase from the Java engine and snake_case from the older
// FastAPI one. Normalization happens exactly once, on receipt; the rest of
// the codebase only ever sees entity.CollectionResource.
type wireCollection struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	ProjectID  string `json:"projectId"`
	ProjectID2 string `json:"project_id"`

	PrimaryTable  string `json:"primaryTable"`
	PrimaryTable2 string `json:"primary_table"`

	TableCount   int   `json:"tableCount"`
	TableCount2  int   `json:"table_count"`
	RowCount     int64 `json:"rowCount"`
	RowCount2    int64 `json:"row_count"`
	ColumnCount  int   `json:"columnCount"`
	ColumnCount2 int   `json:"column_count"`

	CompletenessScore  *float64 `json:"completenessScore"`
	CompletenessScore2 *float64 `json:"completeness_score"`
	Completeness       *float64 `json:"completeness"`

	Message       string `json:"message"`
	ErrorMessage  string `json:"errorMessage"`
	ErrorMessage2 string `json:"error_message"`

	CreatedAt  string `json:"createdAt"`
	CreatedAt2 string `json:"created_at"`
	UpdatedAt  string `json:"updatedAt"`
	UpdatedAt2 string `json:"updated_at"`
}

func (w wireCollection) normalize() entity.CollectionResource {
	return entity.CollectionResource{
		ID:                w.ID,
		Name:              w.Name,
		ProjectID:         firstNonEmpty(w.ProjectID, w.ProjectID2),
		Status:            normalizeStatus(w.Status),
		PrimaryTable:      firstNonEmpty(w.PrimaryTable, w.PrimaryTable2),
		TableCount:        firstNonZero(w.TableCount, w.TableCount2),
		RowCount:          firstNonZero(w.RowCount, w.RowCount2),
		ColumnCount:       firstNonZero(w.ColumnCount, w.ColumnCount2),
		CompletenessScore: firstFloat(w.CompletenessScore, w.CompletenessScore2, w.Completeness),
		Message:           firstNonEmpty(w.Message, w.ErrorMessage, w.ErrorMessage2),
		CreatedAt:         firstNonEmpty(w.CreatedAt, w.CreatedAt2),
		UpdatedAt:         firstNonEmpty(w.UpdatedAt, w.UpdatedAt2),
	}
}

// normalizeStatus folds the engine's status vocabulary into the console's
// four states.
func normalizeStatus(raw string) entity.CollectionStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "READY", "ACTIVE":
		return entity.StatusReady
	case "PROCESSING", "UPLOADING", "PENDING":
		return entity.StatusProcessing
	case "FAILED", "ERROR":
		return entity.StatusFailed
	case "DRAFT", "":
		return entity.StatusDraft
	default:
		return entity.CollectionStatus(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// extractErrorMessage pulls a human-readable message out of an engine error
// body. The Java engine answers {"message": ...}, the FastAPI one
// {"detail": ...} and the gateway {"error": ...}.
func extractErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if value, ok := payload[key].(string); ok && value != "" {
				return value
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	return "unknown engine error"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero[T int | int64](values ...T) T {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
