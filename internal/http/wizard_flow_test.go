package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
)

// TestWizardFlow walks the whole journey: upload three files, pick the
// primary, join the details, configure one aggregation and submit.
func TestWizardFlow(t *testing.T) {
	var submitted entity.DatasetCollection
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/datasets/collections", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "col-42",
			"name":   submitted.Name,
			"status": "PROCESSING",
		})
	})

	sessionID := openTestSession(t, service)

	// Upload step.
	w := uploadTables(t, service, sessionID, `{"customers.csv": 1500, "transactions.csv": 45000, "support_tickets.csv": 3200}`,
		uploadFile{name: "customers.csv", content: "customer_id,name,email,signup_date\n"},
		uploadFile{name: "transactions.csv", content: "transaction_id,customer_id,amount,timestamp\n"},
		uploadFile{name: "support_tickets.csv", content: "ticket_id,customer_id,created_at\n"},
	)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, wizard.StepIdentify, decodeSession(t, w).State.Step)

	// Identify step.
	w = doJSON(t, service, http.MethodPut, "/api/v1/sessions/"+sessionID+"/primary", gin.H{"tableName": "customers"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, wizard.StepRelationships, decodeSession(t, w).State.Step)

	// Relationships step.
	for _, right := range []string{"transactions", "support_tickets"} {
		w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/relationships", gin.H{
			"leftTable":  "customers",
			"leftKey":    "customer_id",
			"rightTable": right,
			"rightKey":   "customer_id",
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	}

	state := decodeSession(t, w).State
	require.Len(t, state.Relationships, 2)
	assert.Equal(t, entity.JoinLeft, state.Relationships[0].JoinType, "join type defaults to left")
	assert.Equal(t, entity.OneToMany, state.Relationships[0].RelationshipType)

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Aggregations step.
	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/aggregations", gin.H{"tableName": "transactions"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, service, http.MethodPut, "/api/v1/sessions/"+sessionID+"/aggregations/transactions", gin.H{"groupByColumn": "customer_id"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/aggregations/transactions/features", gin.H{"column": "amount"})
	require.Equal(t, http.StatusOK, w.Code)

	state = decodeSession(t, w).State
	require.Len(t, state.Aggregations, 1)
	config := state.Aggregations[0]
	assert.Equal(t, "customer_id", config.GroupByColumn)
	assert.Equal(t, "TRANSACTIONS_", config.Prefix)
	require.Len(t, config.Features, 1)
	assert.Equal(t, []entity.AggregationFunction{entity.AggSum}, config.Features[0].Functions)

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, wizard.StepReview, decodeSession(t, w).State.Step)

	// Review step.
	w = doJSON(t, service, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var review struct {
		Summary struct {
			OutputColumns []string `json:"outputColumns"`
			Warnings      []string `json:"warnings"`
			TotalRows     string   `json:"totalRows"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	assert.Equal(t, []string{"TRANSACTIONS_amount_sum"}, review.Summary.OutputColumns)
	assert.Empty(t, review.Summary.Warnings)
	assert.Equal(t, "49,700", review.Summary.TotalRows)

	// Submit.
	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var response struct {
		Collection entity.CollectionResource `json:"collection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "col-42", response.Collection.ID)
	assert.Equal(t, entity.StatusProcessing, response.Collection.Status)

	// The engine received the full payload.
	assert.Equal(t, "Customer Analysis", submitted.Name)
	assert.Equal(t, "p1", submitted.ProjectID)
	assert.Equal(t, "customers", submitted.PrimaryTable)
	assert.Equal(t, entity.StatusDraft, submitted.Status)
	assert.Len(t, submitted.Tables, 3)
	assert.Len(t, submitted.Relationships, 2)
	require.Len(t, submitted.Aggregations, 1)
	assert.Equal(t, "TRANSACTIONS_", submitted.Aggregations[0].Prefix)

	// A submitted session is gone.
	w = doJSON(t, service, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"message": "feature store unavailable"})
	})

	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "customers.csv", content: "customer_id,name\n"},
	)
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 4; i++ {
		w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	}

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/submit", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var response struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "feature store unavailable", response.Error)

	// The session survives on the review step with the failure recorded.
	w = doJSON(t, service, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeSession(t, w).State
	assert.Equal(t, wizard.StepReview, state.Step)
	assert.False(t, state.Submitting)
	assert.Contains(t, state.SubmitError, "feature store unavailable")
}
