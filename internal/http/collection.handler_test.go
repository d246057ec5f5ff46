package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

func TestGetCollectionNormalizesEngineShape(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/datasets/collections/col-7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "col-7",
			"status":        "UPLOADING",
			"project_id":    "p1",
			"primary_table": "customers",
		})
	})

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/col-7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Collection entity.CollectionResource `json:"collection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, entity.StatusProcessing, response.Collection.Status)
	assert.Equal(t, "p1", response.Collection.ProjectID)
	assert.Equal(t, "customers", response.Collection.PrimaryTable)
}

func TestGetCollectionPassesEngine404Through(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Dataset not found"}`))
	})

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCollectionEngineOutage(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	})

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/col-7", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestWatchCollectionReturnsOnChange(t *testing.T) {
	var polls atomic.Int64
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		status := "PROCESSING"
		if polls.Add(1) >= 3 {
			status = "READY"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "col-7", "status": status})
	})

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/col-7/watch?status=processing&timeout=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Changed    bool                      `json:"changed"`
		Collection entity.CollectionResource `json:"collection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Changed)
	assert.Equal(t, entity.StatusReady, response.Collection.Status)
	assert.GreaterOrEqual(t, polls.Load(), int64(3))
}

func TestWatchCollectionTimeout(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "col-7", "status": "PROCESSING"})
	})

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/col-7/watch?status=processing&timeout=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Changed    bool                      `json:"changed"`
		Collection entity.CollectionResource `json:"collection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Changed)
	assert.Equal(t, entity.StatusProcessing, response.Collection.Status)
}

func TestWatchCollectionRejectsBadTimeout(t *testing.T) {
	service, _ := newTestService(t, nil)

	w := doJSON(t, service, http.MethodGet, "/api/v1/collections/col-7/watch?timeout=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
