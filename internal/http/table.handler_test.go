package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTablesExtractsColumns(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, `{"customers.csv": 1500, "transactions.csv": 45000}`,
		uploadFile{name: "customers.csv", content: "customer_id,name,email\n1,ada,a@example.com\n"},
		uploadFile{name: "transactions.csv", content: "transaction_id,customer_id,amount,timestamp\n"},
	)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	state := decodeSession(t, w).State
	require.Len(t, state.Tables, 2)

	customers := state.Tables[0]
	assert.Equal(t, "customers", customers.Name)
	assert.Equal(t, "customers.csv", customers.Filename)
	assert.True(t, customers.IsPrimary, "first table of the first upload becomes primary")
	assert.Equal(t, []string{"customer_id", "name", "email"}, customers.ColumnNames())
	assert.Equal(t, int64(1500), customers.RowCount)
	assert.Equal(t, 3, customers.ColumnCount)
	assert.NotEmpty(t, customers.ID)

	transactions := state.Tables[1]
	assert.False(t, transactions.IsPrimary)
	assert.Equal(t, int64(45000), transactions.RowCount)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "notes.txt", content: "hello"},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, service, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSession(t, w).State.Tables, "rejected upload must not register tables")
}

func TestUploadWithoutFiles(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadTooLarge(t *testing.T) {
	service, ctx := newTestService(t, nil)
	ctx.MaxUploadBytes = 128
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "big.csv", content: "customer_id,name\n" + string(make([]byte, 4096))},
	)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadNameCollisionGetsSuffix(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "customers.csv", content: "customer_id,name\n"},
	)
	require.Equal(t, http.StatusOK, w.Code)

	w = uploadTables(t, service, sessionID, "",
		uploadFile{name: "customers.csv", content: "customer_id,name\n"},
	)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeSession(t, w).State
	require.Len(t, state.Tables, 2)
	assert.Equal(t, "customers", state.Tables[0].Name)
	assert.Equal(t, "customers_2", state.Tables[1].Name)
	assert.False(t, state.Tables[1].IsPrimary, "a later upload never steals the primary flag")
}

func TestUploadLegacyWorkbookFallsBack(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "legacy.xls", content: "not a real workbook"},
	)
	require.Equal(t, http.StatusOK, w.Code, "unreadable headers fall back, they never block the upload")

	state := decodeSession(t, w).State
	require.Len(t, state.Tables, 1)
	assert.Equal(t, []string{"id", "column1", "column2"}, state.Tables[0].ColumnNames())
}

func TestRemoveTableUnknown(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := doJSON(t, service, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/tables/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveTableCascades(t *testing.T) {
	service, _ := newTestService(t, nil)
	sessionID := openTestSession(t, service)

	w := uploadTables(t, service, sessionID, "",
		uploadFile{name: "customers.csv", content: "customer_id,name\n"},
		uploadFile{name: "transactions.csv", content: "transaction_id,customer_id,amount\n"},
	)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeSession(t, w).State

	w = doJSON(t, service, http.MethodPost, "/api/v1/sessions/"+sessionID+"/relationships", map[string]string{
		"leftTable":  "customers",
		"leftKey":    "customer_id",
		"rightTable": "transactions",
		"rightKey":   "customer_id",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, service, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/tables/"+state.Tables[1].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	after := decodeSession(t, w).State
	require.Len(t, after.Tables, 1)
	assert.Empty(t, after.Relationships, "relationships referencing a removed table are dropped")
}
