package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/schema"
	"github.com/kerem-kaynak/kolektor/internal/services"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
)

// newTestService wires a full API service against a fake engine server. The
// handler may be nil for tests that never reach the engine.
func newTestService(t *testing.T, engineHandler http.HandlerFunc) (*APIService, *appcontext.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if engineHandler == nil {
		engineHandler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected engine call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
	server := httptest.NewServer(engineHandler)
	t.Cleanup(server.Close)

	engine, err := services.NewEngineClient(services.EngineConfig{BaseURL: server.URL})
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	sessions := wizard.NewManager(engine, logger, time.Hour)
	t.Cleanup(sessions.Stop)

	ctx := &appcontext.Context{
		Logger:          logger,
		Engine:          engine,
		Sessions:        sessions,
		Port:            "8080",
		MaxUploadBytes:  1 << 20,
		SchemaPeekBytes: schema.DefaultPeekBytes,
		WatchInterval:   5 * time.Millisecond,
	}
	return NewHTTPService(ctx), ctx
}

func doJSON(t *testing.T, service *APIService, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	service.Engine().ServeHTTP(w, req)
	return w
}

type sessionEnvelope struct {
	SessionID string       `json:"sessionId"`
	State     wizard.State `json:"state"`
	Error     string       `json:"error"`
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionEnvelope {
	t.Helper()
	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return envelope
}

func openTestSession(t *testing.T, service *APIService) string {
	t.Helper()
	w := doJSON(t, service, http.MethodPost, "/api/v1/sessions", gin.H{
		"projectId": "p1",
		"name":      "Customer Analysis",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	envelope := decodeSession(t, w)
	require.NotEmpty(t, envelope.SessionID)
	return envelope.SessionID
}

type uploadFile struct {
	name    string
	content string
}

func uploadTables(t *testing.T, service *APIService, sessionID, rowCounts string, files ...uploadFile) *httptest.ResponseRecorder {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	if rowCounts != "" {
		require.NoError(t, writer.WriteField("rowCounts", rowCounts))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID+"/tables", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	service.Engine().ServeHTTP(w, req)
	return w
}
