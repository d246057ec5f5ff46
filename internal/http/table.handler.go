package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/metrics"
	"github.com/kerem-kaynak/kolektor/internal/schema"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

// UploadTables accepts one or more data files under the "files" field and
// registers them as tables in a single state transition. The console parses
// files locally and may send row counts along in a "rowCounts" field, a
// JSON object keyed by filename.
func UploadTables(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctx.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctx.MaxUploadBytes)
		}

		form, err := c.MultipartForm()
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				ctx.Logger.Warn("Upload exceeds size limit", zap.Int64("limit_bytes", maxBytesErr.Limit))
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload exceeds size limit"})
				return
			}
			ctx.Logger.Error("Failed to parse multipart form", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse multipart form"})
			return
		}

		files := form.File["files"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No files in request"})
			return
		}

		rowCounts := make(map[string]int64)
		if values := form.Value["rowCounts"]; len(values) > 0 {
			if err := json.Unmarshal([]byte(values[0]), &rowCounts); err != nil {
				ctx.Logger.Warn("Ignoring malformed rowCounts field", zap.Error(err))
			}
		}

		tables := make([]entity.TableFile, 0, len(files))
		for _, file := range files {
			if !isTableFile(file.Filename) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, only CSV and Excel files are allowed: " + file.Filename})
				return
			}

			src, err := file.Open()
			if err != nil {
				ctx.Logger.Error("Failed to open uploaded file", zap.String("filename", file.Filename), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
				return
			}

			columns, err := schema.Extract(src, file.Filename, ctx.SchemaPeekBytes)
			src.Close()
			if err != nil {
				metrics.SchemaFallbacks.Inc()
				ctx.Logger.Warn("Falling back to generic columns",
					zap.String("filename", file.Filename),
					zap.Error(err),
				)
			}

			tables = append(tables, entity.TableFile{
				ID:          uuid.NewString(),
				Name:        schema.DeriveTableName(file.Filename),
				Filename:    file.Filename,
				Columns:     columns,
				RowCount:    rowCounts[file.Filename],
				ColumnCount: len(columns),
				FileSize:    file.Size,
			})
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.AddTables{Tables: tables})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		metrics.TablesUploaded.Add(float64(len(tables)))
		ctx.Logger.Info("Tables uploaded",
			zap.String("session_id", c.Param("sessionID")),
			zap.Int("count", len(tables)),
		)
		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func RemoveTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.RemoveTable{TableID: c.Param("tableID")})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func isTableFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}
