package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/utils"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

func OpenSession(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type openSessionRequest struct {
			ProjectID   string `json:"projectId" binding:"required"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}

		var request openSessionRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		id, state, err := ctx.Sessions.Open(request.ProjectID, request.Name, request.Description)
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"sessionId": id, "state": state})
	}
}

func GetSession(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ctx.Sessions.StateFor(c.Param("sessionID"))
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state, "summary": reviewSummary(state)})
	}
}

// reviewSummary precomputes the labels the review step renders, so the
// console never has to format sizes or walk aggregations itself.
func reviewSummary(state wizard.State) gin.H {
	var totalRows int64
	var totalSize int64
	totalColumns := 0
	for _, table := range state.Tables {
		totalRows += table.RowCount
		totalColumns += table.ColumnCount
		totalSize += table.FileSize
	}

	outputColumns := []string{}
	for _, config := range state.Aggregations {
		outputColumns = append(outputColumns, config.OutputColumns()...)
	}

	warnings := state.Warnings()
	if warnings == nil {
		warnings = []string{}
	}

	return gin.H{
		"tableCount":    len(state.Tables),
		"totalRows":     utils.FormatCount(totalRows),
		"totalColumns":  totalColumns,
		"totalSize":     utils.FormatBytes(totalSize),
		"outputColumns": outputColumns,
		"warnings":      warnings,
	}
}

func CloseSession(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		force := c.Query("force") == "true"

		if err := ctx.Sessions.Close(c.Param("sessionID"), force); err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Session closed successfully"})
	}
}

func UpdateDetails(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type updateDetailsRequest struct {
			Name         *string `json:"name"`
			Description  *string `json:"description"`
			TargetColumn *string `json:"targetColumn"`
		}

		var request updateDetailsRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.SetDetails{
			Name:         request.Name,
			Description:  request.Description,
			TargetColumn: request.TargetColumn,
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func SetPrimaryTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type setPrimaryRequest struct {
			TableName string `json:"tableName" binding:"required"`
		}

		var request setPrimaryRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.SetPrimaryTable{TableName: request.TableName})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func AdvanceStep(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.Advance{})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func StepBack(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type stepBackRequest struct {
			Step string `json:"step"`
		}

		var request stepBackRequest

		// A bare back has no body at all.
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&request); err != nil {
				ctx.Logger.Error("Failed to bind request", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
				return
			}
		}

		action := wizard.Back{}
		if request.Step != "" {
			step, err := wizard.ParseStep(request.Step)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown wizard step"})
				return
			}
			action.To = step
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), action)
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func SubmitCollection(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource, err := ctx.Sessions.Submit(c.Request.Context(), c.Param("sessionID"))
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"collection": resource})
	}
}
