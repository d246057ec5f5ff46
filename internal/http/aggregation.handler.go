package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

func AddAggregation(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type addAggregationRequest struct {
			TableName string `json:"tableName" binding:"required"`
		}

		var request addAggregationRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.AddAggregation{
			ID:        uuid.NewString(),
			TableName: request.TableName,
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func UpdateAggregation(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type updateAggregationRequest struct {
			GroupByColumn *string `json:"groupByColumn"`
			Prefix        *string `json:"prefix"`
		}

		var request updateAggregationRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.UpdateAggregation{
			TableName:     c.Param("tableName"),
			GroupByColumn: request.GroupByColumn,
			Prefix:        request.Prefix,
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func RemoveAggregation(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.RemoveAggregation{
			TableName: c.Param("tableName"),
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func AddFeature(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type addFeatureRequest struct {
			Column string `json:"column"`
		}

		var request addFeatureRequest

		// Without a body the reducer picks the first unused column.
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&request); err != nil {
				ctx.Logger.Error("Failed to bind request", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
				return
			}
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.AddFeature{
			TableName: c.Param("tableName"),
			Column:    request.Column,
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func RemoveFeature(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Feature index must be a number"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.RemoveFeature{
			TableName: c.Param("tableName"),
			Index:     index,
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func ToggleFunction(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type toggleFunctionRequest struct {
			Function string `json:"function" binding:"required"`
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Feature index must be a number"})
			return
		}

		var request toggleFunctionRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.ToggleFunction{
			TableName: c.Param("tableName"),
			Index:     index,
			Function:  entity.AggregationFunction(request.Function),
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}
