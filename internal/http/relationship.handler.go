package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

func AddRelationship(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type addRelationshipRequest struct {
			LeftTable        string `json:"leftTable" binding:"required"`
			LeftKey          string `json:"leftKey" binding:"required"`
			RightTable       string `json:"rightTable" binding:"required"`
			RightKey         string `json:"rightKey" binding:"required"`
			JoinType         string `json:"joinType"`
			RelationshipType string `json:"relationshipType"`
		}

		var request addRelationshipRequest

		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.AddRelationship{
			Relationship: entity.TableRelationship{
				ID:               uuid.NewString(),
				LeftTable:        request.LeftTable,
				LeftKey:          request.LeftKey,
				RightTable:       request.RightTable,
				RightKey:         request.RightKey,
				JoinType:         entity.JoinType(request.JoinType),
				RelationshipType: entity.Cardinality(request.RelationshipType),
			},
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

// RemoveRelationship is a no-op when the relationship is already gone, the
// console fires these from dismissible list rows and double-clicks happen.
func RemoveRelationship(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ctx.Sessions.Dispatch(c.Param("sessionID"), wizard.RemoveRelationship{
			RelationshipID: c.Param("relationshipID"),
		})
		if err != nil {
			respondWizardError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}
