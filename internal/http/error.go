package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/services"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

// respondWizardError maps session and engine errors onto HTTP statuses. The
// wizard's own messages go back to the console verbatim, they are written
// for it.
func respondWizardError(ctx *appcontext.Context, c *gin.Context, err error) {
	var (
		validationErr *wizard.ValidationError
		conflictErr   *wizard.ConflictError
		notFoundErr   *wizard.NotFoundError
		engineErr     *services.EngineError
	)

	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &engineErr):
		ctx.Logger.Error("Engine rejected request", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": engineErr.Message})
	default:
		ctx.Logger.Error("Failed to apply wizard action", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply wizard action"})
	}
}
