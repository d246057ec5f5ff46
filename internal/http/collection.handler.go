package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/services"
	"go.uber.org/zap"
)

const (
	defaultWatchTimeout = 25 * time.Second
	maxWatchTimeout     = 60 * time.Second
)

func GetCollection(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource, err := ctx.Engine.GetCollection(c.Request.Context(), c.Param("collectionID"))
		if err != nil {
			respondEngineError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"collection": resource})
	}
}

// WatchCollection long-polls the engine until the collection's status moves
// past the one in the status query parameter, the collection reaches a
// terminal status, or the timeout elapses. A timeout still answers 200 with
// the latest state and changed=false, so the console just loops.
func WatchCollection(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		timeout := defaultWatchTimeout
		if raw := c.Query("timeout"); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil || seconds <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Timeout must be a positive number of seconds"})
				return
			}
			timeout = time.Duration(seconds) * time.Second
			if timeout > maxWatchTimeout {
				timeout = maxWatchTimeout
			}
		}

		lastSeen := entity.CollectionStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))

		watchCtx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		watcher := services.Watcher{Client: ctx.Engine, Interval: ctx.WatchInterval}
		resource, err := watcher.WaitForChange(watchCtx, c.Param("collectionID"), lastSeen)
		if err != nil {
			if resource != nil && errors.Is(err, context.DeadlineExceeded) {
				c.JSON(http.StatusOK, gin.H{"collection": resource, "changed": false})
				return
			}
			if errors.Is(err, context.Canceled) {
				// Client went away, nothing left to answer.
				return
			}
			respondEngineError(ctx, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"collection": resource, "changed": true})
	}
}

// respondEngineError passes an engine 404 through so the console can tell a
// missing collection from an engine outage.
func respondEngineError(ctx *appcontext.Context, c *gin.Context, err error) {
	var engineErr *services.EngineError
	if errors.As(err, &engineErr) {
		if engineErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return
		}
		ctx.Logger.Error("Engine request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": engineErr.Message})
		return
	}

	ctx.Logger.Error("Failed to reach engine", zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach engine"})
}
