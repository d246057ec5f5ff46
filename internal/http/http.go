package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/http/middleware"
	"github.com/kerem-kaynak/kolektor/internal/metrics"
)

type APIService struct {
	engine  *gin.Engine
	context *appcontext.Context
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(ctx.Logger))
	engine.Use(middleware.CORSMiddleware())

	service := &APIService{
		engine:  engine,
		context: ctx,
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	v1 := h.engine.Group("/api/v1")
	h.setupSessionRoutes(v1)
	h.setupCollectionRoutes(v1)

	h.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.context.Sessions.Count()})
	})
	h.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *APIService) setupSessionRoutes(group *gin.RouterGroup) {
	sessions := group.Group("/sessions")

	sessions.POST("", OpenSession(h.context))
	sessions.GET("/:sessionID", GetSession(h.context))
	sessions.DELETE("/:sessionID", CloseSession(h.context))

	sessions.POST("/:sessionID/tables", UploadTables(h.context))
	sessions.DELETE("/:sessionID/tables/:tableID", RemoveTable(h.context))

	sessions.PUT("/:sessionID/primary", SetPrimaryTable(h.context))
	sessions.PUT("/:sessionID/details", UpdateDetails(h.context))

	sessions.POST("/:sessionID/relationships", AddRelationship(h.context))
	sessions.DELETE("/:sessionID/relationships/:relationshipID", RemoveRelationship(h.context))

	sessions.POST("/:sessionID/aggregations", AddAggregation(h.context))
	sessions.PUT("/:sessionID/aggregations/:tableName", UpdateAggregation(h.context))
	sessions.DELETE("/:sessionID/aggregations/:tableName", RemoveAggregation(h.context))
	sessions.POST("/:sessionID/aggregations/:tableName/features", AddFeature(h.context))
	sessions.DELETE("/:sessionID/aggregations/:tableName/features/:index", RemoveFeature(h.context))
	sessions.POST("/:sessionID/aggregations/:tableName/features/:index/functions", ToggleFunction(h.context))

	sessions.POST("/:sessionID/advance", AdvanceStep(h.context))
	sessions.POST("/:sessionID/back", StepBack(h.context))
	sessions.POST("/:sessionID/submit", SubmitCollection(h.context))
}

func (h *APIService) setupCollectionRoutes(group *gin.RouterGroup) {
	collections := group.Group("/collections")

	collections.GET("/:collectionID", GetCollection(h.context))
	collections.GET("/:collectionID/watch", WatchCollection(h.context))
}
