package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
	"github.com/litihq/liti-server/internal/config"
	"github.com/litihq/liti-server/internal/httpapi/handlers"
	"github.com/litihq/liti-server/internal/httpapi/middleware"
	"github.com/litihq/liti-server/internal/store"
)

func NewRouter(st store.Store, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(cors.Default())

	h := handlers.NewHandler(st, cfg)

	// non-API paths fall through to static serving
	r.NoRoute(h.Static)
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/", h.Index)
	r.GET("/healthz", h.Health)

	api := r.Group("/api")

	api.GET("/settings", h.GetSettings)
	api.POST("/settings", h.SaveSettings)
	api.GET("/settings/:key", h.GetSetting)
	api.POST("/settings/:key", h.SaveSetting)

	api.GET("/prompts", h.GetPrompts)
	api.POST("/prompts", h.SavePrompts)
	api.GET("/prompts/system", h.GetSystemPrompt)
	api.POST("/prompts/system", h.SaveSystemPrompt)
	api.GET("/prompts/scales", h.GetScales)
	api.POST("/prompts/scales", h.SaveScales)
	api.POST("/prompts/scales/add", h.AddScale)
	api.PUT("/prompts/scales/:id", h.UpdateScale)
	api.DELETE("/prompts/scales/:id", h.DeleteScale)

	api.GET("/models", h.GetModels)
	api.POST("/models", h.SaveModels)
	api.POST("/models/add", h.AddModel)
	// wildcard so slash-bearing model slugs resolve
	api.DELETE("/models/*id", h.DeleteModel)

	api.GET("/history", h.GetHistory)
	api.POST("/history", h.SaveHistory)
	api.POST("/history/add", h.AddHistoryEntry)
	api.GET("/history/:id", h.GetHistoryEntry)
	api.DELETE("/history/:id", h.DeleteHistoryEntry)

	api.POST("/reset-to-defaults", h.ResetToDefaults)
	api.GET("/demo-result", h.DemoResult)
	api.POST("/test-openrouter", h.TestOpenRouter)

	return r
}
