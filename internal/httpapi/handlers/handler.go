package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/ai"
	"github.com/litihq/liti-server/internal/config"
	"github.com/litihq/liti-server/internal/store"
)

type Handler struct {
	Store      store.Store
	Cfg        config.Config
	OpenRouter *ai.OpenRouterClient
}

func NewHandler(st store.Store, cfg config.Config) *Handler {
	return &Handler{
		Store:      st,
		Cfg:        cfg,
		OpenRouter: ai.NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterTimeout),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
