package handlers

import (
	_ "embed"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/ai"
	"github.com/litihq/liti-server/internal/common"
)

//go:embed demo_result.json
var demoResult []byte

// ResetToDefaults clears all four resource kinds and reseeds.
func (h *Handler) ResetToDefaults(c *gin.Context) {
	if err := h.Store.Reset(c.Request.Context()); err != nil {
		log.Printf("reset-to-defaults failed err=%v", err)
		common.Fail(c, http.StatusInternalServerError, "failed to reset")
		return
	}
	common.Success(c)
}

// DemoResult returns the canned analysis document. No storage access.
func (h *Handler) DemoResult(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", demoResult)
}

type testOpenRouterReq struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

// TestOpenRouter forwards a short rating prompt upstream with the
// caller's key and model, relaying the upstream status and body
// verbatim on failure.
func (h *Handler) TestOpenRouter(c *gin.Context) {
	var req testOpenRouterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := h.OpenRouter.RateProbe(c.Request.Context(), req.APIKey, req.Model)
	if err != nil {
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(upstream.StatusCode, gin.H{
				"success": false,
				"error":   err.Error(),
				"body":    upstream.Body,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
