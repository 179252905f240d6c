package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
	"github.com/litihq/liti-server/internal/store"
)

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.Store.ListSettings(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// SaveSettings upserts every key/value pair in the body.
func (h *Handler) SaveSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	for k, v := range req {
		if err := h.Store.PutSetting(c.Request.Context(), k, v); err != nil {
			common.Fail(c, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}
	common.Success(c)
}

func (h *Handler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.Store.GetSetting(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.NotFound(c, "Setting not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to load setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *Handler) SaveSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.PutSetting(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save setting")
		return
	}
	common.Success(c)
}
