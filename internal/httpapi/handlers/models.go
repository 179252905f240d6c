package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
	"github.com/litihq/liti-server/internal/store"
)

func (h *Handler) GetModels(c *gin.Context) {
	models, err := h.Store.ListModels(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load models")
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (h *Handler) SaveModels(c *gin.Context) {
	var req struct {
		Models []store.Model `json:"models"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.ReplaceModels(c.Request.Context(), req.Models); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save models")
		return
	}
	common.Success(c)
}

// AddModel upserts by id: a repeated add with the same id replaces the
// record rather than duplicating it.
func (h *Handler) AddModel(c *gin.Context) {
	var req store.Model
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		common.Fail(c, http.StatusBadRequest, "model id required")
		return
	}
	if err := h.Store.UpsertModel(c.Request.Context(), req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to add model")
		return
	}
	common.Success(c)
}

// DeleteModel accepts slash-bearing model slugs, e.g.
// DELETE /api/models/anthropic/claude-haiku-4.5.
func (h *Handler) DeleteModel(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		common.Fail(c, http.StatusBadRequest, "model id required")
		return
	}
	if err := h.Store.DeleteModel(c.Request.Context(), id); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to delete model")
		return
	}
	common.Success(c)
}
