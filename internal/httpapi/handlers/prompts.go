package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
	"github.com/litihq/liti-server/internal/store"
)

// systemPrompt reads the setting, treating an unseeded store as empty.
func (h *Handler) systemPrompt(c *gin.Context) (string, error) {
	v, err := h.Store.GetSetting(c.Request.Context(), store.SettingSystemPrompt)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (h *Handler) GetPrompts(c *gin.Context) {
	prompt, err := h.systemPrompt(c)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load prompts")
		return
	}
	scales, err := h.Store.ListScales(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load prompts")
		return
	}
	models, err := h.Store.ListModels(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load prompts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"systemPrompt": prompt,
		"scales":       scales,
		"models":       models,
	})
}

type savePromptsReq struct {
	SystemPrompt string         `json:"systemPrompt"`
	Scales       []store.Scale  `json:"scales"`
	Models       *[]store.Model `json:"models"`
}

// SavePrompts replaces the system prompt and scale set; models are
// replaced only when the body carries them, so a prompt-editor save
// cannot wipe the model list.
func (h *Handler) SavePrompts(c *gin.Context) {
	var req savePromptsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	ctx := c.Request.Context()
	if err := h.Store.PutSetting(ctx, store.SettingSystemPrompt, req.SystemPrompt); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save prompts")
		return
	}
	if err := h.Store.ReplaceScales(ctx, req.Scales); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save prompts")
		return
	}
	if req.Models != nil {
		if err := h.Store.ReplaceModels(ctx, *req.Models); err != nil {
			common.Fail(c, http.StatusInternalServerError, "failed to save prompts")
			return
		}
	}
	common.Success(c)
}

func (h *Handler) GetSystemPrompt(c *gin.Context) {
	prompt, err := h.systemPrompt(c)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load system prompt")
		return
	}
	c.JSON(http.StatusOK, gin.H{"systemPrompt": prompt})
}

func (h *Handler) SaveSystemPrompt(c *gin.Context) {
	var req struct {
		SystemPrompt string `json:"systemPrompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.PutSetting(c.Request.Context(), store.SettingSystemPrompt, req.SystemPrompt); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save system prompt")
		return
	}
	common.Success(c)
}

func (h *Handler) GetScales(c *gin.Context) {
	scales, err := h.Store.ListScales(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load scales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scales": scales})
}

func (h *Handler) SaveScales(c *gin.Context) {
	var req struct {
		Scales []store.Scale `json:"scales"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.ReplaceScales(c.Request.Context(), req.Scales); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save scales")
		return
	}
	common.Success(c)
}

func (h *Handler) AddScale(c *gin.Context) {
	var req store.Scale
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.Store.AddScale(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to add scale")
		return
	}
	common.SuccessID(c, id)
}

func scaleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid scale id")
		return 0, false
	}
	return id, true
}

func (h *Handler) UpdateScale(c *gin.Context) {
	id, ok := scaleID(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.UpdateScale(c.Request.Context(), id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.NotFound(c, "Scale not found")
			return
		}
		if errors.Is(err, store.ErrInvalidField) {
			common.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to update scale")
		return
	}
	common.Success(c)
}

func (h *Handler) DeleteScale(c *gin.Context) {
	id, ok := scaleID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteScale(c.Request.Context(), id); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to delete scale")
		return
	}
	common.Success(c)
}
