package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
	"github.com/litihq/liti-server/internal/store"
)

// GetHistory returns the bare array, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	entries, err := h.Store.ListHistory(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) SaveHistory(c *gin.Context) {
	var req []store.Entry
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Store.ReplaceHistory(c.Request.Context(), req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to save history")
		return
	}
	common.Success(c)
}

func (h *Handler) AddHistoryEntry(c *gin.Context) {
	var req store.Entry
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.Store.AddHistoryEntry(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to add history entry")
		return
	}
	common.SuccessID(c, id)
}

func historyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid analysis id")
		return 0, false
	}
	return id, true
}

func (h *Handler) GetHistoryEntry(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}
	entry, err := h.Store.GetHistoryEntry(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.NotFound(c, "Analysis not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteHistoryEntry(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteHistoryEntry(c.Request.Context(), id); err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	common.Success(c)
}
