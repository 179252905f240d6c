package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
)

// Index serves the application shell.
func (h *Handler) Index(c *gin.Context) {
	c.File(filepath.Join(h.Cfg.StaticDir, "index.html"))
}

// Static serves assets for any non-API path. Requests resolving into
// the data directory or the database file are denied.
func (h *Handler) Static(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		common.Fail(c, http.StatusNotFound, "route not found")
		return
	}
	p := path.Clean(c.Request.URL.Path)
	if p == "/" || p == "." {
		h.Index(c)
		return
	}
	if strings.HasPrefix(p, "/api/") || p == "/api" {
		common.Fail(c, http.StatusNotFound, "route not found")
		return
	}

	rel := strings.TrimPrefix(p, "/")
	if h.denied(rel) {
		common.Fail(c, http.StatusForbidden, "forbidden")
		return
	}

	full := filepath.Join(h.Cfg.StaticDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		common.Fail(c, http.StatusNotFound, "not found")
		return
	}
	c.File(full)
}

// denied reports whether the cleaned relative path points at persisted
// state rather than a static asset.
func (h *Handler) denied(rel string) bool {
	first := rel
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		first = rel[:i]
	}
	if first == filepath.Base(h.Cfg.DataDir) {
		return true
	}

	full, err := filepath.Abs(filepath.Join(h.Cfg.StaticDir, filepath.FromSlash(rel)))
	if err != nil {
		return true
	}
	if dataDir, err := filepath.Abs(h.Cfg.DataDir); err == nil {
		if full == dataDir || strings.HasPrefix(full, dataDir+string(filepath.Separator)) {
			return true
		}
	}
	if h.Cfg.DBDriver != "mysql" {
		if dbFile, err := filepath.Abs(h.Cfg.DBDSN); err == nil && full == dbFile {
			return true
		}
	}
	return false
}
