package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// mountStatic serves the web UI from the configured directory. Unknown
// non-API paths fall back to index.html; unknown API paths get a JSON 404.
func (s *Server) mountStatic() {
	apiNotFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	}

	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		s.engine.NoRoute(apiNotFound)
		return
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", s.staticDir, "error", err)
		s.engine.NoRoute(apiNotFound)
		return
	}

	indexPath := filepath.Join(s.staticDir, indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		indexPath = ""
	}

	s.engine.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api/") {
			apiNotFound(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		// Cleaning a rooted path drops any ".." segments.
		file := filepath.Join(s.staticDir, filepath.FromSlash(path.Clean("/"+urlPath)))
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			c.File(file)
			return
		}
		if indexPath != "" {
			c.File(indexPath)
			return
		}
		c.Status(http.StatusNotFound)
	})
}
