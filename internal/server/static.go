package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the board client when one is built into staticDir.
// Client side routes fall back to index.html; unmatched /api/ paths, and
// every unmatched path in API only mode, answer with a JSON 404.
func (s *Server) mountStatic() {
	index := s.clientIndex()
	if index != "" {
		s.engine.GET("/", func(c *gin.Context) { c.File(index) })
		s.engine.StaticFS("/static", gin.Dir(filepath.Join(s.staticDir, "static"), false))
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if index == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		c.File(index)
	})
}

func (s *Server) clientIndex() string {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return ""
	}
	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		s.logger.Warn("board client not found; API only mode", "path", index, "error", err)
		return ""
	}
	return index
}
