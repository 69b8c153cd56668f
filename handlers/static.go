package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticHandler serves the statically exported front end for unmatched routes: an
// exact file first, then a directory's index.html, then the root index.html so
// client-side routing keeps working on deep links.
func StaticHandler(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api") || reqPath == "/health" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		clean := filepath.Clean(strings.TrimPrefix(reqPath, "/"))
		if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			clean = ""
		}
		filePath := filepath.Join(staticDir, clean)

		if info, err := os.Stat(filePath); err == nil {
			if !info.IsDir() {
				c.File(filePath)
				return
			}
			indexInDir := filepath.Join(filePath, "index.html")
			if _, err := os.Stat(indexInDir); err == nil {
				c.File(indexInDir)
				return
			}
		}

		rootIndex := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(rootIndex); err == nil {
			c.File(rootIndex)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
}
