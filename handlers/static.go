package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const notFoundPage = "<h1>404 - Page Not Found</h1>"

// noRoute answers unmatched requests: JSON 404s under the API prefixes and
// files from staticDir everywhere else.
func noRoute(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		switch {
		case strings.HasPrefix(p, "/api/auth"):
			c.JSON(http.StatusNotFound, gin.H{"error": "Auth route not found"})
		case strings.HasPrefix(p, "/api/salaries"):
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		default:
			serveStatic(c, staticDir)
		}
	}
}

func serveStatic(c *gin.Context, staticDir string) {
	if staticDir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		pageNotFound(c)
		return
	}

	name := c.Request.URL.Path
	if name == "/" || name == "/index" {
		name = "/index.html"
	}
	// Cleaning a rooted path drops any leading "..", so the result stays
	// inside staticDir.
	full := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+name)))

	f, err := os.Open(full)
	if err != nil {
		pageNotFound(c)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		pageNotFound(c)
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func pageNotFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
}
