//go:build embed

package main

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the chat page from the binary
func setupStaticFiles(router *gin.Engine, log *zap.SugaredLogger) {
	log.Info("Serving embedded chat page")

	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		log.Fatalw("Embedded chat page missing", "error", err)
	}
	assets := http.FS(distFS)

	router.NoRoute(func(c *gin.Context) {
		if apiNotFound(c) {
			return
		}
		name := strings.TrimPrefix(path.Clean(c.Request.URL.Path), "/")
		if _, err := fs.Stat(distFS, name); name == "" || err != nil {
			name = "/"
		}
		c.FileFromFS(name, assets)
	})
}
