//go:build !embed

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const devAssetsDir = "./web/dist"

// setupStaticFiles serves the chat page from disk; run from cmd/server
func setupStaticFiles(router *gin.Engine, log *zap.SugaredLogger) {
	log.Infow("Serving chat page from disk", "dir", devAssetsDir)

	router.StaticFile("/", devAssetsDir+"/index.html")
	router.StaticFile("/app.js", devAssetsDir+"/app.js")

	router.NoRoute(func(c *gin.Context) {
		if apiNotFound(c) {
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
}
