package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "Pair Programming Execution API"

// InfoHandler describes the service at the root path.
type InfoHandler struct {
	version   string
	endpoints gin.H
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(version string, endpoints gin.H) *InfoHandler {
	return &InfoHandler{version: version, endpoints: endpoints}
}

// Root handles GET /
func (h *InfoHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   serviceName,
		"version":   h.version,
		"endpoints": h.endpoints,
	})
}
