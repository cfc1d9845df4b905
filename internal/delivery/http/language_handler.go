package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// LanguageLister reports the languages the engine can run.
type LanguageLister interface {
	Languages() []domain.LanguageInfo
}

// LanguageHandler handles language listing requests.
type LanguageHandler struct {
	lister LanguageLister
}

// NewLanguageHandler creates a new LanguageHandler.
func NewLanguageHandler(lister LanguageLister) *LanguageHandler {
	return &LanguageHandler{lister: lister}
}

// List handles GET /api/v1/languages
func (h *LanguageHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": h.lister.Languages(),
	})
}
