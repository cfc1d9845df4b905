package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

type autocompleteRequest struct {
	Code           *string `json:"code" binding:"required"`
	Language       string  `json:"language" binding:"required"`
	CursorPosition *int    `json:"cursorPosition" binding:"required"`
}

// AutocompleteHandler serves editor completions.
type AutocompleteHandler struct {
	suggestUC *usecase.SuggestUsecase
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(suggestUC *usecase.SuggestUsecase) *AutocompleteHandler {
	return &AutocompleteHandler{suggestUC: suggestUC}
}

// Suggest handles POST /autocomplete and POST /api/v1/autocomplete
func (h *AutocompleteHandler) Suggest(c *gin.Context) {
	var req autocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.suggestUC.Execute(&domain.SuggestRequest{
		Code:           *req.Code,
		Language:       req.Language,
		CursorPosition: *req.CursorPosition,
	}))
}
