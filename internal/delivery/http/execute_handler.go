package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/delivery/http/middleware"
	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

// executeRequest is the body of POST /execute. Code may be empty but must be
// present.
type executeRequest struct {
	Code     *string `json:"code" binding:"required"`
	Language string  `json:"language"`
	Stdin    string  `json:"stdin"`
}

// ExecuteHandler runs snippets synchronously.
type ExecuteHandler struct {
	executeUC *usecase.ExecuteCodeUsecase
	logger    *zap.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(executeUC *usecase.ExecuteCodeUsecase, logger *zap.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		executeUC: executeUC,
		logger:    logger,
	}
}

// Execute handles POST /execute and POST /api/v1/execute. Every execution
// outcome, including unsupported languages and timeouts, is a 200 with the
// result body; only malformed requests are rejected.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	result := h.executeUC.Execute(c.Request.Context(), &domain.ExecutionRequest{
		Code:     *req.Code,
		Language: req.Language,
		Stdin:    req.Stdin,
	})

	if result.Status == domain.StatusInternalError {
		h.logger.Warn("Execution infrastructure failure",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("language", req.Language),
			zap.String("error", result.Error),
		)
	}

	c.JSON(http.StatusOK, result)
}
