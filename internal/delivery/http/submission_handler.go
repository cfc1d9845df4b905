package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/delivery/http/middleware"
	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

// SubmissionHandler serves the async submission API.
type SubmissionHandler struct {
	submitUC *usecase.SubmitJobUsecase
	getJobUC *usecase.GetJobUsecase
	logger   *zap.Logger
}

func NewSubmissionHandler(submitUC *usecase.SubmitJobUsecase, getJobUC *usecase.GetJobUsecase, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submitUC: submitUC, getJobUC: getJobUC, logger: logger}
}

// Submit queues a job and answers 202 with its id. Location points at the
// job resource for polling.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req domain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.submitUC.Execute(c.Request.Context(), &req)
	if err != nil {
		status, msg := submitError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Submission failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Header("Location", submissionsPath+"/"+resp.JobID.String())
	c.JSON(http.StatusAccepted, resp)
}

func submitError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidLanguage):
		return http.StatusBadRequest, err.Error() + ". Supported: " + domain.SupportedNames()
	case errors.Is(err, domain.ErrEmptySourceCode):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrPublishFailed):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// GetByID returns the job, including its result once it is terminal.
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := h.getJobUC.Execute(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case err != nil:
		h.logger.Error("Job lookup failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("job_id", id.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		c.JSON(http.StatusOK, job)
	}
}

// jobIDParam parses the :id path parameter, answering 400 when it is not a UUID.
func jobIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return uuid.Nil, false
	}
	return id, true
}
