package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job is an execution submitted for asynchronous processing.
type Job struct {
	JobID      uuid.UUID        `json:"job_id"`
	Language   Language         `json:"language"`
	SourceCode string           `json:"source_code"`
	Stdin      string           `json:"stdin"`
	Status     ExecutionStatus  `json:"status"`
	Result     *ExecutionResult `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ExecutionRequest converts the job into an engine request.
func (j *Job) ExecutionRequest() *ExecutionRequest {
	return &ExecutionRequest{
		Code:     j.SourceCode,
		Language: string(j.Language),
		Stdin:    j.Stdin,
	}
}

// JobMessage is a job received from the broker together with its
// acknowledgement callbacks.
type JobMessage struct {
	Job  *Job
	Ack  func() error
	Nack func(requeue bool) error
}

// SubmitRequest represents an incoming asynchronous submission.
type SubmitRequest struct {
	Language   string `json:"language" binding:"required"`
	SourceCode string `json:"source_code" binding:"required"`
	Stdin      string `json:"stdin"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}
