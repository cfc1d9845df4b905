package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// jobMessage is the wire form of a queued job. Status and results live in
// the database, not on the queue.
type jobMessage struct {
	JobID       uuid.UUID       `json:"job_id"`
	Language    domain.Language `json:"language"`
	SourceCode  string          `json:"source_code"`
	Stdin       string          `json:"stdin"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// EncodeJob builds the persistent broker message for job.
func EncodeJob(job *domain.Job) (amqp.Publishing, error) {
	submitted := job.CreatedAt
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}

	body, err := json.Marshal(jobMessage{
		JobID:       job.JobID,
		Language:    job.Language,
		SourceCode:  job.SourceCode,
		Stdin:       job.Stdin,
		SubmittedAt: submitted,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal job: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.JobID.String(),
		Timestamp:    submitted,
		Body:         body,
	}, nil
}

// DecodeJob parses a broker message body into a queued job. Messages without
// an id, with an unknown language or without code cannot be executed.
func DecodeJob(body []byte) (*domain.Job, error) {
	var msg jobMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if msg.JobID == uuid.Nil {
		return nil, errors.New("decode job: missing job_id")
	}
	if !msg.Language.IsValid() {
		return nil, fmt.Errorf("decode job: %w: %q", domain.ErrInvalidLanguage, msg.Language)
	}
	if msg.SourceCode == "" {
		return nil, fmt.Errorf("decode job: %w", domain.ErrEmptySourceCode)
	}

	return &domain.Job{
		JobID:      msg.JobID,
		Language:   msg.Language,
		SourceCode: msg.SourceCode,
		Stdin:      msg.Stdin,
		Status:     domain.StatusQueued,
		CreatedAt:  msg.SubmittedAt,
	}, nil
}
