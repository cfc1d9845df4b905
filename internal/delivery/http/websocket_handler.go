package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

const (
	streamInterval = 500 * time.Millisecond
	writeWait      = 5 * time.Second
)

// WebSocketHandler handles WebSocket connections for real-time job status updates.
type WebSocketHandler struct {
	getJobUC *usecase.GetJobUsecase
	upgrader websocket.Upgrader
	interval time.Duration
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler. Upgrades are accepted
// from allowedOrigins only; an empty list or "*" accepts any origin.
func NewWebSocketHandler(getJobUC *usecase.GetJobUsecase, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		getJobUC: getJobUC,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		interval: streamInterval,
		logger:   logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := set[origin]
		return ok
	}
}

// Stream upgrades to a websocket and pushes the job until it is terminal.
func (h *WebSocketHandler) Stream(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}
	idStr := id.String()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.String("job_id", idStr))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Reading is required to process close frames; any read error ends the stream.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		job, err := h.getJobUC.Execute(ctx, id)
		if err != nil {
			msg := "Job not found"
			if !errors.Is(err, domain.ErrJobNotFound) {
				h.logger.Error("WebSocket job lookup failed", zap.String("job_id", idStr), zap.Error(err))
				msg = "Internal server error"
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(gin.H{"error": msg})
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(job); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		// Stop streaming once the job reaches a terminal state
		if job.Status.IsTerminal() {
			h.logger.Debug("Job reached terminal state, closing WebSocket", zap.String("job_id", idStr))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"),
				time.Now().Add(writeWait))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
