package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/internal/domain"
)

// StatusHandler receives status events pushed by the transfer engine
type StatusHandler struct {
	registry *app.Registry
	logger   *zap.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(registry *app.Registry, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		registry: registry,
		logger:   logger,
	}
}

// StatusRequest is the wire form of a status event. Pointer fields let a
// missing field be told apart from a zero value.
type StatusRequest struct {
	Name        *string  `json:"name" binding:"required"`
	Path        *string  `json:"path" binding:"required"`
	URL         *string  `json:"url" binding:"required"`
	Transferred *int64   `json:"transferred" binding:"required"`
	Size        *int64   `json:"size" binding:"required"`
	Speed       *float64 `json:"speed" binding:"required"`
	Progress    *float64 `json:"progress" binding:"required"`
	Downloading *bool    `json:"downloading" binding:"required"`
	Done        *bool    `json:"done" binding:"required"`
}

// Status converts a validated request to the domain event
func (r StatusRequest) Status() domain.DownloadStatus {
	return domain.DownloadStatus{
		Name:        *r.Name,
		Path:        *r.Path,
		URL:         *r.URL,
		Transferred: *r.Transferred,
		Size:        *r.Size,
		Speed:       *r.Speed,
		Progress:    *r.Progress,
		Downloading: *r.Downloading,
		Done:        *r.Done,
	}
}

// BatchItemResult reports what happened to one event of a batch
type BatchItemResult struct {
	Index   int    `json:"index"`
	URL     string `json:"url,omitempty"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse summarises a batch push
type BatchResponse struct {
	Applied  int               `json:"applied"`
	Rejected int               `json:"rejected"`
	Results  []BatchItemResult `json:"results"`
}

// PushStatus handles POST /api/v1/status
func (h *StatusHandler) PushStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Malformed status event", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMalformedStatus.Error() + ": " + err.Error()})
		return
	}

	status := req.Status()
	if err := h.registry.ApplyStatus(status); err != nil {
		c.JSON(statusCodeFor(err), gin.H{"error": err.Error()})
		return
	}

	record, _ := h.registry.Get(status.URL)
	c.JSON(http.StatusOK, record)
}

// PushBatch handles POST /api/v1/status/batch. Events are applied in order
// and a rejected event does not stop the rest.
func (h *StatusHandler) PushBatch(c *gin.Context) {
	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := BatchResponse{Results: make([]BatchItemResult, 0, len(raw))}
	for i, item := range raw {
		result := h.applyRaw(i, item)
		if result.Applied {
			resp.Applied++
		} else {
			resp.Rejected++
		}
		resp.Results = append(resp.Results, result)
	}

	h.logger.Debug("Status batch applied",
		zap.Int("applied", resp.Applied),
		zap.Int("rejected", resp.Rejected))
	c.JSON(http.StatusOK, resp)
}

func (h *StatusHandler) applyRaw(index int, item json.RawMessage) BatchItemResult {
	result := BatchItemResult{Index: index}

	var req StatusRequest
	if err := json.Unmarshal(item, &req); err != nil {
		result.Error = domain.ErrMalformedStatus.Error() + ": " + err.Error()
		return result
	}
	if req.URL != nil {
		result.URL = *req.URL
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		result.Error = domain.ErrMalformedStatus.Error() + ": " + err.Error()
		return result
	}
	if err := h.registry.ApplyStatus(req.Status()); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Applied = true
	return result
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTerminalRecord):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
