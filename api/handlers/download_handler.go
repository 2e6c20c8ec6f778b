package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/internal/format"
)

// DownloadHandler serves the registry and forwards user intents
type DownloadHandler struct {
	registry   *app.Registry
	dispatcher *app.Dispatcher
	logger     *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(registry *app.Registry, dispatcher *app.Dispatcher, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CommandRequest targets a download by url, or a raw path for locate
type CommandRequest struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	switch c.DefaultQuery("order", "added") {
	case "added":
		c.JSON(http.StatusOK, h.registry.List())
	case "recent":
		c.JSON(http.StatusOK, h.registry.Recent())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be added or recent"})
	}
}

// GetDownload handles GET /api/v1/downloads/lookup?url=
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	record, ok := h.registry.Get(url)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Stats())
}

// GetView handles GET /api/v1/downloads/view with display-ready rows
func (h *DownloadHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, format.View(h.registry.List()))
}

// RemoveDownload handles DELETE /api/v1/downloads?url=
func (h *DownloadHandler) RemoveDownload(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	if !h.registry.Remove(url) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "download removed", "url": url})
}

// PauseDownload handles POST /api/v1/downloads/pause
func (h *DownloadHandler) PauseDownload(c *gin.Context) {
	req, ok := h.bindURL(c)
	if !ok {
		return
	}
	c.JSON(http.StatusAccepted, h.dispatcher.Pause(req.URL))
}

// ContinueDownload handles POST /api/v1/downloads/continue
func (h *DownloadHandler) ContinueDownload(c *gin.Context) {
	req, ok := h.bindURL(c)
	if !ok {
		return
	}
	c.JSON(http.StatusAccepted, h.dispatcher.Continue(req.URL))
}

// LocateDownload handles POST /api/v1/downloads/locate. A path wins over a url.
func (h *DownloadHandler) LocateDownload(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case req.Path != "":
		c.JSON(http.StatusAccepted, h.dispatcher.Locate(req.Path))
	case req.URL != "":
		c.JSON(http.StatusAccepted, h.dispatcher.LocateURL(req.URL))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "url or path is required"})
	}
}

func (h *DownloadHandler) bindURL(c *gin.Context) (CommandRequest, bool) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return req, false
	}
	return req, true
}
