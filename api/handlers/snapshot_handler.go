package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/app"
)

// SnapshotHandler exposes the explicit save and reload of the registry
type SnapshotHandler struct {
	snapshots *app.SnapshotService
	logger    *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler. snapshots may be nil
// when no store is configured.
func NewSnapshotHandler(snapshots *app.SnapshotService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots: snapshots,
		logger:    logger,
	}
}

// Save handles POST /api/v1/snapshot
func (h *SnapshotHandler) Save(c *gin.Context) {
	if !h.available(c) {
		return
	}
	count, err := h.snapshots.Save()
	if err != nil {
		h.logger.Error("Snapshot save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": count})
}

// Restore handles POST /api/v1/snapshot/restore
func (h *SnapshotHandler) Restore(c *gin.Context) {
	if !h.available(c) {
		return
	}
	count, err := h.snapshots.Restore()
	if err != nil {
		h.logger.Error("Snapshot restore failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": count})
}

func (h *SnapshotHandler) available(c *gin.Context) bool {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot store not configured"})
		return false
	}
	return true
}
