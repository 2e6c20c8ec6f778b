package api

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/dltrack/api/handlers"
	"github.com/yourusername/dltrack/api/middleware"
	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/pkg/logger"
)

// Services are the application components the HTTP surface exposes
type Services struct {
	Registry   *app.Registry
	Dispatcher *app.Dispatcher
	Snapshots  *app.SnapshotService // nil when no store is configured
	Ready      *atomic.Bool
	Shutdown   <-chan struct{} // closes open event streams
}

// SetupRouter sets up the HTTP router. Status pushes log to the engine
// category and user commands to the control category.
func SetupRouter(services Services, ml *logger.MultiLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(ml.General()))
	router.Use(middleware.Recovery(ml.Error()))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(services.Registry, services.Ready)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		statusHandler := handlers.NewStatusHandler(services.Registry, ml.Engine())
		v1.POST("/status", statusHandler.PushStatus)
		v1.POST("/status/batch", statusHandler.PushBatch)

		downloadHandler := handlers.NewDownloadHandler(services.Registry, services.Dispatcher, ml.Control())
		downloads := v1.Group("/downloads")
		{
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.DELETE("", downloadHandler.RemoveDownload)
			downloads.GET("/lookup", downloadHandler.GetDownload)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/view", downloadHandler.GetView)
			downloads.POST("/pause", downloadHandler.PauseDownload)
			downloads.POST("/continue", downloadHandler.ContinueDownload)
			downloads.POST("/locate", downloadHandler.LocateDownload)
		}

		eventsHandler := handlers.NewEventsHandler(services.Registry.Notifier(), services.Shutdown, ml.General())
		v1.GET("/events", eventsHandler.HandleWebSocket)

		snapshotHandler := handlers.NewSnapshotHandler(services.Snapshots, ml.General())
		v1.POST("/snapshot", snapshotHandler.Save)
		v1.POST("/snapshot/restore", snapshotHandler.Restore)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.String(http.StatusNotFound, "not found")
	})

	return router
}
