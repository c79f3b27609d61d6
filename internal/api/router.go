package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventory-monitor/internal/config"
	"inventory-monitor/internal/logging"
)

func NewRouter(h *Handler, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))
	r.Use(MetricsMiddleware())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.API.BasePath)
	{
		// Ingestion and training
		api.POST("/sensor-data", h.CreateSensorReading)
		api.POST("/datasets", h.UploadDataset)
		api.POST("/models/train", h.TrainModel)
		api.POST("/analysis/run", h.RunAnalysis)

		// Notifications
		api.GET("/notifications/user/:user_id", h.GetNotificationsByUserID)
		api.GET("/notifications/user/:user_id/unread-count", h.GetUnreadCount)
		api.POST("/notifications/user/:user_id/read-all", h.MarkAllNotificationsRead)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)
		api.DELETE("/notifications/:id", h.DeleteNotification)

		// Alerts
		api.GET("/alerts", h.GetAlerts)
		api.GET("/alerts/vendor/:vendor_id", h.GetAlertsByVendor)
		api.POST("/alerts/:id/resolve", h.ResolveAlert)

		// Dashboard and lookups
		api.GET("/dashboard/summary", h.GetDashboardSummary)
		api.GET("/products/barcode/:barcode", h.GetProductByBarcode)

		api.GET("/ws/notifications/:user_id", h.NotificationSocket)
	}
	return r
}
