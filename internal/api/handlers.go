package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-monitor/internal/db"
	"inventory-monitor/internal/detector"
	"inventory-monitor/internal/ingest"
	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
	"inventory-monitor/internal/monitor"
	"inventory-monitor/internal/notify"
)

// Store is the persistence surface the HTTP handlers read and mutate.
type Store interface {
	GetNotificationsByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	GetUnreadCounts(ctx context.Context, userID int64) (models.UnreadCounts, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, id uuid.UUID, userID int64) error
	GetAlerts(ctx context.Context, resolved *bool, limit int) ([]models.Alert, error)
	GetAlertsByVendor(ctx context.Context, vendorID int64) ([]models.Alert, error)
	ResolveAlert(ctx context.Context, id uuid.UUID) error
	GetDashboardSummary(ctx context.Context) (db.DashboardSummary, error)
	GetProductByBarcode(ctx context.Context, barcode string) (models.Product, error)
	GetRecentSensorReadings(ctx context.Context, productID int64, limit int) ([]models.SensorReading, error)
}

// Ingestor accepts sensor readings.
type Ingestor interface {
	Ingest(ctx context.Context, rec ingest.Reading) (int, error)
}

// Uploader accepts dataset uploads.
type Uploader interface {
	Upload(ctx context.Context, name, dsType, description, filename string, data io.Reader) (models.Dataset, error)
}

// Trainer fits a model on a stored dataset.
type Trainer interface {
	Train(ctx context.Context, datasetID uuid.UUID) (models.TrainedModel, error)
}

// Analyzer runs one on-demand analysis pass.
type Analyzer interface {
	RunAnalysis(ctx context.Context) (monitor.Report, error)
}

type Handler struct {
	store    Store
	ingestor Ingestor
	uploader Uploader
	trainer  Trainer
	analyzer Analyzer
	detector *detector.Service
	hub      *notify.Hub
	logger   *logging.Logger
}

func NewHandler(store Store, ingestor Ingestor, uploader Uploader, trainer Trainer, analyzer Analyzer, det *detector.Service, hub *notify.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		store:    store,
		ingestor: ingestor,
		uploader: uploader,
		trainer:  trainer,
		analyzer: analyzer,
		detector: det,
		hub:      hub,
		logger:   logger,
	}
}

// writeError maps service errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ingest.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("%s: %v", msg, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return 0, false
	}
	return id, true
}

func uuidParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateSensorReading ingests one sensor reading over HTTP.
func (h *Handler) CreateSensorReading(c *gin.Context) {
	var rec ingest.Reading
	if err := c.ShouldBindJSON(&rec); err != nil {
		h.logger.Errorf("Invalid request body for sensor reading: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.ingestor.Ingest(c.Request.Context(), rec)
	if err != nil {
		h.writeError(c, err, "Failed to ingest sensor reading")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "alerts_generated": created})
}

// UploadDataset accepts a multipart CSV upload.
func (h *Handler) UploadDataset(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	src, err := file.Open()
	if err != nil {
		h.writeError(c, err, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	ds, err := h.uploader.Upload(c.Request.Context(),
		c.PostForm("name"), c.PostForm("dataset_type"), c.PostForm("description"),
		file.Filename, src)
	if err != nil {
		h.writeError(c, err, "Failed to store dataset")
		return
	}
	c.JSON(http.StatusCreated, ds)
}

// TrainModel trains a model on a previously uploaded dataset.
func (h *Handler) TrainModel(c *gin.Context) {
	var req struct {
		DatasetID uuid.UUID `json:"dataset_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DatasetID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body, dataset_id required"})
		return
	}

	m, err := h.trainer.Train(c.Request.Context(), req.DatasetID)
	if err != nil {
		h.writeError(c, err, "Failed to train model")
		return
	}
	h.logger.Infof("Trained and activated model %s", m.ID)
	c.JSON(http.StatusCreated, m)
}

// RunAnalysis triggers one synchronous analysis pass.
func (h *Handler) RunAnalysis(c *gin.Context) {
	report, err := h.analyzer.RunAnalysis(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Analysis run failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetNotificationsByUserID lists a user's notifications, newest first.
func (h *Handler) GetNotificationsByUserID(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.store.GetNotificationsByUserID(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(c, err, "Failed to get notifications")
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

// GetUnreadCount returns the unread and unread-critical counters for a user.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	counts, err := h.store.GetUnreadCounts(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// MarkNotificationRead marks one notification read for its recipient.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}
	if err := h.store.MarkNotificationRead(c.Request.Context(), id, userID); err != nil {
		h.writeError(c, err, "Failed to mark notification read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// MarkAllNotificationsRead marks all of a user's notifications read.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	updated, err := h.store.MarkAllNotificationsRead(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "Failed to mark notifications read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "updated": updated})
}

// DeleteNotification removes a notification owned by the requesting user.
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}
	if err := h.store.DeleteNotification(c.Request.Context(), id, userID); err != nil {
		h.writeError(c, err, "Failed to delete notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetAlerts lists alerts, optionally filtered by resolved state.
func (h *Handler) GetAlerts(c *gin.Context) {
	var resolved *bool
	if v := c.Query("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resolved filter"})
			return
		}
		resolved = &b
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	list, err := h.store.GetAlerts(c.Request.Context(), resolved, limit)
	if err != nil {
		h.writeError(c, err, "Failed to get alerts")
		return
	}
	if list == nil {
		list = []models.Alert{}
	}
	c.JSON(http.StatusOK, list)
}

// GetAlertsByVendor lists unresolved alerts for a vendor's products.
func (h *Handler) GetAlertsByVendor(c *gin.Context) {
	vendorID, err := strconv.ParseInt(c.Param("vendor_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor_id"})
		return
	}
	list, err := h.store.GetAlertsByVendor(c.Request.Context(), vendorID)
	if err != nil {
		h.writeError(c, err, "Failed to get vendor alerts")
		return
	}
	if list == nil {
		list = []models.Alert{}
	}
	c.JSON(http.StatusOK, list)
}

// ResolveAlert marks an alert resolved.
func (h *Handler) ResolveAlert(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.store.ResolveAlert(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "Failed to resolve alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetDashboardSummary returns the aggregate counters for the admin dashboard.
func (h *Handler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.store.GetDashboardSummary(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to build dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetProductByBarcode resolves a scanned barcode to a product and its most
// recent sensor readings.
func (h *Handler) GetProductByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	product, err := h.store.GetProductByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.writeError(c, err, "Failed to get product")
		return
	}
	readings, err := h.store.GetRecentSensorReadings(c.Request.Context(), product.ID, 20)
	if err != nil {
		h.writeError(c, err, "Failed to get sensor readings")
		return
	}
	if readings == nil {
		readings = []models.SensorReading{}
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "recent_readings": readings})
}

// Health reports liveness and whether a trained model is active.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": h.detector.ModelLoaded()})
}

// NotificationSocket upgrades the request to a WebSocket that streams new
// notifications for the user.
func (h *Handler) NotificationSocket(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := h.hub.HandleConnection(c.Writer, c.Request, userID); err != nil {
		h.logger.Errorf("WebSocket upgrade failed for user %d: %v", userID, err)
	}
}
