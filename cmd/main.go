package main

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"sync"

	"inventory-monitor/internal/alerting"
	"inventory-monitor/internal/api"
	"inventory-monitor/internal/config"
	"inventory-monitor/internal/db"
	"inventory-monitor/internal/detector"
	"inventory-monitor/internal/ingest"
	"inventory-monitor/internal/kafka"
	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/monitor"
	"inventory-monitor/internal/notify"
	"inventory-monitor/internal/providers"
	"inventory-monitor/internal/trainer"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	// Detector: run rule-based until an active trained model is found.
	det := detector.New(logger)
	if m, err := dbConn.GetActiveModel(context.Background(), detector.ModelTypeAnomalyDetection); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Errorf("Failed to look up active model: %v", err)
		}
		logger.Infof("No active model, using rule-based detection")
	} else {
		mf, err := detector.LoadModelFile(filepath.Join(cfg.Detector.DataDir, m.ModelFile))
		if err != nil {
			logger.Errorf("Failed to load model %s, falling back to rules: %v", m.ID, err)
		} else if err := det.LoadModel(mf); err != nil {
			logger.Errorf("Model %s rejected, falling back to rules: %v", m.ID, err)
		} else {
			logger.Infof("Loaded active model %s (%s)", m.ID, m.Name)
		}
	}

	hub := notify.NewHub(logger)

	alerter := alerting.New(dbConn, logger).WithPusher(hub)
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		alerter.WithChannels(providers.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, logger))
	}
	if cfg.Email.SMTPServer != "" && len(cfg.Email.Recipients) > 0 {
		alerter.WithChannels(providers.NewEmail(cfg.Email.SMTPServer, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.Recipients, logger))
	}

	ingestSvc := ingest.New(dbConn, alerter, logger)
	datasetSvc := ingest.NewDatasetService(dbConn, cfg.Detector.DataDir, logger)
	trainSvc := trainer.New(dbConn, det, cfg.Detector.DataDir, logger)

	var wg sync.WaitGroup

	monitorSvc := monitor.New(dbConn, det, alerter, logger, cfg.Analysis.Interval)
	monitorSvc.Start(&wg)
	defer monitorSvc.Stop()

	if cfg.Kafka.Broker != "" {
		consumer := kafka.NewConsumer(kafka.Config{
			Broker:  cfg.Kafka.Broker,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, ingestSvc, logger)
		consumer.Start(&wg)
		defer consumer.Close()
		logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)
	}

	// Start API server
	handler := api.NewHandler(dbConn, ingestSvc, datasetSvc, trainSvc, monitorSvc, det, hub, logger)
	router := api.NewRouter(handler, logger, cfg)
	logger.Infof("Starting API server on %s", cfg.API.Port)
	if err := router.Run(cfg.API.Port); err != nil {
		logger.Errorf("API server failed: %v", err)
	}
}
