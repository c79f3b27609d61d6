// Package kafka consumes sensor readings from the warehouse gateway topic
// and feeds them into the ingestion pipeline.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"inventory-monitor/internal/ingest"
	"inventory-monitor/internal/logging"
)

type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

type Consumer struct {
	reader *kafka.Reader
	svc    *ingest.Service
	logger *logging.Logger
	cancel context.CancelFunc
}

func NewConsumer(cfg Config, svc *ingest.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.Broker},
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        time.Second,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

func (c *Consumer) Start(wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					c.logger.Infof("Kafka consumer shutting down")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}

			var rec ingest.Reading
			if err := json.Unmarshal(msg.Value, &rec); err != nil {
				c.logger.Errorf("Unmarshal message failed: %v", err)
				continue
			}

			// Malformed payloads are skipped, not retried; the offset is
			// committed either way.
			if created, err := c.svc.Ingest(ctx, rec); err != nil {
				c.logger.Errorf("Failed to ingest reading for barcode %s: %v", rec.ProductBarcode, err)
			} else if created > 0 {
				c.logger.Infof("Reading for barcode %s generated %d alert(s)", rec.ProductBarcode, created)
			}
		}
	}()
}

func (c *Consumer) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Failed to close Kafka reader: %v", err)
	}
}
