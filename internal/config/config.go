package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Detector struct {
		DataDir string
	}
	Analysis struct {
		Interval time.Duration
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		Recipients []string
	}
	Telegram struct {
		BotToken string
		ChatIDs  []int64
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	cfg.Detector.DataDir = os.Getenv("DATA_DIR")

	if v := os.Getenv("ANALYSIS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ANALYSIS_INTERVAL %q: %w", v, err)
		}
		cfg.Analysis.Interval = d
	}

	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	if v := os.Getenv("EMAIL_RECIPIENTS"); v != "" {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.Email.Recipients = append(cfg.Email.Recipients, addr)
			}
		}
	}

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("invalid TELEGRAM_CHAT_IDS entry %q: %w", raw, err)
			}
			cfg.Telegram.ChatIDs = append(cfg.Telegram.ChatIDs, id)
		}
	}

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "sensor_readings"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "inventory-monitor"
	}
	if cfg.Detector.DataDir == "" {
		cfg.Detector.DataDir = "data"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
