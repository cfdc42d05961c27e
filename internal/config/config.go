package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SubmittyFile = "submitty.json"
	DatabaseFile = "database.json"
)

type Config struct {
	DataDir    string
	BaseURL    string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string

	Environment   string
	SweepInterval time.Duration

	TelegramToken       string
	TelegramAlertChatID int64
}

// submittyFile соответствует submitty.json
type submittyFile struct {
	DataDir       *string `json:"submitty_data_dir"`
	SubmissionURL *string `json:"submission_url"`
}

// databaseFile соответствует database.json. Указатели отличают отсутствующий
// ключ от пустого значения: пустой пароль допустим при peer/trust авторизации.
type databaseFile struct {
	Host     *string `json:"database_host"`
	Port     int     `json:"database_port"`
	User     *string `json:"database_user"`
	Password *string `json:"database_password"`
}

// DefaultDir возвращает каталог конфигурации: SUBMITTY_CONFIG_DIR либо ../config относительно бинарника
func DefaultDir() (string, error) {
	if dir := os.Getenv("SUBMITTY_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable symlinks: %w", err)
	}

	return filepath.Join(filepath.Dir(exe), "..", "config"), nil
}

// LoadEnv подгружает .env (если есть) в переменные окружения
func LoadEnv() {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("Loaded environment from .env file")
	}
}

// Load читает submitty.json и database.json из dir и переменные окружения.
// Частичная конфигурация не допускается: любая ошибка фатальна.
func Load(dir string) (*Config, error) {
	var sub submittyFile
	if err := readJSON(filepath.Join(dir, SubmittyFile), &sub); err != nil {
		return nil, err
	}

	var db databaseFile
	if err := readJSON(filepath.Join(dir, DatabaseFile), &db); err != nil {
		return nil, err
	}

	required := []struct {
		key   string
		value *string
	}{
		{"submitty_data_dir", sub.DataDir},
		{"submission_url", sub.SubmissionURL},
		{"database_host", db.Host},
		{"database_user", db.User},
		{"database_password", db.Password},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, fmt.Errorf("%s is required but not set", r.key)
		}
	}

	cfg := &Config{
		DataDir:     *sub.DataDir,
		BaseURL:     *sub.SubmissionURL,
		DBHost:      *db.Host,
		DBPort:      db.Port,
		DBUser:      *db.User,
		DBPassword:  *db.Password,
		Environment: os.Getenv("ENV"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("SWEEP_INTERVAL must not be negative")
		}
		c.SweepInterval = d
	}

	c.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if v := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse TELEGRAM_ALERT_CHAT_ID: %w", err)
		}
		c.TelegramAlertChatID = id
	}

	return nil
}

func (c *Config) validate() error {
	nonEmpty := []struct {
		key   string
		value string
	}{
		{"submitty_data_dir", c.DataDir},
		{"submission_url", c.BaseURL},
		{"database_host", c.DBHost},
	}

	for _, r := range nonEmpty {
		if r.value == "" {
			return fmt.Errorf("%s must not be empty", r.key)
		}
	}

	if c.DBPort < 0 || c.DBPort > 65535 {
		return fmt.Errorf("database_port %d out of range", c.DBPort)
	}

	return nil
}

// NotificationLogDir каталог ежедневных логов рассылки
func (c *Config) NotificationLogDir() string {
	return filepath.Join(c.DataDir, "logs", "notifications")
}

// AlertsEnabled true, если настроены алерты в Telegram
func (c *Config) AlertsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramAlertChatID != 0
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return nil
}
