// Package config assembles the application configuration from defaults, an
// optional YAML file, and BOL_-prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log     LogConfig
	OCR     OCRConfig
	DB      DBConfig
	Batch   BatchConfig
	Export  ExportConfig
	Extract ExtractConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OCRConfig holds the external OCR toolchain settings.
type OCRConfig struct {
	Tesseract   string `mapstructure:"tesseract"`
	Pdftoppm    string `mapstructure:"pdftoppm"`
	DPI         int    `mapstructure:"dpi"`
	Lang        string `mapstructure:"lang"`
	TessdataDir string `mapstructure:"tessdata_dir"`
}

// DBConfig holds persistence settings. An empty DSN disables persistence
// entirely; nothing is stored and no driver is loaded.
type DBConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	MaxOpen int    `mapstructure:"max_open"`
	MaxIdle int    `mapstructure:"max_idle"`
}

// Enabled reports whether a database is configured.
func (d *DBConfig) Enabled() bool { return d.DSN != "" }

// BatchConfig holds worker pool settings.
type BatchConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	SkipHidden     bool          `mapstructure:"skip_hidden"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExtractConfig holds extraction tuning.
type ExtractConfig struct {
	Mode            string   `mapstructure:"mode"`
	MinTextChars    int      `mapstructure:"min_text_chars"`
	RefDataPath     string   `mapstructure:"refdata"`
	CarrierPrefixes []string `mapstructure:"carrier_prefixes"`
}

// Load reads configuration from defaults, the optional YAML file at
// cfgFile, and environment variables with the BOL_ prefix.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// OCR defaults
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")

	// DB defaults: persistence is off until a DSN is configured
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Batch defaults
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.queue_size", 256)
	v.SetDefault("batch.process_timeout", "3m")
	v.SetDefault("batch.skip_hidden", true)

	// Export defaults
	v.SetDefault("export.dir", ".")

	// Extract defaults
	v.SetDefault("extract.mode", "auto")
	v.SetDefault("extract.min_text_chars", 50)
	v.SetDefault("extract.refdata", "")
	v.SetDefault("extract.carrier_prefixes", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"log.level":                "BOL_LOG_LEVEL",
		"log.format":               "BOL_LOG_FORMAT",
		"ocr.tesseract":            "BOL_OCR_TESSERACT",
		"ocr.pdftoppm":             "BOL_OCR_PDFTOPPM",
		"ocr.dpi":                  "BOL_OCR_DPI",
		"ocr.lang":                 "BOL_OCR_LANG",
		"ocr.tessdata_dir":         "BOL_OCR_TESSDATA_DIR",
		"db.driver":                "BOL_DB_DRIVER",
		"db.dsn":                   "BOL_DB_DSN",
		"db.max_open":              "BOL_DB_MAX_OPEN",
		"db.max_idle":              "BOL_DB_MAX_IDLE",
		"batch.workers":            "BOL_BATCH_WORKERS",
		"batch.queue_size":         "BOL_BATCH_QUEUE_SIZE",
		"batch.process_timeout":    "BOL_BATCH_PROCESS_TIMEOUT",
		"batch.skip_hidden":        "BOL_BATCH_SKIP_HIDDEN",
		"export.dir":               "BOL_EXPORT_DIR",
		"extract.mode":             "BOL_EXTRACT_MODE",
		"extract.min_text_chars":   "BOL_EXTRACT_MIN_TEXT_CHARS",
		"extract.refdata":          "BOL_EXTRACT_REFDATA",
		"extract.carrier_prefixes": "BOL_EXTRACT_CARRIER_PREFIXES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.OCR = OCRConfig{
		Tesseract:   v.GetString("ocr.tesseract"),
		Pdftoppm:    v.GetString("ocr.pdftoppm"),
		DPI:         v.GetInt("ocr.dpi"),
		Lang:        v.GetString("ocr.lang"),
		TessdataDir: v.GetString("ocr.tessdata_dir"),
	}
	cfg.DB = DBConfig{
		Driver:  v.GetString("db.driver"),
		DSN:     v.GetString("db.dsn"),
		MaxOpen: v.GetInt("db.max_open"),
		MaxIdle: v.GetInt("db.max_idle"),
	}
	cfg.Batch = BatchConfig{
		Workers:        v.GetInt("batch.workers"),
		QueueSize:      v.GetInt("batch.queue_size"),
		ProcessTimeout: v.GetDuration("batch.process_timeout"),
		SkipHidden:     v.GetBool("batch.skip_hidden"),
	}
	cfg.Export = ExportConfig{
		Dir: v.GetString("export.dir"),
	}

	// Parse carrier prefixes from a comma-separated string
	var prefixes []string
	for _, p := range strings.Split(v.GetString("extract.carrier_prefixes"), ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	cfg.Extract = ExtractConfig{
		Mode:            v.GetString("extract.mode"),
		MinTextChars:    v.GetInt("extract.min_text_chars"),
		RefDataPath:     v.GetString("extract.refdata"),
		CarrierPrefixes: prefixes,
	}

	return cfg, nil
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
