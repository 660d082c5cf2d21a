package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// DOCOUTLINE_WORKER_COUNT.
const EnvPrefix = "DOCOUTLINE"

type Config struct {
	Port string `mapstructure:"port"`

	// Auth
	APIKey string `mapstructure:"api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Per-document time limit; zero disables it.
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`

	// Outline heuristics
	BandMargin        float64 `mapstructure:"band_margin"`
	BoilerplateRatio  float64 `mapstructure:"boilerplate_ratio"`
	MaxHeadingLen     int     `mapstructure:"max_heading_len"`
	MinTitleLen       int     `mapstructure:"min_title_len"`
	MinBoilerplateLen int     `mapstructure:"min_boilerplate_len"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from DOCOUTLINE_* environment variables and, when
// configFile is not empty, from that file (YAML, JSON or TOML by extension).
// Environment variables win over the file.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := outline.DefaultOptions()
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("job_ttl", "1h")
	v.SetDefault("extract_timeout", "2m")
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("band_margin", def.BandMargin)
	v.SetDefault("boilerplate_ratio", def.BoilerplateRatio)
	v.SetDefault("max_heading_len", def.MaxHeadingLen)
	v.SetDefault("min_title_len", def.MinTitleLen)
	v.SetDefault("min_boilerplate_len", def.MinBoilerplateLen)
	v.SetDefault("log_level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Container platforms set PORT; honor it unless DOCOUTLINE_PORT is set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_PORT") == "" {
		cfg.Port = port
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

// Validate checks the heuristic thresholds. Every threshold must be
// positive: the extractor treats zero as unset.
func (c Config) Validate() error {
	if c.BandMargin <= 0 {
		return fmt.Errorf("BAND_MARGIN must be positive, got %v", c.BandMargin)
	}
	if c.BoilerplateRatio <= 0 || c.BoilerplateRatio > 1 {
		return fmt.Errorf("BOILERPLATE_RATIO must be in (0, 1], got %v", c.BoilerplateRatio)
	}
	if c.MaxHeadingLen <= 0 {
		return fmt.Errorf("MAX_HEADING_LEN must be positive, got %d", c.MaxHeadingLen)
	}
	if c.MinTitleLen <= 0 {
		return fmt.Errorf("MIN_TITLE_LEN must be positive, got %d", c.MinTitleLen)
	}
	if c.MinBoilerplateLen <= 0 {
		return fmt.Errorf("MIN_BOILERPLATE_LEN must be positive, got %d", c.MinBoilerplateLen)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateServer additionally requires the settings the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is required", EnvPrefix)
	}
	return c.Validate()
}

// OutlineOptions returns the heuristic thresholds for the extractor.
func (c Config) OutlineOptions() outline.Options {
	return outline.Options{
		BandMargin:        c.BandMargin,
		BoilerplateRatio:  c.BoilerplateRatio,
		MaxHeadingLen:     c.MaxHeadingLen,
		MinTitleLen:       c.MinTitleLen,
		MinBoilerplateLen: c.MinBoilerplateLen,
	}
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

// NewLogger returns a JSON logger writing to w. Unknown levels mean info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := ParseLogLevel(level)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
