package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the OCR API.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Upload  UploadConfig  `mapstructure:"upload"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Service ServiceConfig `mapstructure:"service"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// UploadConfig holds upload validation and scratch storage settings
type UploadConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size"`
	ScratchDir        string   `mapstructure:"scratch_dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// OCRConfig selects and tunes the OCR engine
type OCRConfig struct {
	Engine         string       `mapstructure:"engine"`
	Language       string       `mapstructure:"language"`
	ClassifyAngle  bool         `mapstructure:"classify_angle"`
	TessdataPrefix string       `mapstructure:"tessdata_prefix"`
	Paddle         PaddleConfig `mapstructure:"paddle"`
}

// PaddleConfig points at a PaddleOCR sidecar
type PaddleConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServiceConfig is what /api/health and /api/ocr/info report
type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	AllowHeaders []string `mapstructure:"allow_headers"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Engines lists the accepted values of ocr.engine.
var Engines = []string{"tesseract", "paddle"}

// DefaultAllowedExtensions is the upload whitelist, in the order it is reported.
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "bmp", "tiff", "webp"}

// Load loads configuration from defaults, an optional config file and the
// environment (OCR_SERVER_PORT, OCR_OCR_ENGINE, ...). PORT and DEBUG are
// honoured as aliases for server.port and log.development.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("OCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("server.port", "OCR_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("log.development", "OCR_LOG_DEVELOPMENT", "DEBUG"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("upload.max_file_size", 16*1024*1024)
	v.SetDefault("upload.scratch_dir", "/tmp/ocr_uploads")
	v.SetDefault("upload.allowed_extensions", DefaultAllowedExtensions)

	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.language", "en")
	v.SetDefault("ocr.classify_angle", true)
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.paddle.url", "http://localhost:8866/ocr")
	v.SetDefault("ocr.paddle.timeout", 60*time.Second)

	v.SetDefault("service.name", "OCR API")
	v.SetDefault("service.version", "1.0.0")

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("metrics.enabled", true)
}

// normalize lower-cases and trims values that are compared case-insensitively.
func normalize(cfg *Config) {
	cfg.OCR.Engine = strings.ToLower(strings.TrimSpace(cfg.OCR.Engine))

	exts := make([]string, 0, len(cfg.Upload.AllowedExtensions))
	for _, ext := range cfg.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	cfg.Upload.AllowedExtensions = exts
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Upload.ScratchDir == "" {
		return fmt.Errorf("upload.scratch_dir is required")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}

	known := false
	for _, e := range Engines {
		if c.OCR.Engine == e {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("ocr.engine must be one of %s, got %q", strings.Join(Engines, ", "), c.OCR.Engine)
	}
	if c.OCR.Engine == "paddle" && c.OCR.Paddle.URL == "" {
		return fmt.Errorf("ocr.paddle.url is required when ocr.engine is paddle")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
