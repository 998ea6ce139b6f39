package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.env"

var ErrMissingCredentials = errors.New("ENDPOINT and KEY must both be set")

// Config holds the application configuration.
type Config struct {
	Endpoint string `mapstructure:"ENDPOINT"`
	Key      string `mapstructure:"KEY"`

	VisionProvider   string        `mapstructure:"VISION_PROVIDER"`
	VisionAPIVersion string        `mapstructure:"VISION_API_VERSION"`
	VisionTimeout    time.Duration `mapstructure:"VISION_TIMEOUT"`
	GeminiModel      string        `mapstructure:"GEMINI_MODEL"`

	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	UploadDir         string   `mapstructure:"UPLOAD_DIR"`
	MaxUploadBytes    int64    `mapstructure:"MAX_UPLOAD_BYTES"`
	AllowedExtensions []string `mapstructure:"ALLOWED_EXTENSIONS"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CaptionCacheTTL time.Duration `mapstructure:"CAPTION_CACHE_TTL"`
}

// Load reads configuration from a dotenv-style file and the environment.
// Environment variables win over the file. A missing file is not an error,
// missing credentials are.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("ENDPOINT", "")
	v.SetDefault("KEY", "")
	v.SetDefault("VISION_PROVIDER", "azure")
	v.SetDefault("VISION_API_VERSION", "2024-02-01")
	v.SetDefault("VISION_TIMEOUT", "30s")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 16<<20)
	v.SetDefault("ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CAPTION_CACHE_TTL", "24h")

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the service cannot start without.
func (c *Config) Validate() error {
	if c.Endpoint == "" || c.Key == "" {
		return ErrMissingCredentials
	}
	switch c.VisionProvider {
	case "azure", "gemini":
	default:
		return fmt.Errorf("unknown VISION_PROVIDER %q", c.VisionProvider)
	}
	if c.VisionTimeout <= 0 {
		return fmt.Errorf("VISION_TIMEOUT must be positive, got %s", c.VisionTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if len(c.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must not be empty")
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

func (c *Config) normalize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Key = strings.TrimSpace(c.Key)
	c.VisionProvider = strings.ToLower(strings.TrimSpace(c.VisionProvider))

	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.AllowedExtensions = exts
}
