package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. It is built once by Load and
// passed by value into the components that need it.
type Config struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port" validate:"required,numeric"`
	Environment string `yaml:"environment" validate:"required"`

	// Scratch directory for uploads in flight
	UploadsDir string `yaml:"uploads_dir" validate:"required"`

	// Upper bound on a single uploaded file in bytes
	MaxFileSize int64 `yaml:"max_file_size" validate:"gt=0"`

	AllowedMimeTypes  []string `yaml:"allowed_mime_types" validate:"required,dive,required"`
	AllowedExtensions []string `yaml:"allowed_extensions" validate:"required,dive,startswith=."`
	AllowedOrigins    []string `yaml:"allowed_origins" validate:"dive,url"`

	// Artificial latency of the demo transcriber
	FallbackDelay time.Duration `yaml:"fallback_delay" validate:"gte=0s"`

	OpenAI OpenAIConfig `yaml:"openai"`
	Server ServerConfig `yaml:"server"`
}

// OpenAIConfig configures the transcription provider
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Model       string  `yaml:"model" validate:"required"`
	Language    string  `yaml:"language" validate:"required"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=1"`
}

// ServerConfig holds HTTP server timeouts. Zero means no timeout.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" validate:"gte=0s"`
	ReadTimeout       time.Duration `yaml:"read_timeout" validate:"gte=0s"`
	WriteTimeout      time.Duration `yaml:"write_timeout" validate:"gte=0s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" validate:"gte=0s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"gt=0s"`
}

// LoadOptions controls where Load reads configuration from
type LoadOptions struct {
	// Optional YAML file applied on top of the defaults
	ConfigFile string
	// Skip .env discovery (used by tests)
	SkipDotEnv bool
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Host:              DefaultHost,
		Port:              DefaultPort,
		Environment:       DefaultEnvironment,
		UploadsDir:        DefaultUploadsDir,
		MaxFileSize:       DefaultMaxFileSize,
		AllowedMimeTypes:  append([]string(nil), DefaultAllowedMimeTypes...),
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		AllowedOrigins:    append([]string(nil), DefaultAllowedOrigins...),
		FallbackDelay:     DefaultFallbackDelay,
		OpenAI: OpenAIConfig{
			Model:       DefaultTranscribeModel,
			Language:    DefaultTranscribeLanguage,
			Temperature: DefaultTranscribeTemperature,
		},
		Server: ServerConfig{
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
	}
}

// Load builds the configuration: defaults, then the optional YAML file,
// then .env, then the process environment. The result is validated.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := loadFile(opts.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if !opts.SkipDotEnv {
		if _, err := LoadEnv(); err != nil {
			return Config{}, fmt.Errorf("failed to load environment: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() error {
	dir, err := filepath.Abs(c.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to resolve uploads dir %s: %w", c.UploadsDir, err)
	}
	c.UploadsDir = dir

	for i, ext := range c.AllowedExtensions {
		c.AllowedExtensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}
	for i, mt := range c.AllowedMimeTypes {
		c.AllowedMimeTypes[i] = strings.ToLower(strings.TrimSpace(mt))
	}
	return nil
}

// HasProviderCredential reports whether a usable OpenAI key is configured.
// The placeholder value from .env.example counts as absent.
func (c Config) HasProviderCredential() bool {
	return c.OpenAI.APIKey != "" && c.OpenAI.APIKey != PlaceholderAPIKey
}

// IsProduction reports whether raw error details must be withheld from clients.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MaxFileSizeHuman renders MaxFileSize as e.g. "25MB".
func (c Config) MaxFileSizeHuman() string {
	const mb = 1024 * 1024
	if c.MaxFileSize%mb == 0 {
		return fmt.Sprintf("%dMB", c.MaxFileSize/mb)
	}
	return fmt.Sprintf("%.2fMB", float64(c.MaxFileSize)/mb)
}
