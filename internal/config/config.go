// Package config provides unified configuration loading for the simplifier.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generation backends.
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// PDF extraction backends.
const (
	PDFBackendLedongthuc = "ledongthuc"
	PDFBackendFitz       = "fitz"
)

// Config holds all configuration for the simplifier.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Generation    GenerationConfig    `yaml:"generation"`
	PDF           PDFConfig           `yaml:"pdf"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// GenerationConfig holds text-generation service settings.
type GenerationConfig struct {
	Backend string        `yaml:"backend"` // gemini or vertex
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"` // 0 leaves the transport default
	Vertex  VertexConfig  `yaml:"vertex"`
}

// VertexConfig holds Vertex AI settings.
type VertexConfig struct {
	ProjectID string `yaml:"project_id"`
	Region    string `yaml:"region"`
}

// PDFConfig holds text extraction settings.
type PDFConfig struct {
	Backend          string `yaml:"backend"` // ledongthuc or fitz
	MaxBytes         int64  `yaml:"max_bytes"`
	StrictValidation bool   `yaml:"strict_validation"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   32 << 20,
			AllowedOrigins:   []string{"*"},
		},
		Generation: GenerationConfig{
			Backend: BackendGemini,
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.5-flash-preview-05-20",
			Vertex: VertexConfig{
				Region: "us-central1",
			},
		},
		PDF: PDFConfig{
			Backend:          PDFBackendLedongthuc,
			MaxBytes:         25 << 20,
			StrictValidation: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "legal-simplifier",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	switch c.Generation.Backend {
	case BackendGemini:
		if c.Generation.BaseURL == "" {
			return fmt.Errorf("generation base_url is required for the gemini backend")
		}
	case BackendVertex:
		if c.Generation.Vertex.ProjectID == "" || c.Generation.Vertex.Region == "" {
			return fmt.Errorf("vertex project_id and region are required for the vertex backend")
		}
	default:
		return fmt.Errorf("invalid generation backend: %s", c.Generation.Backend)
	}

	if c.Generation.Model == "" {
		return fmt.Errorf("generation model is required")
	}

	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation timeout cannot be negative")
	}

	if c.PDF.Backend != PDFBackendLedongthuc && c.PDF.Backend != PDFBackendFitz {
		return fmt.Errorf("invalid pdf backend: %s", c.PDF.Backend)
	}

	if c.PDF.MaxBytes <= 0 {
		return fmt.Errorf("pdf max_bytes must be positive")
	}

	return nil
}

// HasCredential reports whether an API key is available to the gemini backend.
func (c *Config) HasCredential() bool {
	return c.Generation.Backend != BackendGemini || strings.TrimSpace(c.Generation.APIKey) != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Generation.Model = v
	}

	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("GENERATION_BACKEND"); v != "" {
		cfg.Generation.Backend = strings.ToLower(v)
	}

	if v := os.Getenv("GENERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generation.Timeout = d
		}
	}

	if v := os.Getenv("GOOGLE_CLOUD_PROJECT_ID"); v != "" {
		cfg.Generation.Vertex.ProjectID = v
	}

	if v := os.Getenv("VERTEX_AI_REGION"); v != "" {
		cfg.Generation.Vertex.Region = v
	}

	if v := os.Getenv("PDF_BACKEND"); v != "" {
		cfg.PDF.Backend = strings.ToLower(v)
	}

	if v := os.Getenv("PDF_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.PDF.MaxBytes = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
