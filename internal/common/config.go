package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Inbox    InboxConfig    `yaml:"inbox"`
	Portal   PortalConfig   `yaml:"portal"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// LLMConfig holds inference provider configuration
type LLMConfig struct {
	Provider        string        `yaml:"provider"` // openai | anthropic
	Model           string        `yaml:"model"` // empty uses the provider default
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	Temperature     float32       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	LenientOptional bool          `yaml:"lenient_optional"`
}

// PipelineConfig holds run-level configuration
type PipelineConfig struct {
	CatalogPath string        `yaml:"catalog_path"` // empty uses the built-in catalog
	RunTimeout  time.Duration `yaml:"run_timeout"`
	LabFeeScope string        `yaml:"lab_fee_scope"` // all | resolved
}

// InboxConfig holds the watched-directory ingestion settings
type InboxConfig struct {
	Dir         string        `yaml:"dir"`
	Debounce    time.Duration `yaml:"debounce"`
	InitialScan bool          `yaml:"initial_scan"`
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
}

// PortalConfig holds the scheduled portal scan settings
type PortalConfig struct {
	URL      string `yaml:"url"`
	Schedule string `yaml:"schedule"` // cron spec; empty disables scheduled scans
	MaxDays  int    `yaml:"max_days"`
}

// ExportConfig holds quote workbook output settings
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DefaultConfig returns the configuration used when neither a file nor env overrides a value.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        "openai",
			OpenAIBaseURL:   "https://api.openai.com/v1",
			Temperature:     0.0,
			Timeout:         45 * time.Second,
			LenientOptional: true,
		},
		Pipeline: PipelineConfig{
			RunTimeout:  3 * time.Minute,
			LabFeeScope: "all",
		},
		Inbox: InboxConfig{
			Dir:         "./inbox",
			Debounce:    500 * time.Millisecond,
			InitialScan: true,
			Workers:     2,
			QueueSize:   64,
		},
		Portal: PortalConfig{
			URL:     "https://portal.procurement-global.com/public-tenders",
			MaxDays: 90,
		},
		Export: ExportConfig{
			Dir: "./quotes",
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH, default ./config.yaml) and environment variables, in that order.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path := getEnv("CONFIG_PATH", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", path), err)
	}

	cfg.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.LLM.OpenAIBaseURL)
	cfg.LLM.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	cfg.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.LenientOptional = getEnvAsBool("LLM_LENIENT_OPTIONAL", cfg.LLM.LenientOptional)

	cfg.Pipeline.CatalogPath = getEnv("CATALOG_PATH", cfg.Pipeline.CatalogPath)
	cfg.Pipeline.RunTimeout = getEnvAsDuration("RUN_TIMEOUT", cfg.Pipeline.RunTimeout)
	cfg.Pipeline.LabFeeScope = strings.ToLower(getEnv("LAB_FEE_SCOPE", cfg.Pipeline.LabFeeScope))

	cfg.Inbox.Dir = getEnv("INBOX_DIR", cfg.Inbox.Dir)
	cfg.Inbox.Debounce = getEnvAsDuration("INBOX_DEBOUNCE", cfg.Inbox.Debounce)
	cfg.Inbox.InitialScan = getEnvAsBool("INBOX_INITIAL_SCAN", cfg.Inbox.InitialScan)
	cfg.Inbox.Workers = getEnvAsInt("QUEUE_WORKERS", cfg.Inbox.Workers)
	cfg.Inbox.QueueSize = getEnvAsInt("QUEUE_SIZE", cfg.Inbox.QueueSize)

	cfg.Portal.URL = getEnv("PORTAL_URL", cfg.Portal.URL)
	cfg.Portal.Schedule = getEnv("PORTAL_SCAN_SCHEDULE", cfg.Portal.Schedule)
	cfg.Portal.MaxDays = getEnvAsInt("PORTAL_MAX_DAYS", cfg.Portal.MaxDays)

	cfg.Export.Dir = getEnv("EXPORT_DIR", cfg.Export.Dir)
	cfg.Server.GRPCAddr = getEnv("GRPC_ADDR", cfg.Server.GRPCAddr)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required when LLM_PROVIDER=openai", ErrInvalidInput)
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LLM_PROVIDER must be 'openai' or 'anthropic', got %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Inbox.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	switch c.Pipeline.LabFeeScope {
	case "", "resolved", "all":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LAB_FEE_SCOPE must be 'resolved' or 'all', got %q", c.Pipeline.LabFeeScope), ErrInvalidInput)
	}
	if c.Portal.MaxDays <= 0 {
		return NewAppError("CONFIG_ERROR", "PORTAL_MAX_DAYS must be positive", ErrInvalidInput)
	}
	return nil
}
