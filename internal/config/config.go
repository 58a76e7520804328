// Package config resolves process-wide settings once at startup.
//
// Settings come from an optional TOML file (~/.figgen/config.toml) overridden
// by environment variables. The resolved Config is immutable: it is built
// fully or not at all, and is shared read-only by every invocation.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/figgen/mcp-server/internal/faults"
)

// Provider names accepted for the evaluation judge.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultVLMModel   = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"

	// Claude enforces a 5 MB limit on base64-encoded images in tool results.
	// Base64 inflates raw bytes by ~4/3, so the raw cap is 3.75 MB.
	DefaultMaxImageBytes = 3_750_000

	DefaultBackendTimeout = 300 * time.Second
)

// Config is the resolved, immutable process configuration.
type Config struct {
	// GoogleAPIKey authenticates to the generation backend. Required.
	GoogleAPIKey string
	// AnthropicAPIKey is only required when VLMProvider is "anthropic".
	AnthropicAPIKey string
	// SkipSSLVerification disables certificate validation for outbound calls.
	// Intended only for constrained network environments, never production.
	SkipSSLVerification bool

	VLMProvider string
	VLMModel    string
	ImageModel  string
	BaseURL     string

	BackendTimeout time.Duration
	MaxImageBytes  int
	OutputDir      string

	// Source records where the file portion was loaded from, if any.
	Source string
}

// fileConfig is the on-disk schema. Every field is optional; env wins.
type fileConfig struct {
	GoogleAPIKey        string `toml:"google_api_key"`
	AnthropicAPIKey     string `toml:"anthropic_api_key"`
	SkipSSLVerification *bool  `toml:"skip_ssl_verification"`
	VLMProvider         string `toml:"vlm_provider"`
	VLMModel            string `toml:"vlm_model"`
	ImageModel          string `toml:"image_model"`
	BaseURL             string `toml:"base_url"`
	BackendTimeoutSecs  int    `toml:"backend_timeout_seconds"`
	MaxImageBytes       int    `toml:"max_image_bytes"`
	OutputDir           string `toml:"output_dir"`
}

// DefaultPath returns the default config file location, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".figgen", "config.toml")
}

// Resolve loads the configuration from path (DefaultPath when empty) and the
// environment. A missing file is not an error; a missing credential is fatal.
func Resolve(path string) (*Config, error) {
	cfg := &Config{
		VLMProvider:    ProviderGemini,
		VLMModel:       DefaultVLMModel,
		ImageModel:     DefaultImageModel,
		BaseURL:        DefaultBaseURL,
		BackendTimeout: DefaultBackendTimeout,
		MaxImageBytes:  DefaultMaxImageBytes,
		OutputDir:      ".figgen",
	}

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		return nil, faults.Configuration(
			"GOOGLE_API_KEY not found; get a key at https://makersuite.google.com/app/apikey and export GOOGLE_API_KEY before starting the server")
	}
	if cfg.VLMProvider != ProviderGemini && cfg.VLMProvider != ProviderAnthropic {
		return nil, faults.Configuration("unknown VLM provider %q (expected %q or %q)", cfg.VLMProvider, ProviderGemini, ProviderAnthropic)
	}
	if cfg.VLMProvider == ProviderAnthropic && strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
		return nil, faults.Configuration("ANTHROPIC_API_KEY not found; it is required when vlm_provider is %q", ProviderAnthropic)
	}
	if cfg.BackendTimeout <= 0 {
		return nil, faults.Configuration("backend timeout must be positive, got %s", cfg.BackendTimeout)
	}
	if cfg.MaxImageBytes <= 0 {
		return nil, faults.Configuration("max image bytes must be positive, got %d", cfg.MaxImageBytes)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return faults.Configuration("read config file %s: %v", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(content, &fc); err != nil {
		return faults.Configuration("parse config file %s: %v", path, err)
	}
	cfg.Source = path

	if fc.GoogleAPIKey != "" {
		cfg.GoogleAPIKey = fc.GoogleAPIKey
	}
	if fc.AnthropicAPIKey != "" {
		cfg.AnthropicAPIKey = fc.AnthropicAPIKey
	}
	if fc.SkipSSLVerification != nil {
		cfg.SkipSSLVerification = *fc.SkipSSLVerification
	}
	if fc.VLMProvider != "" {
		cfg.VLMProvider = fc.VLMProvider
	}
	if fc.VLMModel != "" {
		cfg.VLMModel = fc.VLMModel
	}
	if fc.ImageModel != "" {
		cfg.ImageModel = fc.ImageModel
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.BackendTimeoutSecs > 0 {
		cfg.BackendTimeout = time.Duration(fc.BackendTimeoutSecs) * time.Second
	}
	if fc.MaxImageBytes > 0 {
		cfg.MaxImageBytes = fc.MaxImageBytes
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); v != "" {
		cfg.GoogleAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v, ok := os.LookupEnv("SKIP_SSL_VERIFICATION"); ok {
		b, err := parseBool(v)
		if err != nil {
			return faults.Configuration("invalid SKIP_SSL_VERIFICATION %q: expected a boolean", v)
		}
		cfg.SkipSSLVerification = b
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_VLM_PROVIDER")); v != "" {
		cfg.VLMProvider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_VLM_MODEL")); v != "" {
		cfg.VLMModel = v
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_IMAGE_MODEL")); v != "" {
		cfg.ImageModel = v
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_BACKEND_TIMEOUT_SECONDS")); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return faults.Configuration("invalid FIGGEN_BACKEND_TIMEOUT_SECONDS %q: expected a positive integer", v)
		}
		cfg.BackendTimeout = time.Duration(secs) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_MAX_IMAGE_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return faults.Configuration("invalid FIGGEN_MAX_IMAGE_BYTES %q: expected a positive integer", v)
		}
		cfg.MaxImageBytes = n
	}
	if v := strings.TrimSpace(os.Getenv("FIGGEN_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	return nil
}

// parseBool accepts the usual spellings plus yes/no, which show up in env files.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}
