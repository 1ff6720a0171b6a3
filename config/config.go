// Package config loads designgen settings.
//
// Priority: defaults → YAML file → environment.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("designgen.yaml").
//	    Load()
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mhpenta/designgen"
	"github.com/samber/lo"
)

// Config is the complete designgen configuration.
type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini" env:"GEMINI"`
	Generation GenerationConfig `yaml:"generation" env:"GENERATION"`
	Server     ServerConfig     `yaml:"server" env:"SERVER"`
	Export     ExportConfig     `yaml:"export" env:"EXPORT"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
}

// GeminiConfig selects the image backend.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Model is a registered model name: imagen-4 or nano-banana.
	Model   string `yaml:"model" env:"MODEL"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Project and Location select Vertex AI instead of the Gemini API.
	Project  string `yaml:"project" env:"PROJECT"`
	Location string `yaml:"location" env:"LOCATION"`
	// SafetySettings are the default content filters for Gemini image
	// models. YAML only.
	SafetySettings []SafetySettingConfig `yaml:"safety_settings"`
}

// SafetySettingConfig is one content filter, e.g.
// {category: HARM_CATEGORY_HARASSMENT, threshold: BLOCK_ONLY_HIGH}.
type SafetySettingConfig struct {
	Category  string `yaml:"category"`
	Threshold string `yaml:"threshold"`
}

// GenerationConfig shapes every generation request.
type GenerationConfig struct {
	// Prompt is the initial prompt text. Empty means designgen.DefaultPrompt.
	Prompt string `yaml:"prompt" env:"PROMPT"`
	// Timeout bounds one provider call; zero waits indefinitely.
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	AspectRatio    string        `yaml:"aspect_ratio" env:"ASPECT_RATIO"`
	OutputMIMEType string        `yaml:"output_mime_type" env:"OUTPUT_MIME_TYPE"`
	// Size is 1K or 2K for models with size control; empty leaves it to the model.
	Size string `yaml:"size" env:"SIZE"`
	// Temperature is passed to models that accept it; unset leaves it to the model.
	Temperature     *float32      `yaml:"temperature" env:"TEMPERATURE"`
	WaitOnRateLimit bool          `yaml:"wait_on_rate_limit" env:"WAIT_ON_RATE_LIMIT"`
	MaxWait         time.Duration `yaml:"max_wait" env:"MAX_WAIT"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// ExportConfig selects where exported designs go.
type ExportConfig struct {
	// Backend is "file" or "s3".
	Backend string `yaml:"backend" env:"BACKEND"`
	Dir     string `yaml:"dir" env:"DIR"`
	Bucket  string `yaml:"bucket" env:"BUCKET"`
	Prefix  string `yaml:"prefix" env:"PREFIX"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Name is the file name without extension.
	Name string `yaml:"name" env:"NAME"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, text
	Format string `yaml:"format" env:"FORMAT"`
}

const (
	BackendFile = "file"
	BackendS3   = "s3"
)

var (
	validBackends   = []string{BackendFile, BackendS3}
	validLogFormats = []string{"json", "text"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validImageSizes = []designgen.ImageSize{"", designgen.ImageSize1K, designgen.ImageSize2K}
	validCategories = []designgen.SafetyCategory{
		designgen.SafetyCategoryHarassment,
		designgen.SafetyCategoryHateSpeech,
		designgen.SafetyCategorySexuallyExplicit,
		designgen.SafetyCategoryDangerousContent,
	}
	validThresholds = []designgen.SafetyThreshold{
		designgen.SafetyThresholdBlockNone,
		designgen.SafetyThresholdBlockLowAndUp,
		designgen.SafetyThresholdBlockMedAndUp,
		designgen.SafetyThresholdBlockHighAndUp,
	}
	validAspectRatios = []designgen.AspectRatio{
		designgen.AspectRatioAuto,
		designgen.AspectRatio1x1,
		designgen.AspectRatio3x4,
		designgen.AspectRatio4x3,
		designgen.AspectRatio9x16,
		designgen.AspectRatio16x9,
	}
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	def := designgen.DefaultConfig()
	return &Config{
		Gemini: GeminiConfig{
			Model:    string(designgen.ModelImagen4),
			Location: "us-central1",
		},
		Generation: GenerationConfig{
			AspectRatio:    string(def.AspectRatio),
			OutputMIMEType: def.OutputMIMEType,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Export: ExportConfig{
			Backend: BackendFile,
			Dir:     "exports",
			Name:    designgen.DefaultExportName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if !lo.Contains(validBackends, c.Export.Backend) {
		errs = append(errs, fmt.Errorf("export.backend must be one of %v, got %q", validBackends, c.Export.Backend))
	}
	if c.Export.Backend == BackendS3 && c.Export.Bucket == "" {
		errs = append(errs, errors.New("export.bucket is required for the s3 backend"))
	}
	if c.Export.Backend == BackendFile && c.Export.Dir == "" {
		errs = append(errs, errors.New("export.dir is required for the file backend"))
	}
	if !lo.Contains(validLogFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v, got %q", validLogFormats, c.Log.Format))
	}
	if !lo.Contains(validLogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", validLogLevels, c.Log.Level))
	}
	if !lo.Contains(validAspectRatios, designgen.AspectRatio(c.Generation.AspectRatio)) {
		errs = append(errs, fmt.Errorf("generation.aspect_ratio %q is not supported", c.Generation.AspectRatio))
	}
	if c.Generation.OutputMIMEType != "" && !designgen.ValidMIMETypes[c.Generation.OutputMIMEType] {
		errs = append(errs, fmt.Errorf("generation.output_mime_type %q is not an image type", c.Generation.OutputMIMEType))
	}
	if !lo.Contains(validImageSizes, designgen.ImageSize(c.Generation.Size)) {
		errs = append(errs, fmt.Errorf("generation.size must be 1K or 2K, got %q", c.Generation.Size))
	}
	if t := c.Generation.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("generation.temperature must be between 0 and 2, got %v", *t))
	}
	for i, ss := range c.Gemini.SafetySettings {
		if !lo.Contains(validCategories, designgen.SafetyCategory(ss.Category)) {
			errs = append(errs, fmt.Errorf("gemini.safety_settings[%d].category %q is not supported", i, ss.Category))
		}
		if !lo.Contains(validThresholds, designgen.SafetyThreshold(ss.Threshold)) {
			errs = append(errs, fmt.Errorf("gemini.safety_settings[%d].threshold %q is not supported", i, ss.Threshold))
		}
	}
	if c.Generation.Timeout < 0 || c.Generation.MaxWait < 0 {
		errs = append(errs, errors.New("generation durations must not be negative"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	return errors.Join(errs...)
}

// RequestConfig returns the per-request generation config.
func (c *Config) RequestConfig() *designgen.GenerateConfig {
	cfg := designgen.DefaultConfigWithModel(designgen.Model(c.Gemini.Model))
	cfg.AspectRatio = designgen.AspectRatio(c.Generation.AspectRatio)
	if c.Generation.OutputMIMEType != "" {
		cfg.OutputMIMEType = c.Generation.OutputMIMEType
	}
	cfg.Size = designgen.ImageSize(c.Generation.Size)
	if c.Generation.Temperature != nil {
		cfg.Temperature = lo.ToPtr(*c.Generation.Temperature)
	}
	cfg.WaitOnRateLimit = c.Generation.WaitOnRateLimit
	cfg.MaxWaitDuration = c.Generation.MaxWait
	return cfg
}

// ProviderConfig returns the backend settings for the Gemini provider.
func (c *Config) ProviderConfig() *designgen.ProviderConfig {
	provider := designgen.ProviderGeminiAPI
	if c.Gemini.Project != "" {
		provider = designgen.ProviderVertexAI
	}
	return &designgen.ProviderConfig{
		Provider: provider,
		APIKey:   c.Gemini.APIKey,
		BaseURL:  c.Gemini.BaseURL,
		Project:  c.Gemini.Project,
		Location: c.Gemini.Location,
	}
}

// SafetySettings returns the configured default content filters.
func (c *Config) SafetySettings() []designgen.SafetySetting {
	return lo.Map(c.Gemini.SafetySettings, func(ss SafetySettingConfig, _ int) designgen.SafetySetting {
		return designgen.SafetySetting{
			Category:  designgen.SafetyCategory(ss.Category),
			Threshold: designgen.SafetyThreshold(ss.Threshold),
		}
	})
}

// InitialPrompt returns the configured prompt or designgen.DefaultPrompt.
func (c *Config) InitialPrompt() string {
	return lo.Ternary(c.Generation.Prompt != "", c.Generation.Prompt, designgen.DefaultPrompt)
}
