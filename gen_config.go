package designgen

import (
	"time"
)

// Model represents a specific image generation model.
type Model string

// ImageSize represents the output resolution for generated images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatioAuto AspectRatio = ""
)

// GenerateConfig holds configuration options for image generation.
type GenerateConfig struct {
	// Model to use for generation (if empty, uses manager's default)
	Model Model

	// Size of the output image (1K, 2K). Ignored by models without size control.
	Size ImageSize

	// AspectRatio of the output image. Print designs are square by default.
	AspectRatio AspectRatio

	// NumberOfImages to generate. The controller only ever shows the first.
	NumberOfImages int

	// OutputMIMEType requested from models that support it (e.g., "image/jpeg")
	OutputMIMEType string

	// Temperature controls randomness for models that accept it
	Temperature *float32

	// SafetySettings for content filtering
	SafetySettings []SafetySetting

	// WaitOnRateLimit, if true, causes the Manager to wait when rate limited.
	// If false, a RateLimitError is returned immediately.
	WaitOnRateLimit bool

	// MaxWaitDuration is the maximum time to wait when WaitOnRateLimit is true.
	// Zero means no limit.
	MaxWaitDuration time.Duration
}

// DefaultConfig returns the configuration used for T-shirt designs:
// one square JPEG from the default model.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Model:          ModelDefault,
		AspectRatio:    AspectRatio1x1,
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
	}
}

// DefaultConfigWithModel returns a default config with the specified model.
func DefaultConfigWithModel(model Model) *GenerateConfig {
	config := DefaultConfig()
	config.Model = model
	return config
}

func (s ImageSize) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
