package designgen

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrEmptyPrompt          = errors.New("prompt cannot be empty")
	ErrEmptyImageData       = errors.New("image data cannot be empty")
	ErrInvalidMIMEType      = errors.New("invalid or unsupported MIME type")
	ErrImageTooLarge        = errors.New("image data exceeds maximum size")
	ErrUnsupportedAspect    = errors.New("aspect ratio not supported by model")
	ErrInvalidNumberOfImage = errors.New("number of images out of range")
)

// MaxImageSize is the maximum image size in bytes accepted as an ImageRef (20MB).
const MaxImageSize = 20 * 1024 * 1024

// ValidMIMETypes contains the supported image MIME types
var ValidMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ValidatePrompt validates a text prompt. Only the empty string is
// rejected; content is left to the provider.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// ValidateImageData validates raw image bytes before they become an ImageRef.
func ValidateImageData(data []byte, mimeType string) error {
	if len(data) == 0 {
		return ErrEmptyImageData
	}
	if len(data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(data), MaxImageSize)
	}
	if mimeType == "" {
		return fmt.Errorf("%w: MIME type is required", ErrInvalidMIMEType)
	}
	if !ValidMIMETypes[mimeType] {
		return fmt.Errorf("%w: %s", ErrInvalidMIMEType, mimeType)
	}
	return nil
}

// ValidateConfig checks a request config against a model's constraints.
func ValidateConfig(config *GenerateConfig, info *ModelInfo) error {
	if config == nil || info == nil {
		return nil
	}
	if !info.SupportsAspectRatio(config.AspectRatio) {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedAspect, config.AspectRatio, info.Name)
	}
	maxImages := info.Capabilities.MaxOutputImages
	if config.NumberOfImages < 0 || (maxImages > 0 && config.NumberOfImages > maxImages) {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidNumberOfImage, config.NumberOfImages, maxImages)
	}
	return nil
}
