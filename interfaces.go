package designgen

import "context"

// ImageGenerator is the backend interface for image generation models.
// Implement this interface to add support for new models or providers.
//
// The first model returned by Models() is considered the default model.
type ImageGenerator interface {
	// Generate creates images from a text prompt.
	Generate(ctx context.Context, prompt string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Models returns the model definitions supported by this provider.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the generator.
	Close() error
}

// ImageProvider is the single asynchronous call a Controller makes per
// accepted generation. Failures should carry a message fit for the user,
// ideally as a *ProviderError.
type ImageProvider interface {
	RequestImage(ctx context.Context, prompt string) (ImageRef, error)
}

// ProviderFunc adapts an ordinary function to the ImageProvider interface.
type ProviderFunc func(ctx context.Context, prompt string) (ImageRef, error)

// RequestImage calls f(ctx, prompt).
func (f ProviderFunc) RequestImage(ctx context.Context, prompt string) (ImageRef, error) {
	return f(ctx, prompt)
}

// Storage is an interface for persisting exported designs.
// This is a minimal interface designed for easy integration - implementations
// can wrap existing storage clients (local disk, S3, etc.) with this interface.
type Storage interface {
	// SaveFile saves image data to storage and returns a URL for it.
	// The path should include the full object path (e.g., "designs/tshirt-design.jpeg").
	// The contentType is the image's MIME type (e.g., "image/jpeg").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}
