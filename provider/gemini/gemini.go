// Package gemini provides an ImageGenerator implementation using Google's
// generative models through the official Go SDK:
// https://github.com/googleapis/go-genai
//
// Imagen models are called through the images endpoint; Gemini image models
// are called through generateContent with image output enabled. Both the
// Gemini API and Vertex AI backends are supported.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mhpenta/designgen"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelImagen4 is the actual API name for Imagen 4
	APIModelImagen4 = "imagen-4.0-generate-001"

	// APIModelNanoBanana is the actual API name for Gemini 2.5 Flash Image
	APIModelNanoBanana = "gemini-2.5-flash-image"
)

// GeminiGenerator implements ImageGenerator using Google's generative APIs.
type GeminiGenerator struct {
	client         *genai.Client
	provider       designgen.Provider
	safetySettings []*genai.SafetySetting
	mu             sync.RWMutex
}

// Ensure GeminiGenerator implements the interface.
var _ designgen.ImageGenerator = (*GeminiGenerator)(nil)

// New creates a new GeminiGenerator from a ProviderConfig. A config with a
// Project selects the Vertex AI backend.
func New(ctx context.Context, config *designgen.ProviderConfig) (*GeminiGenerator, error) {
	if config == nil {
		config = &designgen.ProviderConfig{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	provider := designgen.ProviderGeminiAPI

	if config.Project != "" || config.Provider == designgen.ProviderVertexAI {
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = config.Project
		clientCfg.Location = config.Location
		provider = designgen.ProviderVertexAI
	} else if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars

	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{
		client:   client,
		provider: provider,
	}, nil
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	return New(ctx, &designgen.ProviderConfig{
		Provider: designgen.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// SetSafetySettings configures default safety settings for Gemini image models.
// These can be overridden per-request via GenerateConfig.SafetySettings.
func (g *GeminiGenerator) SetSafetySettings(settings []designgen.SafetySetting) *GeminiGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.safetySettings = convertSafetySettings(settings)
	return g
}

// Generate creates images from a text prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config *designgen.GenerateConfig) (*designgen.GenerateResult, error) {
	if err := designgen.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	if config == nil {
		config = designgen.DefaultConfig()
	}

	modelName := g.resolveModel(config)
	if isImagenModel(modelName) {
		return g.generateImages(ctx, modelName, prompt, config)
	}
	return g.generateContent(ctx, modelName, prompt, config)
}

func (g *GeminiGenerator) generateImages(ctx context.Context, modelName, prompt string, config *designgen.GenerateConfig) (*designgen.GenerateResult, error) {
	imgConfig := &genai.GenerateImagesConfig{
		NumberOfImages: int32(max(config.NumberOfImages, 1)),
		AspectRatio:    config.AspectRatio.String(),
		OutputMIMEType: config.OutputMIMEType,
		// Surfaces the filter reason when an image is withheld.
		IncludeRAIReason: true,
	}

	resp, err := g.client.Models.GenerateImages(ctx, modelName, prompt, imgConfig)
	if err != nil {
		return nil, classifyError(err, modelName)
	}

	return parseImagesResponse(resp)
}

func (g *GeminiGenerator) generateContent(ctx context.Context, modelName, prompt string, config *designgen.GenerateConfig) (*designgen.GenerateResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName, contents, g.buildGenerateContentConfig(config))
	if err != nil {
		return nil, classifyError(err, modelName)
	}

	return parseContentResponse(result)
}

// Models returns the model definitions supported by this provider.
// The first model (Imagen 4) is the default.
func (g *GeminiGenerator) Models() []designgen.ModelInfo {
	models := []designgen.ModelInfo{Imagen4Info, NanoBananaInfo}
	for i := range models {
		models[i].Provider = g.provider
	}
	return models
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel determines which API model name to use.
// Falls back to the first model (default) if none specified.
func (g *GeminiGenerator) resolveModel(config *designgen.GenerateConfig) string {
	if config != nil && config.Model != "" && config.Model != designgen.ModelDefault {
		return string(config.Model)
	}
	return Imagen4Info.APIModelName
}

func isImagenModel(modelName string) bool {
	return strings.HasPrefix(modelName, "imagen-")
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func (g *GeminiGenerator) buildGenerateContentConfig(config *designgen.GenerateConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	imageConfig := &genai.ImageConfig{}
	if config.AspectRatio != "" {
		imageConfig.AspectRatio = config.AspectRatio.String()
	}
	if config.Size != "" {
		imageConfig.ImageSize = config.Size.String()
	}
	genConfig.ImageConfig = imageConfig

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	// Safety settings: per-request overrides provider defaults
	g.mu.RLock()
	defaults := g.safetySettings
	g.mu.RUnlock()
	if len(config.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(config.SafetySettings)
	} else if len(defaults) > 0 {
		genConfig.SafetySettings = defaults
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []designgen.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseImagesResponse converts an Imagen response to our result type.
func parseImagesResponse(resp *genai.GenerateImagesResponse) (*designgen.GenerateResult, error) {
	if resp == nil {
		return nil, malformedResponse(errors.New("empty response from model"))
	}

	result := &designgen.GenerateResult{
		Images: make([]designgen.GeneratedImage, 0, len(resp.GeneratedImages)),
	}

	var reasons []string
	for _, gi := range resp.GeneratedImages {
		if gi == nil {
			continue
		}
		if gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			if gi.RAIFilteredReason != "" {
				reasons = append(reasons, gi.RAIFilteredReason)
			}
			continue
		}
		result.Images = append(result.Images, designgen.GeneratedImage{
			Data:          gi.Image.ImageBytes,
			MIMEType:      mimeOrDefault(gi.Image.MIMEType),
			Index:         len(result.Images),
			RevisedPrompt: gi.EnhancedPrompt,
		})
	}
	result.FilteredReason = strings.Join(reasons, "; ")

	return result, nil
}

// parseContentResponse converts a generateContent response to our result type.
func parseContentResponse(resp *genai.GenerateContentResponse) (*designgen.GenerateResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return &designgen.GenerateResult{FilteredReason: string(resp.PromptFeedback.BlockReason)}, nil
		}
		return nil, malformedResponse(errors.New("empty response from model"))
	}

	result := &designgen.GenerateResult{
		Images: make([]designgen.GeneratedImage, 0),
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
				result.FilteredReason = string(candidate.FinishReason)
			}
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			if part.Text != "" {
				result.Text += part.Text
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Images = append(result.Images, designgen.GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: mimeOrDefault(part.InlineData.MIMEType),
					Index:    len(result.Images),
				})
			}
		}
	}

	if resp.UsageMetadata != nil {
		result.UsageMetadata = &designgen.UsageMetadata{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			ImageCount:       len(result.Images),
		}
	}

	return result, nil
}

func mimeOrDefault(mimeType string) string {
	if mimeType == "" {
		return "image/png"
	}
	return mimeType
}
