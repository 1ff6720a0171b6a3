package designgen

// ModelCapabilities describes what features a model supports.
type ModelCapabilities struct {
	SupportsTextToImage   bool
	SupportsAspectRatio   bool
	SupportsOutputMIME    bool // Honors GenerateConfig.OutputMIMEType
	SupportsSafetySetting bool

	MaxOutputImages int // Max images generated per request
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
	ImageGenerationCost    float64 // Per image (if applicable)
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	// Identity
	Name         string   // Public model name (e.g., "imagen-4")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "imagen-4.0-generate-001")

	Capabilities ModelCapabilities

	SupportedAspectRatios []AspectRatio

	RateLimits RateLimits

	Pricing Pricing
}

// SupportsAspectRatio reports whether ratio may be requested from the model.
// AspectRatioAuto is always accepted.
func (mi *ModelInfo) SupportsAspectRatio(ratio AspectRatio) bool {
	if ratio == AspectRatioAuto || len(mi.SupportedAspectRatios) == 0 {
		return true
	}
	for _, r := range mi.SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
