package gemini

import "github.com/mhpenta/designgen"

var imagenAspectRatios = []designgen.AspectRatio{
	designgen.AspectRatio1x1,
	designgen.AspectRatio3x4,
	designgen.AspectRatio4x3,
	designgen.AspectRatio9x16,
	designgen.AspectRatio16x9,
}

// Imagen4Info is the model info for Imagen 4, the default design model.
var Imagen4Info = designgen.ModelInfo{
	Name:         string(designgen.ModelImagen4),
	Provider:     designgen.ProviderGeminiAPI,
	APIModelName: APIModelImagen4,

	Capabilities: designgen.ModelCapabilities{
		SupportsTextToImage: true,
		SupportsAspectRatio: true,
		SupportsOutputMIME:  true,
		MaxOutputImages:     4,
	},

	SupportedAspectRatios: imagenAspectRatios,

	RateLimits: designgen.RateLimits{
		RequestsPerMinute: 10,
	},

	Pricing: designgen.Pricing{
		ImageGenerationCost: 0.04,
	},
}

// NanoBananaInfo is the model info for Gemini 2.5 Flash Image (nano-banana).
var NanoBananaInfo = designgen.ModelInfo{
	Name:         string(designgen.ModelNanoBanana),
	Provider:     designgen.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana,

	Capabilities: designgen.ModelCapabilities{
		SupportsTextToImage:   true,
		SupportsAspectRatio:   true,
		SupportsSafetySetting: true,
		MaxOutputImages:       1,
	},

	SupportedAspectRatios: imagenAspectRatios,

	RateLimits: designgen.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500,
	},

	Pricing: designgen.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 30.00,
	},
}
