package designgen

import (
	"math"
	"unicode/utf8"
)

// TokenEstimator predicts the token cost of an image request for rate limiting.
type TokenEstimator interface {
	EstimateTokens(prompt string, numImages int) int
}

// SimpleTokenEstimator charges roughly four characters per prompt token
// plus a flat cost per requested image.
type SimpleTokenEstimator struct {
	SafetyMargin   float64
	TokensPerImage int
}

// DefaultTokensPerImage is the output cost of one ~1024px image on Gemini image models.
const DefaultTokensPerImage = 1290

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin:   1.2,
		TokensPerImage: DefaultTokensPerImage,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(prompt string, numImages int) int {
	numImages = max(numImages, 1)
	imageTokens := numImages * e.TokensPerImage

	if prompt == "" {
		return imageTokens
	}

	promptTokens := float64(utf8.RuneCountInString(prompt)) / 4.0 * e.SafetyMargin
	return int(math.Ceil(promptTokens)) + 3 + imageTokens
}
