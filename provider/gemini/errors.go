package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mhpenta/designgen"
	"google.golang.org/genai"
)

// classifyError converts an SDK error into the error the rest of the
// module understands: a *RateLimitError for quota failures and a
// *ProviderError with a short, user-facing message for everything else.
// Context errors are passed through untouched.
func classifyError(err error, model string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return designgen.NewProviderError("could not reach the image provider: "+err.Error(), err)
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return &designgen.RateLimitError{
			RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
			LimitType:  "requests",
			Model:      model,
			Err:        designgen.NewProviderError("quota exceeded", err),
		}
	case isInvalidKey(apiErr):
		return designgen.NewProviderError("invalid API key", err)
	case apiErr.Code == http.StatusForbidden:
		return designgen.NewProviderError("permission denied by the image provider", err)
	case apiErr.Code >= http.StatusInternalServerError:
		return designgen.NewProviderError("the image provider is unavailable, try again later", err)
	}

	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return designgen.NewProviderError(msg, err)
	}
	return designgen.NewProviderError("", err)
}

func isInvalidKey(apiErr genai.APIError) bool {
	if apiErr.Code == http.StatusUnauthorized || apiErr.Status == "UNAUTHENTICATED" {
		return true
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key")
}

func malformedResponse(err error) error {
	return designgen.NewProviderError("malformed response from the image provider", err)
}
