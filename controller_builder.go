package designgen

import (
	"log/slog"
	"time"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets a structured logger for the controller.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrompt sets the initial prompt text. An empty prompt is allowed; the
// controller then ignores Generate until a prompt is set.
func WithPrompt(prompt string) ControllerOption {
	return func(c *Controller) {
		c.prompt = prompt
	}
}

// WithTimeout bounds each provider call. A call that outlives it resolves
// as Failed with ErrGenerationTimeout's message. Zero, the default, means
// the controller waits as long as the provider takes.
func WithTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.timeout = timeout
	}
}

// WithObserver subscribes fn before the controller is returned.
func WithObserver(fn Observer) ControllerOption {
	return func(c *Controller) {
		c.nextSubID++
		c.subs = append(c.subs, subscription{id: c.nextSubID, fn: fn})
	}
}

// WithIDGenerator replaces the generation ID source (uuid.NewString by default).
func WithIDGenerator(newID func() string) ControllerOption {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}
