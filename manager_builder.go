package designgen

import (
	"log/slog"
)

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets a structured logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaultModel sets the default model used when config.Model is empty.
func WithDefaultModel(model Model) ManagerOption {
	return func(m *Manager) {
		m.defaultModel = model
	}
}

// WithRequestConfig sets the config used by RequestImage.
func WithRequestConfig(config *GenerateConfig) ManagerOption {
	return func(m *Manager) {
		if config != nil {
			m.requestConfig = config
		}
	}
}

// WithTokenEstimator replaces the estimator used for rate limiting.
func WithTokenEstimator(estimator TokenEstimator) ManagerOption {
	return func(m *Manager) {
		m.tokenEstimator = estimator
	}
}

// NewManager creates a Manager with the given provider and options.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	manager := designgen.NewManager(gen)
//	controller := designgen.NewController(manager)
//
// With options:
//
//	manager := designgen.NewManager(gen,
//	    designgen.WithLogger(slog.Default()),
//	    designgen.WithDefaultModel(designgen.ModelNanoBanana),
//	)
func NewManager(defaultProvider ImageGenerator, opts ...ManagerOption) *Manager {
	m := New()
	m.RegisterProvider(defaultProvider)

	if models := defaultProvider.Models(); len(models) > 0 {
		m.defaultModel = Model(models[0].Name)
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}
