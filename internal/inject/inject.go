// Package inject wires the designgen process from a loaded config.
package inject

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/config"
	"github.com/mhpenta/designgen/internal/log"
	"github.com/mhpenta/designgen/metrics"
	"github.com/mhpenta/designgen/provider/gemini"
	"github.com/mhpenta/designgen/server"
	"github.com/mhpenta/designgen/storage/filestore"
	"github.com/mhpenta/designgen/storage/s3store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do"
)

const metricsNamespace = "designgen"

// Setup registers every service lazily; nothing talks to AWS or Gemini
// until it is first invoked.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)
	do.ProvideValue[*slog.Logger](injector, logger)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[designgen.Storage](injector, NewStorage)

	do.Provide[designgen.ImageGenerator](injector, func(i *do.Injector) (designgen.ImageGenerator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		gen, err := gemini.New(ctx, cfg.ProviderConfig())
		if err != nil {
			return nil, err
		}
		if settings := cfg.SafetySettings(); len(settings) > 0 {
			gen.SetSafetySettings(settings)
		}
		return gen, nil
	})
	do.Provide[*designgen.Manager](injector, NewManager)

	do.Provide[*prometheus.Registry](injector, func(i *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		return reg, nil
	})
	do.Provide[*metrics.Collector](injector, func(i *do.Injector) (*metrics.Collector, error) {
		return metrics.NewCollector(metricsNamespace, do.MustInvoke[*prometheus.Registry](i)), nil
	})

	do.Provide[*designgen.Controller](injector, NewController)
	do.Provide[*server.Server](injector, NewServer)

	return injector
}

// NewStorage returns the export sink named by export.backend.
func NewStorage(i *do.Injector) (designgen.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i).Export
	switch cfg.Backend {
	case config.BackendS3:
		client, err := do.Invoke[*s3.Client](i)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return s3store.New(client, cfg.Bucket, cfg.Prefix, cfg.BaseURL), nil
	case config.BackendFile:
		return filestore.New(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
	}
}

func NewManager(i *do.Injector) (*designgen.Manager, error) {
	gen, err := do.Invoke[designgen.ImageGenerator](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create image provider: %w", err)
	}
	cfg := do.MustInvoke[*config.Config](i)
	return designgen.NewManager(gen,
		designgen.WithLogger(do.MustInvoke[*slog.Logger](i)),
		designgen.WithDefaultModel(designgen.Model(cfg.Gemini.Model)),
		designgen.WithRequestConfig(cfg.RequestConfig()),
	), nil
}

func NewController(i *do.Injector) (*designgen.Controller, error) {
	manager, err := do.Invoke[*designgen.Manager](i)
	if err != nil {
		return nil, err
	}
	cfg := do.MustInvoke[*config.Config](i)
	return designgen.NewController(manager,
		designgen.WithControllerLogger(do.MustInvoke[*slog.Logger](i)),
		designgen.WithPrompt(cfg.InitialPrompt()),
		designgen.WithTimeout(cfg.Generation.Timeout),
		designgen.WithObserver(do.MustInvoke[*metrics.Collector](i).Observe),
	), nil
}

func NewServer(i *do.Injector) (*server.Server, error) {
	ctrl, err := do.Invoke[*designgen.Controller](i)
	if err != nil {
		return nil, err
	}
	storage, err := do.Invoke[designgen.Storage](i)
	if err != nil {
		return nil, err
	}
	cfg := do.MustInvoke[*config.Config](i)
	return server.New(ctrl,
		server.Config{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		server.WithLogger(do.MustInvoke[*slog.Logger](i)),
		server.WithStorage(storage, cfg.Export.Backend),
		server.WithExportName(cfg.Export.Name),
		server.WithMetrics(do.MustInvoke[*metrics.Collector](i), do.MustInvoke[*prometheus.Registry](i)),
	)
}
