package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mhpenta/designgen/config"
	"github.com/mhpenta/designgen/internal/inject"
	"github.com/mhpenta/designgen/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "designgen",
		Short:         "Generate T-shirt designs from text prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts), newGenerateCmd(opts), newModelsCmd(opts))
	return cmd
}

// setup loads the config and builds the injector. The returned context
// carries the process logger.
func (o *rootOptions) setup(ctx context.Context) (context.Context, *config.Config, *do.Injector, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	logger := log.New(os.Stderr, log.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx = log.NewContext(ctx, logger)

	return ctx, cfg, inject.Setup(ctx, cfg), nil
}

// closeAll closes in argument order and joins the errors. Callers pass the
// controller before the manager it calls so no request is in flight when
// the manager goes.
func closeAll(closers ...io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
