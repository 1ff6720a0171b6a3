package main

import (
	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/internal/log"
	"github.com/mhpenta/designgen/server"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the designer page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, injector, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv, err := do.Invoke[*server.Server](injector)
			if err != nil {
				return err
			}
			ctrl := do.MustInvoke[*designgen.Controller](injector)
			manager := do.MustInvoke[*designgen.Manager](injector)
			logger := log.FromContextOrDiscard(ctx)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				logger.Info("stopping designer")
				return closeAll(ctrl, manager)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.addr")
	return cmd
}
