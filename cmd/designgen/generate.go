package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate one design and export it",
		Long: "Generate one design from the prompt (or generation.prompt when none is given)\n" +
			"and save it to the configured export backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, injector, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()

			ctrl, err := do.Invoke[*designgen.Controller](injector)
			if err != nil {
				return err
			}
			defer func() { _ = closeAll(ctrl, do.MustInvoke[*designgen.Manager](injector)) }()

			storage, err := do.Invoke[designgen.Storage](injector)
			if err != nil {
				return err
			}

			if prompt := strings.TrimSpace(strings.Join(args, " ")); prompt != "" {
				ctrl.SetPrompt(prompt)
			}
			if !ctrl.Generate() {
				return errors.New("nothing to generate: the prompt is empty")
			}

			logger := log.FromContextOrDiscard(ctx)
			logger.Info("generating design", "prompt", ctrl.Prompt())

			if err := ctrl.Wait(ctx); err != nil {
				return err
			}
			view := ctrl.Snapshot()
			if view.HasError() {
				return errors.New(view.ErrorMessage)
			}

			if name == "" {
				name = cfg.Export.Name
			}
			result, err := ctrl.Export(ctx, storage, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "file name without extension (default export.name)")
	return cmd
}
