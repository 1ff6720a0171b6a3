package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mhpenta/designgen"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newModelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the image models the configured provider serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, injector, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()

			manager, err := do.Invoke[*designgen.Manager](injector)
			if err != nil {
				return err
			}
			defer manager.Close()

			return writeModels(cmd, manager)
		},
	}
}

func writeModels(cmd *cobra.Command, manager *designgen.Manager) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPROVIDER\tAPI MODEL\tRPM")
	for _, model := range manager.ListModels() {
		info, ok := manager.GetModelInfo(model)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", info.Name, info.Provider, info.APIModelName, info.RateLimits.RequestsPerMinute)
	}
	return w.Flush()
}
