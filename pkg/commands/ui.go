package commands

import (
	"context"

	"github.com/spf13/cobra"

	"rmoflow/pkg/runner/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the full-screen application tracker",
		Example: `
rmoflow ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.close()

			return tui.Run(context.Background(), tui.Deps{
				Store:    c.store,
				Blobs:    c.blobs,
				Identity: c.id,
				Log:      c.log,
				Policy:   c.cfg.DuplicatePolicy,
			})
		},
	}

	topLevel.AddCommand(cmd)
}
