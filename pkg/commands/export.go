package commands

import (
	"context"

	"github.com/spf13/cobra"

	"rmoflow/pkg/commands/options"
	"rmoflow/pkg/runner/backup"
)

func addExport(topLevel *cobra.Command) {
	ao := &options.AuthOptions{}

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "write every application to a backup file",
		Example: `
rmoflow export backup.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.close()

			ctx := context.Background()
			if err := c.signIn(ctx, ao); err != nil {
				return err
			}

			s := backup.Export{Service: c.svc, Path: args[0]}
			return output.HandleError(s.Do(ctx))
		},
	}

	options.AddAuthArgs(cmd, ao)

	topLevel.AddCommand(cmd)
}
