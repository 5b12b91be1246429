package commands

import (
	"context"

	"github.com/spf13/cobra"

	"rmoflow/pkg/commands/options"
	"rmoflow/pkg/runner/backup"
)

func addImport(topLevel *cobra.Command) {
	ao := &options.AuthOptions{}
	bo := &options.BulkOptions{}

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "replace every application with the contents of a backup file",
		Example: `
rmoflow import backup.json
rmoflow import backup.json --force
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

			s := backup.Import{Service: c.svc, Path: args[0], Force: bo.Force}
			return output.HandleError(s.Do(ctx))
		},
	}

	options.AddAuthArgs(cmd, ao)
	options.AddForceArg(cmd, bo)

	topLevel.AddCommand(cmd)
}
