package commands

import (
	"context"

	"github.com/spf13/cobra"

	"rmoflow/pkg/commands/options"
	"rmoflow/pkg/runner/backup"
)

func addBulkAdd(topLevel *cobra.Command) {
	ao := &options.AuthOptions{}
	bo := &options.BulkOptions{}

	cmd := &cobra.Command{
		Use:   "bulk-add <path>",
		Short: "append applications from a backup file, skipping duplicates",
		Example: `
rmoflow bulk-add shared.json
rmoflow bulk-add shared.json --duplicates insert
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

			s := backup.BulkAdd{
				Service: c.svc,
				Path:    args[0],
				Policy:  bo.DuplicatePolicy(c.cfg.DuplicatePolicy),
			}
			return output.HandleError(s.Do(ctx))
		},
	}

	options.AddAuthArgs(cmd, ao)
	options.AddBulkArgs(cmd, bo)

	topLevel.AddCommand(cmd)
}
