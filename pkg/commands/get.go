package commands

import (
	"context"

	"github.com/spf13/cobra"

	"rmoflow/pkg/commands/options"
	"rmoflow/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	ao := &options.AuthOptions{}
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	calendar := false

	cmd := &cobra.Command{
		Use:   "get",
		Short: "list tracked applications",
		Example: `
rmoflow get
rmoflow get --state NSW --sort closing-asc
rmoflow get --search surgical --calendar
`,
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

			s := get.Get{
				ShowID:   io.ShowID,
				Calendar: calendar,
				Filter:   fo.JobFilter(),
				Cache:    c.cache,
			}
			return output.HandleError(s.Do(ctx))
		},
	}

	options.AddAuthArgs(cmd, ao)
	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	cmd.Flags().BoolVar(&calendar, "calendar", false, "Print this month's calendar of deadlines.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
