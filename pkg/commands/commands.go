package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"rmoflow/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "rmoflow",
		Short: base.Wrap80("Track RMO job applications from the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addGet(topLevel)
	addSignUp(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addBulkAdd(topLevel)
	addVersion(topLevel)
}
