package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

// Stamped at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false
	format := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the rmoflow build version.",
		Example: `
rmoflow version
rmoflow version -s
rmoflow version -o yaml
`,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Print(goversion.FuncWithOutput(shortened, version, commit, date, format))
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Version number only, without commit or build date.")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "Format: 'json' or 'yaml'.")

	topLevel.AddCommand(cmd)
}
