package options

import (
	"github.com/spf13/cobra"

	"rmoflow/pkg/app"
)

// BulkOptions configure duplicate handling for bulk add.
type BulkOptions struct {
	Policy string
	Force  bool
}

func AddBulkArgs(cmd *cobra.Command, o *BulkOptions) {
	cmd.Flags().StringVar(&o.Policy, "duplicates", "",
		"Duplicate policy: skip or insert. Defaults to the configured policy.")
}

func AddForceArg(cmd *cobra.Command, o *BulkOptions) {
	cmd.Flags().BoolVarP(&o.Force, "force", "f", false,
		"Skip the confirmation prompt.")
}

// DuplicatePolicy resolves the flag against the configured default.
func (o *BulkOptions) DuplicatePolicy(fallback app.DuplicatePolicy) app.DuplicatePolicy {
	if o.Policy == "" {
		return fallback
	}
	return app.DuplicatePolicy(o.Policy)
}
