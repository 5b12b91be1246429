package options

import (
	"github.com/spf13/cobra"

	"rmoflow/pkg/job"
	"rmoflow/pkg/view"
)

// FilterOptions capture the dashboard filter set as flags.
type FilterOptions struct {
	State     string
	Type      string
	Status    string
	RoleLevel string
	Search    string
	Sort      string
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVar(&o.State, "state", "all",
		"Filter by state, e.g. NSW.")
	cmd.Flags().StringVar(&o.Type, "type", "all",
		"Filter by application type.")
	cmd.Flags().StringVar(&o.Status, "status", "all",
		"Filter by status.")
	cmd.Flags().StringVar(&o.RoleLevel, "role", "all",
		"Filter by role level.")
	cmd.Flags().StringVarP(&o.Search, "search", "q", "",
		"Match applications containing the given text.")
	cmd.Flags().StringVar(&o.Sort, "sort", string(view.SortDefault),
		"Sort order: default, closing-asc, follow-up-asc, closed-desc.")
}

// JobFilter converts the flags to the filter the view layer evaluates.
func (o *FilterOptions) JobFilter() view.JobFilter {
	return view.JobFilter{
		State:     o.State,
		Type:      job.ApplicationType(o.Type),
		Status:    job.Status(o.Status),
		RoleLevel: job.RoleLevel(o.RoleLevel),
		Search:    o.Search,
		SortBy:    view.SortKey(o.Sort),
	}
}
