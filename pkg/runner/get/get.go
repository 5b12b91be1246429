package get

import (
	"context"
	"errors"
	"time"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/printers"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/view"
)

// Get lists applications from a populated cache to the terminal.
type Get struct {
	ShowID   bool
	Calendar bool
	Filter   view.JobFilter
	Cache    *cache.Cache
}

func (n *Get) Do(ctx context.Context) error {
	if n.Cache == nil {
		return errors.New("can not get, no cache")
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	now := time.Now()

	jobs := n.Cache.Jobs()
	filtered := view.Jobs(jobs, n.Filter, now)

	pp.NewLine()
	pp.Urgent(remind.UrgentJobs(jobs, now)...)
	pp.TitleWithCount("Applications", len(filtered))
	pp.Jobs(filtered...)
	pp.Metrics(view.ComputeMetrics(jobs, now))

	if n.Calendar {
		pp.NewLine()
		pp.Calendar(now, view.CalendarEvents(filtered, now)...)
	}
	return nil
}
