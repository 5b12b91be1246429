package view

import (
	"time"

	"rmoflow/pkg/job"
	"rmoflow/pkg/timeutil"
)

// Metrics are the dashboard's headline counters.
type Metrics struct {
	Active       int
	Closed       int
	ClosingSoon  int // closing within the next 7 days
	FollowUpSoon int // follow-up pending within the next 7 days
}

// ComputeMetrics tallies the dashboard counters from a jobs snapshot.
func ComputeMetrics(jobs []job.Job, now time.Time) Metrics {
	var m Metrics
	for _, j := range jobs {
		if j.Status.IsClosed() {
			m.Closed++
		} else {
			m.Active++
		}
		if j.ClosingDate != nil && timeutil.WithinDays(j.ClosingDate.Time, now, 7) {
			m.ClosingSoon++
		}
		if j.FollowUpDate != nil && !j.FollowUpComplete && timeutil.WithinDays(j.FollowUpDate.Time, now, 7) {
			m.FollowUpSoon++
		}
	}
	return m
}
