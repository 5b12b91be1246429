// Package remind derives the set of jobs needing attention right now. It is
// recomputed synchronously on every jobs-cache update and drives the header
// badge plus the reminders dropdown.
package remind

import (
	"time"

	"rmoflow/pkg/job"
	"rmoflow/pkg/timeutil"
)

// Reason explains why a job is urgent.
type Reason string

const (
	ReasonClosing  Reason = "closes today"
	ReasonFollowUp Reason = "follow-up due today"
)

// Urgent pairs a qualifying job with its reason. A job urgent for both
// reasons appears once, with the closing reason winning.
type Urgent struct {
	Job    job.Job
	Reason Reason
}

// UrgentJobs returns the jobs whose closing date has arrived, or whose
// follow-up is due and not done, as of now. Jobs in a terminal status never
// qualify, whatever their dates say, and a job with no closing date is never
// closing soon. The boundary is inclusive of the whole current day: a job
// closing at 23:59:59.999 tonight is urgent, one closing at midnight
// tomorrow is not.
func UrgentJobs(jobs []job.Job, now time.Time) []Urgent {
	end := timeutil.EndOfDay(now)
	var out []Urgent
	for _, j := range jobs {
		if j.Status.IsClosed() {
			continue
		}
		switch {
		case j.ClosingDate != nil && !j.ClosingDate.After(end):
			out = append(out, Urgent{Job: j, Reason: ReasonClosing})
		case j.FollowUpDate != nil && !j.FollowUpComplete && !j.FollowUpDate.After(end):
			out = append(out, Urgent{Job: j, Reason: ReasonFollowUp})
		}
	}
	return out
}
