// Package view derives render-ready data from cache snapshots plus filter
// state. Every function here is pure: same inputs, same output, byte for
// byte. Nothing in this package touches a store or a screen.
package view

import (
	"sort"
	"strings"
	"time"

	"rmoflow/pkg/job"
	"rmoflow/pkg/timeutil"
)

// SortKey selects one of the dashboard's mutually exclusive sort policies.
type SortKey string

const (
	// SortDefault keeps the subscription's own order (newest created first).
	SortDefault SortKey = "default"
	// SortClosingAsc keeps only jobs still open for applications, soonest
	// closing first.
	SortClosingAsc SortKey = "closing-asc"
	// SortFollowUpAsc keeps only jobs with an outstanding future follow-up,
	// soonest first.
	SortFollowUpAsc SortKey = "follow-up-asc"
	// SortClosedDesc keeps only terminally closed jobs, newest first.
	SortClosedDesc SortKey = "closed-desc"
)

// SortKeys maps each key to its dashboard label.
func SortKeys() map[SortKey]string {
	return map[SortKey]string{
		SortDefault:     "Recently Added",
		SortClosingAsc:  "Closing Soon",
		SortFollowUpAsc: "Follow-up Soon",
		SortClosedDesc:  "Recently Closed",
	}
}

// JobFilter is the dashboard's transient filter state. The zero value—empty
// strings—behaves like "all"/no filtering with the default sort.
type JobFilter struct {
	State     string
	Type      job.ApplicationType
	Status    job.Status
	RoleLevel job.RoleLevel
	Search    string
	SortBy    SortKey
}

// Reset returns the filter to its pristine "show everything" state.
func (f *JobFilter) Reset() {
	*f = JobFilter{State: "all", Type: "all", Status: "all", RoleLevel: "all", SortBy: SortDefault}
}

func all(v string) bool { return v == "" || v == "all" }

// Jobs filters and sorts a jobs snapshot for the dashboard table. The input
// slice is never mutated; jobs arrive ordered newest-created-first from the
// subscription and SortDefault preserves that order.
func Jobs(jobs []job.Job, f JobFilter, now time.Time) []job.Job {
	term := strings.ToLower(strings.TrimSpace(f.Search))

	kept := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if !all(f.State) && j.State != f.State {
			continue
		}
		if !all(string(f.Type)) && j.ApplicationType != f.Type {
			continue
		}
		if !all(string(f.Status)) && j.Status != f.Status {
			continue
		}
		if !all(string(f.RoleLevel)) && j.RoleLevel != f.RoleLevel {
			continue
		}
		if term != "" && !j.Matches(term) {
			continue
		}
		kept = append(kept, j)
	}

	today := timeutil.StartOfDay(now)
	switch f.SortBy {
	case SortClosingAsc:
		out := kept[:0:0]
		for _, j := range kept {
			if j.ClosingDate != nil && !j.ClosingDate.Before(today) {
				out = append(out, j)
			}
		}
		sort.SliceStable(out, func(i, k int) bool {
			return out[i].ClosingDate.Before(out[k].ClosingDate.Time)
		})
		return out
	case SortFollowUpAsc:
		out := kept[:0:0]
		for _, j := range kept {
			if j.FollowUpDate != nil && !j.FollowUpComplete && !j.FollowUpDate.Before(today) {
				out = append(out, j)
			}
		}
		sort.SliceStable(out, func(i, k int) bool {
			return out[i].FollowUpDate.Before(out[k].FollowUpDate.Time)
		})
		return out
	case SortClosedDesc:
		out := kept[:0:0]
		for _, j := range kept {
			if j.Status.IsClosed() {
				out = append(out, j)
			}
		}
		sort.SliceStable(out, func(i, k int) bool {
			return out[i].CreatedAt.After(out[k].CreatedAt.Time)
		})
		return out
	default:
		return kept
	}
}
