package pages

import (
	"context"
	"fmt"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/job"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/view"
)

// Dashboard is the landing page: metric cards, the filterable applications
// table, the calendar strip, and the urgent banner. Selection mode arms
// bulk delete and always disarms on navigation away.
type Dashboard struct {
	Actions  Actions
	Cache    *cache.Cache
	Renderer Renderer
	Prompt   Prompter
	Navigate func(token string)
	Now      clock

	filter        view.JobFilter
	selectionMode bool
	selected      map[string]bool
}

func (d *Dashboard) Mount(_ string, bind *events.Binder) error {
	if d.selected == nil {
		d.filter.Reset()
		d.selected = make(map[string]bool)
	}

	bind.On("search", func(ev events.UIEvent) {
		d.filter.Search = ev.Value
		d.Refresh()
	})
	bind.On("filter", func(ev events.UIEvent) {
		switch ev.Target {
		case "state":
			d.filter.State = ev.Value
		case "type":
			d.filter.Type = job.ApplicationType(ev.Value)
		case "status":
			d.filter.Status = job.Status(ev.Value)
		case "roleLevel":
			d.filter.RoleLevel = job.RoleLevel(ev.Value)
		}
		d.Refresh()
	})
	bind.On("sort", func(ev events.UIEvent) {
		d.filter.SortBy = view.SortKey(ev.Value)
		d.Refresh()
	})
	bind.On("clear-filters", func(events.UIEvent) {
		d.filter.Reset()
		d.Refresh()
	})

	bind.On("open", func(ev events.UIEvent) {
		if d.selectionMode {
			d.toggleSelected(ev.Target)
			return
		}
		d.Navigate("applicationDetail/" + ev.Target)
	})
	bind.On("add", func(events.UIEvent) {
		d.Navigate("applicationDetail/new")
	})
	bind.On("follow-up-done", func(ev events.UIEvent) {
		// The cache refreshes through the subscription, not here.
		_ = d.Actions.SetFollowUpComplete(context.Background(), ev.Target, ev.Value != "false")
	})

	bind.On("select-mode", func(events.UIEvent) {
		d.selectionMode = !d.selectionMode
		if !d.selectionMode {
			d.selected = make(map[string]bool)
		}
		d.Refresh()
	})
	bind.On("select", func(ev events.UIEvent) {
		d.toggleSelected(ev.Target)
	})
	bind.On("delete-selected", func(events.UIEvent) {
		d.deleteSelected()
	})

	d.Refresh()
	return nil
}

// Dismount leaves selection mode so a return visit starts clean.
func (d *Dashboard) Dismount() {
	d.selectionMode = false
	d.selected = make(map[string]bool)
}

func (d *Dashboard) Refresh() {
	now := orNow(d.Now)()
	jobs := d.Cache.Jobs()
	vm := DashboardVM{
		Metrics:       view.ComputeMetrics(jobs, now),
		Jobs:          view.Jobs(jobs, d.filter, now),
		Calendar:      view.CalendarEvents(jobs, now),
		Reminders:     remind.UrgentJobs(jobs, now),
		Filter:        d.filter,
		SelectionMode: d.selectionMode,
		Selected:      d.selected,
	}
	d.Renderer.RenderDashboard(vm)
}

func (d *Dashboard) toggleSelected(id string) {
	if d.selected[id] {
		delete(d.selected, id)
	} else {
		d.selected[id] = true
	}
	d.Refresh()
}

func (d *Dashboard) deleteSelected() {
	if len(d.selected) == 0 {
		return
	}
	msg := fmt.Sprintf("Delete %d selected applications? This cannot be undone.", len(d.selected))
	if d.Prompt != nil && !d.Prompt.Confirm(msg) {
		return
	}
	ids := make([]string, 0, len(d.selected))
	for id := range d.selected {
		ids = append(ids, id)
	}
	if err := d.Actions.DeleteJobs(context.Background(), ids); err != nil {
		return
	}
	d.selectionMode = false
	d.selected = make(map[string]bool)
	d.Refresh()
}
