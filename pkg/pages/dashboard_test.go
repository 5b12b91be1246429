package pages

import (
	"testing"
	"time"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/job"
	"rmoflow/pkg/timeutil"
)

var pageNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func seedJobs(c *cache.Cache) {
	closing := timeutil.At(pageNow.Add(4 * time.Hour))
	c.SetJobs([]job.Job{
		{ID: "j1", Title: "ED Registrar", State: "NSW", Status: job.StatusApplied, ClosingDate: &closing},
		{ID: "j2", Title: "ICU Registrar", State: "VIC", Status: job.StatusIdentified},
		{ID: "j3", Title: "Surg RMO", State: "NSW", Status: job.StatusClosed},
	})
}

func newDashboard(t *testing.T) (*Dashboard, *fakeActions, *fakeRenderer, *fakePrompt, *navSpy, *events.Bus) {
	t.Helper()
	c := cache.New()
	seedJobs(c)
	acts := &fakeActions{}
	r := &fakeRenderer{}
	prompt := &fakePrompt{answer: true}
	nav := &navSpy{}
	d := &Dashboard{
		Actions:  acts,
		Cache:    c,
		Renderer: r,
		Prompt:   prompt,
		Navigate: nav.go_,
		Now:      func() time.Time { return pageNow },
	}
	bus := events.NewBus()
	if err := d.Mount("", bus.Binder()); err != nil {
		t.Fatal(err)
	}
	return d, acts, r, prompt, nav, bus
}

func TestDashboardInitialRender(t *testing.T) {
	_, _, r, _, _, _ := newDashboard(t)

	vm := r.dashboard
	if vm == nil {
		t.Fatal("no render")
	}
	if len(vm.Jobs) != 3 {
		t.Fatalf("jobs = %d", len(vm.Jobs))
	}
	if vm.Metrics.Active != 2 || vm.Metrics.Closed != 1 {
		t.Fatalf("metrics = %+v", vm.Metrics)
	}
	if len(vm.Reminders) != 1 || vm.Reminders[0].Job.ID != "j1" {
		t.Fatalf("reminders = %+v", vm.Reminders)
	}
}

func TestDashboardFiltering(t *testing.T) {
	_, _, r, _, _, bus := newDashboard(t)

	bus.Dispatch(events.UIEvent{Name: "filter", Target: "state", Value: "NSW"})
	if got := r.dashboard.Jobs; len(got) != 2 {
		t.Fatalf("NSW jobs = %d", len(got))
	}

	bus.Dispatch(events.UIEvent{Name: "search", Value: "surg"})
	got := r.dashboard.Jobs
	if len(got) != 1 || got[0].ID != "j3" {
		t.Fatalf("filtered = %+v", got)
	}

	bus.Dispatch(events.UIEvent{Name: "clear-filters", Value: ""})
	if got := r.dashboard.Jobs; len(got) != 3 {
		t.Fatalf("after reset = %d", len(got))
	}
}

func TestDashboardOpenNavigates(t *testing.T) {
	_, _, _, _, nav, bus := newDashboard(t)

	bus.Dispatch(events.UIEvent{Name: "open", Target: "j2"})
	if nav.last() != "applicationDetail/j2" {
		t.Fatalf("navigated to %q", nav.last())
	}

	bus.Dispatch(events.UIEvent{Name: "add"})
	if nav.last() != "applicationDetail/new" {
		t.Fatalf("navigated to %q", nav.last())
	}
}

func TestDashboardSelectionModeBulkDelete(t *testing.T) {
	_, acts, r, prompt, nav, bus := newDashboard(t)

	bus.Dispatch(events.UIEvent{Name: "select-mode"})
	if !r.dashboard.SelectionMode {
		t.Fatal("selection mode not armed")
	}

	// Card taps toggle selection instead of navigating.
	bus.Dispatch(events.UIEvent{Name: "open", Target: "j1"})
	bus.Dispatch(events.UIEvent{Name: "open", Target: "j2"})
	if len(nav.tokens) != 0 {
		t.Fatalf("navigated during selection: %v", nav.tokens)
	}
	if !r.dashboard.Selected["j1"] || !r.dashboard.Selected["j2"] {
		t.Fatalf("selected = %+v", r.dashboard.Selected)
	}

	// Tapping again deselects.
	bus.Dispatch(events.UIEvent{Name: "open", Target: "j2"})
	if r.dashboard.Selected["j2"] {
		t.Fatal("j2 still selected")
	}

	bus.Dispatch(events.UIEvent{Name: "delete-selected"})
	if prompt.asked != 1 {
		t.Fatalf("confirmations = %d", prompt.asked)
	}
	if len(acts.deletedJobIDs) != 1 || len(acts.deletedJobIDs[0]) != 1 || acts.deletedJobIDs[0][0] != "j1" {
		t.Fatalf("deleted = %v", acts.deletedJobIDs)
	}
	if r.dashboard.SelectionMode {
		t.Fatal("selection mode survived the delete")
	}
}

func TestDashboardBulkDeleteDeclined(t *testing.T) {
	_, acts, _, prompt, _, bus := newDashboard(t)
	prompt.answer = false

	bus.Dispatch(events.UIEvent{Name: "select-mode"})
	bus.Dispatch(events.UIEvent{Name: "select", Target: "j1"})
	bus.Dispatch(events.UIEvent{Name: "delete-selected"})

	if acts.called("DeleteJobs") != 0 {
		t.Fatal("declined confirmation still deleted")
	}
}

func TestDashboardDismountClearsSelection(t *testing.T) {
	d, _, r, _, _, bus := newDashboard(t)

	bus.Dispatch(events.UIEvent{Name: "select-mode"})
	bus.Dispatch(events.UIEvent{Name: "select", Target: "j1"})
	d.Dismount()

	bus2 := events.NewBus()
	if err := d.Mount("", bus2.Binder()); err != nil {
		t.Fatal(err)
	}
	if r.dashboard.SelectionMode || len(r.dashboard.Selected) != 0 {
		t.Fatalf("selection survived navigation: %+v", r.dashboard)
	}
}
