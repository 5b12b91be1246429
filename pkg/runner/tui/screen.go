package tui

import (
	"sync"

	"rmoflow/pkg/pages"
	"rmoflow/pkg/router"
)

// screen is the renderer the page controllers draw into. Controllers render
// synchronously while a UI event is being dispatched, so the model reads
// these viewmodels on the next View pass.
type screen struct {
	mu sync.Mutex

	active router.Page
	fab    router.FAB

	dashboard pages.DashboardVM
	detail    pages.DetailVM
	book      pages.ExperienceBookVM
	documents pages.DocumentsVM
	settings  pages.SettingsVM
}

func newScreen() *screen {
	return &screen{}
}

func (s *screen) RenderDashboard(vm pages.DashboardVM) {
	s.mu.Lock()
	s.dashboard = vm
	s.mu.Unlock()
}

func (s *screen) RenderApplicationDetail(vm pages.DetailVM) {
	s.mu.Lock()
	s.detail = vm
	s.mu.Unlock()
}

func (s *screen) RenderExperienceBook(vm pages.ExperienceBookVM) {
	s.mu.Lock()
	s.book = vm
	s.mu.Unlock()
}

func (s *screen) RenderDocuments(vm pages.DocumentsVM) {
	s.mu.Lock()
	s.documents = vm
	s.mu.Unlock()
}

func (s *screen) RenderSettings(vm pages.SettingsVM) {
	s.mu.Lock()
	s.settings = vm
	s.mu.Unlock()
}

func (s *screen) SetActive(p router.Page) {
	s.mu.Lock()
	s.active = p
	s.mu.Unlock()
}

func (s *screen) SetFAB(f router.FAB) {
	s.mu.Lock()
	s.fab = f
	s.mu.Unlock()
}

func (s *screen) state() screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return screen{
		active:    s.active,
		fab:       s.fab,
		dashboard: s.dashboard,
		detail:    s.detail,
		book:      s.book,
		documents: s.documents,
		settings:  s.settings,
	}
}

// confirmGate answers controller confirmation prompts without blocking the
// update loop. The first Confirm for an action parks the message and returns
// false; once the user accepts, the model re-dispatches the original event
// with the gate armed and the second Confirm returns true.
type confirmGate struct {
	mu      sync.Mutex
	armed   bool
	pending string
}

func (g *confirmGate) Confirm(message string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.armed {
		g.armed = false
		g.pending = ""
		return true
	}
	g.pending = message
	return false
}

// take returns and clears the parked message, if any.
func (g *confirmGate) take() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == "" {
		return "", false
	}
	msg := g.pending
	g.pending = ""
	return msg, true
}

func (g *confirmGate) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *confirmGate) disarm() {
	g.mu.Lock()
	g.armed = false
	g.pending = ""
	g.mu.Unlock()
}
