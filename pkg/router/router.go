// Package router owns page navigation. Every navigation disposes the
// outgoing page's event bindings before the incoming page mounts, so at
// most one page's handlers are live at any time.
package router

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"rmoflow/pkg/events"
)

// Page names one navigable surface.
type Page string

const (
	PageDashboard         Page = "dashboard"
	PageApplicationDetail Page = "applicationDetail"
	PageExperienceBook    Page = "experienceBook"
	PageDocuments         Page = "documents"
	PageSettings          Page = "settings"
)

// Controller mounts a page: render it and register its event handlers on
// the binder it is given. The router disposes the binder on navigation.
type Controller interface {
	Mount(arg string, bind *events.Binder) error
}

// Dismounter is implemented by controllers that hold state beyond their
// event bindings, for example the dashboard's selection mode.
type Dismounter interface {
	Dismount()
}

// Chrome is the persistent frame around pages: sidebar highlight and the
// floating action button.
type Chrome interface {
	SetActive(Page)
	SetFAB(FAB)
}

// FAB describes the floating action button for one page. The zero value
// hides it.
type FAB struct {
	Visible bool
	Icon    string
	Label   string
}

// pageFABs maps each page to its primary action button.
var pageFABs = map[Page]FAB{
	PageDashboard:      {Visible: true, Icon: "+", Label: "New Application"},
	PageExperienceBook: {Visible: true, Icon: "+", Label: "New Experience"},
	PageDocuments:      {Visible: true, Icon: "^", Label: "Upload Document"},
}

// Router resolves navigation tokens to page controllers.
type Router struct {
	bus    *events.Bus
	chrome Chrome
	pages  map[Page]Controller
	log    logrus.FieldLogger

	// Notify, when set, receives a NavigatedMsg after each navigation.
	Notify func(tea.Msg)

	mu      sync.Mutex
	current Page
	cleanup func()
}

func New(bus *events.Bus, chrome Chrome, log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{
		bus:    bus,
		chrome: chrome,
		pages:  make(map[Page]Controller),
		log:    log,
	}
}

// Register wires a controller for a page. Later registrations replace
// earlier ones.
func (r *Router) Register(page Page, c Controller) {
	r.pages[page] = c
}

// Refresher is implemented by controllers that can re-render in place when
// the cache changes under them.
type Refresher interface {
	Refresh()
}

// Refresh re-renders the mounted page without touching its bindings.
func (r *Router) Refresh() {
	r.mu.Lock()
	ctrl := r.pages[r.current]
	r.mu.Unlock()
	if rf, ok := ctrl.(Refresher); ok {
		rf.Refresh()
	}
}

// Current reports the mounted page.
func (r *Router) Current() Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate resolves token ("settings", "applicationDetail/abc") and mounts
// the target page. Unknown tokens redirect to the dashboard. The outgoing
// page is always disposed first, even when the target fails to mount.
func (r *Router) Navigate(token string) error {
	page, arg := parse(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}

	ctrl, ok := r.pages[page]
	if !ok {
		r.log.WithField("token", token).Warn("unknown page, redirecting to dashboard")
		page, arg = PageDashboard, ""
		ctrl = r.pages[page]
	}

	if r.chrome != nil {
		r.chrome.SetActive(page)
		r.chrome.SetFAB(pageFABs[page])
	}

	r.current = page
	if ctrl == nil {
		return nil
	}

	bind := r.bus.Binder()
	r.cleanup = func() {
		bind.Dispose()
		if d, ok := ctrl.(Dismounter); ok {
			d.Dismount()
		}
	}

	err := ctrl.Mount(arg, bind)
	if err != nil {
		r.log.WithField("page", page).WithError(err).Error("page mount failed")
	}
	if r.Notify != nil {
		r.Notify(events.NavigatedMsg{Page: string(page)})
	}
	return err
}

func parse(token string) (Page, string) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	name, arg, _ := strings.Cut(token, "/")
	if name == "" {
		return PageDashboard, ""
	}
	return Page(name), arg
}
