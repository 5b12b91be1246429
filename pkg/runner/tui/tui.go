// Package tui is the terminal front end. It assembles the session, cache,
// router, and page controllers around a Bubble Tea program and translates
// key presses into the UI events the controllers handle.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"rmoflow/pkg/app"
	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/notify"
	"rmoflow/pkg/pages"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/router"
)

// Deps are the backends the UI runs against.
type Deps struct {
	Store    remote.Store
	Blobs    remote.BlobStore
	Identity remote.Identity
	Log      logrus.FieldLogger
	Policy   app.DuplicatePolicy
}

// Run starts the full-screen UI and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	m := New(deps)

	m.session.Start()
	defer m.session.Stop()

	// Cache notifications join the same channel as session and toast
	// messages so the program sees one ordered stream.
	go func() {
		for msg := range m.cache.Events() {
			m.emit(msg)
		}
	}()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// New wires the model without starting anything. Tests drive the returned
// model directly.
func New(deps Deps) *Model {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}

	ui := make(chan tea.Msg, 64)
	emit := func(msg tea.Msg) {
		select {
		case ui <- msg:
		default:
		}
	}

	c := cache.New()
	hub := notify.NewHub(notify.ChannelSink{Ch: ui})
	svc := app.NewService(deps.Store, deps.Blobs, deps.Identity, c, hub, deps.Log)
	sess := app.NewSession(deps.Store, deps.Identity, c, emit, deps.Log)

	bus := events.NewBus()
	scr := newScreen()
	gate := &confirmGate{}
	rt := router.New(bus, scr, deps.Log)
	rt.Notify = emit

	nav := func(token string) { _ = rt.Navigate(token) }

	docs := &pages.Documents{Actions: svc, Cache: c, Renderer: scr, Prompt: gate, Emit: emit}
	rt.Register(router.PageDashboard, &pages.Dashboard{Actions: svc, Cache: c, Renderer: scr, Prompt: gate, Navigate: nav})
	rt.Register(router.PageApplicationDetail, &pages.ApplicationDetail{Actions: svc, Cache: c, Renderer: scr, Prompt: gate, Navigate: nav})
	rt.Register(router.PageExperienceBook, &pages.ExperienceBook{Actions: svc, Cache: c, Renderer: scr, Prompt: gate})
	rt.Register(router.PageDocuments, docs)
	rt.Register(router.PageSettings, &pages.Settings{Actions: svc, Cache: c, Renderer: scr, Prompt: gate, Navigate: nav, BulkPolicy: deps.Policy})

	return newModel(svc, sess, c, bus, rt, scr, gate, docs, ui, emit)
}
