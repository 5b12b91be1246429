package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/app"
	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/pages"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/router"
)

type mode int

const (
	modeAuth mode = iota
	modeNormal
	modeInsert
	modeCommand
	modeConfirm
	modeHelp
)

// toastClearMsg dismisses the current toast after its display window.
type toastClearMsg struct{}

const toastWindow = 4 * time.Second

// Model is the Bubble Tea model for the whole application.
type Model struct {
	svc     *app.Service
	session *app.Session
	cache   *cache.Cache
	bus     *events.Bus
	router  *router.Router
	scr     *screen
	gate    *confirmGate
	docs    *pages.Documents
	ui      chan tea.Msg
	emit    func(tea.Msg)

	mode   mode
	status string

	user      *remote.User
	reminders []remind.Urgent
	toast     *events.ToastMsg

	// cursor is the highlighted row per page, indexing into that page's
	// rendered list.
	cursor map[router.Page]int

	input        textinput.Model
	insertName   string
	insertTarget string

	pendingEvent events.UIEvent
	confirmText  string

	auth authForm

	termWidth  int
	termHeight int
}

type authForm struct {
	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	focus    int
	signup   bool
}

func newModel(svc *app.Service, sess *app.Session, c *cache.Cache, bus *events.Bus, rt *router.Router, scr *screen, gate *confirmGate, docs *pages.Documents, ui chan tea.Msg, emit func(tea.Msg)) *Model {
	in := textinput.New()
	in.CharLimit = 512
	in.Prompt = ""

	name := textinput.New()
	name.Placeholder = "Full name"
	email := textinput.New()
	email.Placeholder = "Email"
	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	email.Focus()

	return &Model{
		svc:     svc,
		session: sess,
		cache:   c,
		bus:     bus,
		router:  rt,
		scr:     scr,
		gate:    gate,
		docs:    docs,
		ui:      ui,
		emit:    emit,
		mode:    modeAuth,
		status:  "Sign in to continue",
		cursor:  make(map[router.Page]int),
		input:   in,
		auth:    authForm{name: name, email: email, password: password, focus: 1},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), textinput.Blink)
}

// listen pulls the next message off the shared channel: session auth
// transitions, cache updates, toasts, upload progress.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.ui }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height

	case events.AuthChangedMsg:
		if msg.User == nil {
			m.user = nil
			m.mode = modeAuth
			m.status = "Sign in to continue"
		} else {
			m.user = msg.User
			if m.mode == modeAuth {
				m.mode = modeNormal
				m.status = "NORMAL: j/k move, enter open, 1-4 pages, : commands, ? help"
				_ = m.router.Navigate("dashboard")
			}
		}
		cmds = append(cmds, m.listen())

	case events.CacheUpdatedMsg:
		m.router.Refresh()
		cmds = append(cmds, m.listen())

	case events.RemindersMsg:
		m.reminders = msg.Items
		cmds = append(cmds, m.listen())

	case events.ToastMsg:
		toast := msg
		m.toast = &toast
		cmds = append(cmds, m.listen(), tea.Tick(toastWindow, func(time.Time) tea.Msg {
			return toastClearMsg{}
		}))

	case events.UploadProgressMsg, events.UploadDoneMsg:
		m.docs.HandleUploadMsg(msg)
		cmds = append(cmds, m.listen())

	case events.NavigatedMsg:
		cmds = append(cmds, m.listen())

	case toastClearMsg:
		m.toast = nil

	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg)...)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) []tea.Cmd {
	var cmds []tea.Cmd
	key := msg.String()

	if key == "ctrl+c" {
		return []tea.Cmd{tea.Quit}
	}

	switch m.mode {
	case modeAuth:
		cmds = m.handleAuthKey(msg)

	case modeConfirm:
		switch key {
		case "y", "enter":
			m.gate.arm()
			m.bus.Dispatch(m.pendingEvent)
			m.mode = modeNormal
		case "n", "esc", "q":
			m.gate.disarm()
			m.mode = modeNormal
			m.status = "Cancelled"
		}

	case modeHelp:
		switch key {
		case "q", "esc", "?":
			m.mode = modeNormal
		}

	case modeInsert:
		switch key {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			name, target := m.insertName, m.insertTarget
			m.leaveInput()
			m.dispatch(events.UIEvent{Name: name, Target: target, Value: value})
		case "esc":
			m.leaveInput()
			m.status = "Cancelled"
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case modeCommand:
		switch key {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.leaveInput()
			cmds = append(cmds, m.runCommand(line)...)
		case "esc":
			m.leaveInput()
			m.status = "Cancelled"
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case modeNormal:
		cmds = m.handleNormalKey(msg)
	}

	return cmds
}

func (m *Model) handleAuthKey(msg tea.KeyPressMsg) []tea.Cmd {
	var cmds []tea.Cmd
	inputs := m.authInputs()

	switch msg.String() {
	case "tab", "down":
		m.auth.focus = (m.auth.focus + 1) % len(inputs)
		cmds = append(cmds, m.focusAuth(inputs))
	case "shift+tab", "up":
		m.auth.focus = (m.auth.focus + len(inputs) - 1) % len(inputs)
		cmds = append(cmds, m.focusAuth(inputs))
	case "ctrl+t":
		m.auth.signup = !m.auth.signup
		m.auth.focus = 0
		if m.auth.signup {
			m.status = "Create an account (ctrl+t to sign in instead)"
		} else {
			m.status = "Sign in to continue (ctrl+t to create an account)"
		}
		cmds = append(cmds, m.focusAuth(m.authInputs()))
	case "enter":
		m.submitAuth()
	default:
		var cmd tea.Cmd
		*inputs[m.auth.focus], cmd = inputs[m.auth.focus].Update(msg)
		cmds = append(cmds, cmd)
	}
	return cmds
}

// authInputs returns the visible fields in tab order.
func (m *Model) authInputs() []*textinput.Model {
	if m.auth.signup {
		return []*textinput.Model{&m.auth.name, &m.auth.email, &m.auth.password}
	}
	return []*textinput.Model{&m.auth.email, &m.auth.password}
}

func (m *Model) focusAuth(inputs []*textinput.Model) tea.Cmd {
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == m.auth.focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (m *Model) submitAuth() {
	ctx := context.Background()
	email := strings.TrimSpace(m.auth.email.Value())
	password := m.auth.password.Value()
	if m.auth.signup {
		if err := m.svc.SignUp(ctx, strings.TrimSpace(m.auth.name.Value()), email, password); err != nil {
			m.status = err.Error()
		}
		return
	}
	if err := m.svc.SignIn(ctx, email, password); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg) []tea.Cmd {
	var cmds []tea.Cmd
	page := m.router.Current()

	switch msg.String() {
	case ":":
		m.enterCommand("")
		cmds = append(cmds, textinput.Blink)
	case "?":
		m.mode = modeHelp
	case "1":
		_ = m.router.Navigate("dashboard")
	case "2":
		_ = m.router.Navigate("experienceBook")
	case "3":
		_ = m.router.Navigate("documents")
	case "4":
		_ = m.router.Navigate("settings")
	case "j", "down":
		m.moveCursor(page, 1)
	case "k", "up":
		m.moveCursor(page, -1)
	case "g":
		m.cursor[page] = 0
	case "G":
		m.cursor[page] = m.rowCount(page) - 1
		if m.cursor[page] < 0 {
			m.cursor[page] = 0
		}
	case "/":
		if page == router.PageDashboard || page == router.PageExperienceBook {
			m.enterInput("search", "", "Search")
			cmds = append(cmds, textinput.Blink)
		}
	case "r":
		m.router.Refresh()
	case "q":
		m.status = "Use :q to quit"
	default:
		cmds = append(cmds, m.handlePageKey(page, msg.String())...)
	}
	return cmds
}

func (m *Model) handlePageKey(page router.Page, key string) []tea.Cmd {
	var cmds []tea.Cmd
	st := m.scr.state()

	switch page {
	case router.PageDashboard:
		id := selectedJobID(st.dashboard, m.cursor[page])
		switch key {
		case "enter":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "open", Target: id})
			}
		case "a":
			m.dispatch(events.UIEvent{Name: "add"})
		case "x":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "follow-up-done", Target: id})
			}
		case "v":
			m.dispatch(events.UIEvent{Name: "select-mode"})
		case " ", "space":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "select", Target: id})
			}
		case "D":
			m.dispatch(events.UIEvent{Name: "delete-selected"})
		}

	case router.PageApplicationDetail:
		switch key {
		case "w":
			m.dispatch(events.UIEvent{Name: "save"})
		case "d":
			m.dispatch(events.UIEvent{Name: "delete"})
		case "y":
			m.dispatch(events.UIEvent{Name: "duplicate"})
		case "esc", "b":
			m.dispatch(events.UIEvent{Name: "back"})
		}

	case router.PageExperienceBook:
		id := selectedExperienceID(st.book, m.cursor[page])
		switch key {
		case "enter":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "edit", Target: id})
			}
		case "a":
			m.dispatch(events.UIEvent{Name: "add"})
		case "f":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "favorite", Target: id})
			}
		case "d":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "delete", Target: id})
			}
		case "esc":
			m.dispatch(events.UIEvent{Name: "cancel"})
		}

	case router.PageDocuments:
		id := selectedDocumentID(st.documents, m.cursor[page])
		switch key {
		case "u":
			m.enterInput("upload", "", "Path to file")
			cmds = append(cmds, textinput.Blink)
		case "c":
			if len(st.documents.Uploads) > 0 {
				m.dispatch(events.UIEvent{Name: "cancel-upload", Target: st.documents.Uploads[0].TaskID})
			}
		case "d":
			if id != "" {
				m.dispatch(events.UIEvent{Name: "delete", Target: id})
			}
		}

	case router.PageSettings:
		switch key {
		case "S":
			m.dispatch(events.UIEvent{Name: "sign-out"})
		}
	}
	return cmds
}

// dispatch sends the event through the bus and opens the confirm overlay
// when a controller asked for confirmation.
func (m *Model) dispatch(ev events.UIEvent) {
	m.pendingEvent = ev
	m.bus.Dispatch(ev)
	if text, ok := m.gate.take(); ok {
		m.confirmText = text
		m.mode = modeConfirm
	}
}

func (m *Model) enterInput(name, target, placeholder string) {
	m.mode = modeInsert
	m.insertName = name
	m.insertTarget = target
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) enterCommand(prefill string) {
	m.mode = modeCommand
	m.input.Placeholder = "command"
	m.input.SetValue(prefill)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) leaveInput() {
	m.mode = modeNormal
	m.insertName = ""
	m.insertTarget = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) runCommand(line string) []tea.Cmd {
	if line == "" {
		return nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	page := m.router.Current()

	switch verb {
	case "q", "quit", "exit":
		return []tea.Cmd{tea.Quit}

	case "set":
		field, value, _ := strings.Cut(rest, " ")
		if field == "" {
			m.status = "Usage: :set <field> <value>"
			return nil
		}
		m.dispatch(events.UIEvent{Name: "field", Target: field, Value: strings.TrimSpace(value)})

	case "filter":
		target, value, _ := strings.Cut(rest, " ")
		m.dispatch(events.UIEvent{Name: "filter", Target: target, Value: strings.TrimSpace(value)})

	case "sort":
		m.dispatch(events.UIEvent{Name: "sort", Value: rest})

	case "clear":
		if page == router.PageExperienceBook {
			m.dispatch(events.UIEvent{Name: "clear-tags"})
		} else {
			m.dispatch(events.UIEvent{Name: "clear-filters"})
		}

	case "tag":
		m.dispatch(events.UIEvent{Name: "tag", Target: rest})

	case "crit-add":
		m.dispatch(events.UIEvent{Name: "criteria-add"})
	case "crit-rm":
		m.dispatch(events.UIEvent{Name: "criteria-remove", Target: rest})
	case "criterion":
		idx, text, _ := strings.Cut(rest, " ")
		m.dispatch(events.UIEvent{Name: "criterion", Target: idx, Value: strings.TrimSpace(text)})
	case "response":
		idx, text, _ := strings.Cut(rest, " ")
		m.dispatch(events.UIEvent{Name: "response", Target: idx, Value: strings.TrimSpace(text)})

	case "link":
		m.dispatch(events.UIEvent{Name: "link-experience", Target: rest})
	case "attach":
		m.dispatch(events.UIEvent{Name: "attach-document", Target: rest})
	case "detach":
		m.dispatch(events.UIEvent{Name: "detach-document", Target: rest})

	case "save":
		if page == router.PageSettings {
			m.dispatch(events.UIEvent{Name: "save-profile"})
		} else {
			m.dispatch(events.UIEvent{Name: "save"})
		}
	case "password":
		m.dispatch(events.UIEvent{Name: "field", Target: "password", Value: rest})
		m.dispatch(events.UIEvent{Name: "change-password"})
	case "theme":
		m.dispatch(events.UIEvent{Name: "theme", Value: rest})
	case "avatar":
		m.dispatch(events.UIEvent{Name: "upload-image", Value: rest})
	case "tz":
		m.dispatch(events.UIEvent{Name: "timezone", Value: rest})

	case "export":
		m.dispatch(events.UIEvent{Name: "export", Value: rest})
	case "import":
		m.dispatch(events.UIEvent{Name: "import", Value: rest})
	case "bulk":
		m.dispatch(events.UIEvent{Name: "bulk-add", Value: rest})

	case "signout":
		m.dispatch(events.UIEvent{Name: "sign-out"})

	default:
		m.status = fmt.Sprintf("Unknown command: %s", verb)
	}
	return nil
}

func (m *Model) moveCursor(page router.Page, delta int) {
	count := m.rowCount(page)
	if count == 0 {
		m.cursor[page] = 0
		return
	}
	next := m.cursor[page] + delta
	if next < 0 {
		next = 0
	}
	if next > count-1 {
		next = count - 1
	}
	m.cursor[page] = next
}

func (m *Model) rowCount(page router.Page) int {
	st := m.scr.state()
	switch page {
	case router.PageDashboard:
		return len(st.dashboard.Jobs)
	case router.PageExperienceBook:
		return len(st.book.Experiences)
	case router.PageDocuments:
		return len(st.documents.Documents)
	default:
		return 0
	}
}

func selectedJobID(vm pages.DashboardVM, cursor int) string {
	if cursor < 0 || cursor >= len(vm.Jobs) {
		return ""
	}
	return vm.Jobs[cursor].ID
}

func selectedExperienceID(vm pages.ExperienceBookVM, cursor int) string {
	if cursor < 0 || cursor >= len(vm.Experiences) {
		return ""
	}
	return vm.Experiences[cursor].ID
}

func selectedDocumentID(vm pages.DocumentsVM, cursor int) string {
	if cursor < 0 || cursor >= len(vm.Documents) {
		return ""
	}
	return vm.Documents[cursor].ID
}
