package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"rmoflow/pkg/events"
	"rmoflow/pkg/pages"
	"rmoflow/pkg/router"
	"rmoflow/pkg/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	tabStyle       = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	activeTab      = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	urgentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	overlayStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2)
	selectedMark   = "[x]"
	deselectedMark = "[ ]"
)

var tabs = []struct {
	page  router.Page
	label string
}{
	{router.PageDashboard, "1 Dashboard"},
	{router.PageExperienceBook, "2 Experience Book"},
	{router.PageDocuments, "3 Documents"},
	{router.PageSettings, "4 Settings"},
}

func (m *Model) View() string {
	if m.mode == modeAuth {
		return m.viewAuth()
	}

	st := m.scr.state()
	width := m.termWidth
	if width == 0 {
		width = 100
	}

	var b strings.Builder
	b.WriteString(m.viewHeader(st))
	b.WriteString("\n\n")

	switch st.active {
	case router.PageApplicationDetail:
		b.WriteString(m.viewDetail(st.detail, width))
	case router.PageExperienceBook:
		b.WriteString(m.viewBook(st.book, width))
	case router.PageDocuments:
		b.WriteString(m.viewDocuments(st.documents))
	case router.PageSettings:
		b.WriteString(m.viewSettings(st.settings))
	default:
		b.WriteString(m.viewDashboard(st.dashboard))
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *Model) viewHeader(st screen) string {
	parts := []string{titleStyle.Render("rmoflow")}
	for _, t := range tabs {
		style := tabStyle
		if t.page == st.active {
			style = activeTab
		}
		parts = append(parts, style.Render(t.label))
	}
	if n := len(m.reminders); n > 0 {
		parts = append(parts, urgentStyle.Render(fmt.Sprintf("! %d", n)))
	}
	if st.fab.Visible {
		parts = append(parts, faintStyle.Render(fmt.Sprintf("[%s %s]", st.fab.Icon, st.fab.Label)))
	}
	if m.user != nil {
		parts = append(parts, faintStyle.Render(m.user.Email))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) viewDashboard(vm pages.DashboardVM) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d active  %d closed  %d closing soon  %d follow-ups pending\n",
		vm.Metrics.Active, vm.Metrics.Closed, vm.Metrics.ClosingSoon, vm.Metrics.FollowUpSoon))

	for _, u := range vm.Reminders {
		b.WriteString(urgentStyle.Render(fmt.Sprintf("! %s", u.Job.Title)))
		b.WriteString(faintStyle.Render(fmt.Sprintf("  %s\n", u.Reason)))
	}
	b.WriteString("\n")

	if summary := filterSummary(vm.Filter); summary != "" {
		b.WriteString(faintStyle.Render(summary) + "\n")
	}

	if len(vm.Jobs) == 0 {
		b.WriteString(faintStyle.Render("No applications. Press a to add one.\n"))
		return b.String()
	}

	cursor := m.cursor[router.PageDashboard]
	for i, j := range vm.Jobs {
		line := fmt.Sprintf("%-34s %-22s %-4s %-20s", clip(j.Title, 34), clip(j.Hospital, 22), j.State, j.Status)
		if j.ClosingDate != nil {
			line += "  closes " + j.ClosingDate.Local().Format("2006-01-02")
		}
		prefix := "  "
		if vm.SelectionMode {
			mark := deselectedMark
			if vm.Selected[j.ID] {
				mark = selectedMark
			}
			prefix = mark + " "
		}
		if i == cursor {
			b.WriteString(cursorStyle.Render("> " + prefix + line))
		} else {
			b.WriteString("  " + prefix + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func filterSummary(f view.JobFilter) string {
	var parts []string
	add := func(label, v string) {
		if v != "" && v != "all" {
			parts = append(parts, label+":"+v)
		}
	}
	add("state", f.State)
	add("type", string(f.Type))
	add("status", string(f.Status))
	add("role", string(f.RoleLevel))
	if f.Search != "" {
		parts = append(parts, "search:"+f.Search)
	}
	if f.SortBy != "" && f.SortBy != view.SortDefault {
		parts = append(parts, "sort:"+string(f.SortBy))
	}
	if len(parts) == 0 {
		return ""
	}
	return "filters " + strings.Join(parts, " ")
}

func (m *Model) viewDetail(vm pages.DetailVM, width int) string {
	var b strings.Builder
	j := vm.Job

	heading := j.Title
	if heading == "" {
		heading = "New Application"
	}
	if vm.Dirty {
		heading += " *"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	row := func(label, v string) {
		if v == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%-14s %s\n", label, v))
	}
	row("Hospital", j.Hospital)
	row("Network", j.HealthNetwork)
	row("Location", j.Location)
	row("State", j.State)
	row("Job code", j.JobCode)
	row("Type", string(j.ApplicationType))
	row("Role", string(j.RoleLevel))
	row("Specialty", j.Specialty)
	row("Status", string(j.Status))
	if j.ClosingDate != nil {
		row("Closes", j.ClosingDate.Local().Format("2006-01-02"))
	}
	if j.DateApplied != nil {
		row("Applied", j.DateApplied.Local().Format("2006-01-02"))
	}
	if j.FollowUpDate != nil {
		done := ""
		if j.FollowUpComplete {
			done = " (done)"
		}
		row("Follow-up", j.FollowUpDate.Local().Format("2006-01-02")+done)
	}
	if j.InterviewDate != nil {
		row("Interview", j.InterviewDate.Local().Format("2006-01-02"))
	}
	row("Contact", j.ContactPerson)

	if j.DetailNotes != "" {
		b.WriteString("\n" + faintStyle.Render("Notes") + "\n")
		b.WriteString(wordwrap.String(j.DetailNotes, min(width-4, 96)) + "\n")
	}

	if len(j.SelectionCriteria) > 0 {
		b.WriteString("\n" + faintStyle.Render("Selection criteria") + "\n")
		for i, c := range j.SelectionCriteria {
			b.WriteString(fmt.Sprintf("%2d. %s\n", i, c.Criterion))
			if c.Response != "" {
				b.WriteString(wordwrap.String("    "+c.Response, min(width-4, 96)) + "\n")
			}
		}
	}

	if len(j.Documents) > 0 {
		b.WriteString("\n" + faintStyle.Render("Attached documents") + "\n")
		for _, d := range j.Documents {
			b.WriteString("  " + d.Name + "\n")
		}
	}

	b.WriteString("\n" + faintStyle.Render("w save  d delete  y duplicate  b back  :set <field> <value>") + "\n")
	return b.String()
}

func (m *Model) viewBook(vm pages.ExperienceBookVM, width int) string {
	var b strings.Builder

	if len(vm.Filter.Tags) > 0 {
		b.WriteString(faintStyle.Render("tags "+strings.Join(vm.Filter.Tags, " ")) + "\n")
	}
	if vm.Filter.Search != "" {
		b.WriteString(faintStyle.Render("search "+vm.Filter.Search) + "\n")
	}

	if len(vm.Experiences) == 0 {
		b.WriteString(faintStyle.Render("No experiences. Press a to add one.\n"))
	}

	cursor := m.cursor[router.PageExperienceBook]
	for i, e := range vm.Experiences {
		star := "  "
		if e.Favorite {
			star = "* "
		}
		line := star + e.Title
		if len(e.Tags) > 0 {
			line += faintStyle.Render("  [" + strings.Join(e.Tags, ", ") + "]")
		}
		if i == cursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if vm.Editing != nil {
		e := vm.Editing
		lines := []string{titleStyle.Render("Edit experience")}
		lines = append(lines, "Title: "+e.Title)
		lines = append(lines, "Tags:  "+strings.Join(e.Tags, ", "))
		if e.Paragraph != "" {
			lines = append(lines, "", wordwrap.String(e.Paragraph, min(width-10, 80)))
		}
		lines = append(lines, "", faintStyle.Render(":set title|paragraph|tags ...  :save  esc cancel"))
		b.WriteString("\n" + overlayStyle.Render(strings.Join(lines, "\n")) + "\n")
	}
	return b.String()
}

func (m *Model) viewDocuments(vm pages.DocumentsVM) string {
	var b strings.Builder

	for _, u := range vm.Uploads {
		b.WriteString(fmt.Sprintf("%s  %s %d%%\n", clip(u.Name, 40), progressBar(u.Pct), u.Pct))
	}
	if len(vm.Uploads) > 0 {
		b.WriteString("\n")
	}

	if len(vm.Documents) == 0 {
		b.WriteString(faintStyle.Render("No documents. Press u to upload one.\n"))
		return b.String()
	}

	cursor := m.cursor[router.PageDocuments]
	for i, d := range vm.Documents {
		line := fmt.Sprintf("%-40s %8s  %s", clip(d.Name, 40), byteSize(d.Size), faintStyle.Render(d.MIMEType))
		if i == cursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func progressBar(pct int) string {
	const cells = 20
	filled := pct * cells / 100
	if filled > cells {
		filled = cells
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", cells-filled) + "]"
}

func byteSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func (m *Model) viewSettings(vm pages.SettingsVM) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n\n")

	if p := vm.Profile; p != nil {
		b.WriteString(fmt.Sprintf("%-10s %s\n", "Name", p.FullName))
		b.WriteString(fmt.Sprintf("%-10s %s\n", "Email", p.Email))
		if p.Prefs.Timezone != "" {
			b.WriteString(fmt.Sprintf("%-10s %s\n", "Timezone", p.Prefs.Timezone))
		}
	}
	b.WriteString(fmt.Sprintf("%-10s %s\n", "Theme", vm.Theme))

	if res := vm.LastBulkAdd; res != nil {
		b.WriteString("\n" + titleStyle.Render("Last bulk add") + "  " +
			faintStyle.Render(res.RanAt.Local().Format("2006-01-02 15:04")) + "\n")
		b.WriteString(fmt.Sprintf("Added %d, skipped %d\n", res.Added, len(res.Skipped)))
		for _, sk := range res.Skipped {
			b.WriteString(faintStyle.Render(fmt.Sprintf("  skipped %s (%s)\n", sk.JobCode, sk.Hospital)))
		}
	}

	b.WriteString("\n" + faintStyle.Render(":set fullName ...  :save  :password <new>  :theme light|dark|system  :tz <zone>  :avatar <path>") + "\n")
	b.WriteString(faintStyle.Render(":export <path>  :import <path>  :bulk <path>  S sign out") + "\n")
	return b.String()
}

func (m *Model) viewAuth() string {
	var lines []string
	if m.auth.signup {
		lines = append(lines, titleStyle.Render("Create your account"), "")
		lines = append(lines, m.auth.name.View())
	} else {
		lines = append(lines, titleStyle.Render("Sign in"), "")
	}
	lines = append(lines, m.auth.email.View(), m.auth.password.View())
	lines = append(lines, "", faintStyle.Render("enter submit  tab next field  ctrl+t switch mode  ctrl+c quit"))
	body := overlayStyle.Render(strings.Join(lines, "\n"))
	return body + "\n\n" + m.viewFooter()
}

func (m *Model) viewFooter() string {
	var b strings.Builder

	switch m.mode {
	case modeInsert:
		b.WriteString(m.insertName + ": " + m.input.View() + "\n")
	case modeCommand:
		b.WriteString(":" + m.input.View() + "\n")
	case modeConfirm:
		b.WriteString(overlayStyle.Render(m.confirmText+"\n\ny confirm / n cancel") + "\n")
	case modeHelp:
		help := "Keys: 1-4 pages, j/k move, enter open, a add, / search, : commands, r refresh. " +
			"Dashboard: x follow-up done, v selection mode, space select, D delete selected. " +
			"Detail: w save, d delete, y duplicate, b back. " +
			"Documents: u upload, c cancel upload, d delete."
		b.WriteString(faintStyle.Render(wordwrap.String(help, 96)) + "\n")
	}

	if m.toast != nil {
		switch m.toast.Level {
		case events.ToastError:
			b.WriteString(errorStyle.Render(m.toast.Text) + "\n")
		case events.ToastSuccess:
			b.WriteString(successStyle.Render(m.toast.Text) + "\n")
		default:
			b.WriteString(m.toast.Text + "\n")
		}
	}

	b.WriteString(faintStyle.Render(m.status))
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
