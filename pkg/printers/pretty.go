package printers

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"rmoflow/pkg/job"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/view"
)

// PrettyPrint renders applications, counters and reminders for the
// one-shot terminal commands.
type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Println(title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" application")
	default:
		_, _ = c.Println(" applications")
	}
}

// Jobs prints the applications table.
func (pp *PrettyPrint) Jobs(jobs ...job.Job) {
	if len(jobs) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "

	header := []interface{}{"TITLE", "HOSPITAL", "STATE", "STATUS", "CLOSES"}
	if pp.ShowID {
		header = append([]interface{}{"ID"}, header...)
	}
	tbl.AddRow(header...)

	for _, j := range jobs {
		row := []interface{}{j.Title, j.Hospital, j.State, statusCell(j.Status), closesCell(j)}
		if pp.ShowID {
			row = append([]interface{}{j.ID}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func statusCell(s job.Status) string {
	switch {
	case s.IsClosed():
		return color.New(color.Faint).Sprint(string(s))
	case s == job.StatusApplied:
		return color.New(color.FgGreen).Sprint(string(s))
	case s == job.StatusInterviewOffered, s == job.StatusOfferReceived:
		return color.New(color.FgHiYellow).Sprint(string(s))
	default:
		return string(s)
	}
}

func closesCell(j job.Job) string {
	if j.ClosingDate == nil {
		return ""
	}
	return j.ClosingDate.Local().Format("2006-01-02")
}

// Metrics prints the dashboard counters on one line.
func (pp *PrettyPrint) Metrics(m view.Metrics) {
	b := color.New(color.Bold)
	f := color.New(color.Faint)
	_, _ = b.Printf("%d", m.Active)
	_, _ = f.Print(" active  ")
	_, _ = b.Printf("%d", m.Closed)
	_, _ = f.Print(" closed  ")
	_, _ = b.Printf("%d", m.ClosingSoon)
	_, _ = f.Print(" closing soon  ")
	_, _ = b.Printf("%d", m.FollowUpSoon)
	_, _ = f.Println(" follow-ups pending")
}

// Urgent prints the reminder lines that appear above the table.
func (pp *PrettyPrint) Urgent(items ...remind.Urgent) {
	if len(items) == 0 {
		return
	}
	w := color.New(color.FgHiRed, color.Bold)
	f := color.New(color.Faint)
	for _, u := range items {
		_, _ = w.Printf("! %s", u.Job.Title)
		_, _ = f.Printf("  %s\n", u.Reason)
	}
	fmt.Println("")
}

// Deadline renders a closing date relative to now, matching the dashboard.
func Deadline(t time.Time, now time.Time) string {
	days := int(t.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return "lapsed"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
