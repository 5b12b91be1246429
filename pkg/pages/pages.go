// Package pages holds the five page controllers. A controller owns its
// page's transient state (filters, drafts, selections), reads from the live
// cache, derives a viewmodel, and hands it to the renderer. Writes go
// through the action layer; controllers never touch the store.
package pages

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/app"
	"rmoflow/pkg/document"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/profile"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/view"
)

// Actions is the slice of the service layer the controllers drive.
type Actions interface {
	SaveJob(ctx context.Context, j job.Job) (string, error)
	DeleteJob(ctx context.Context, id string) error
	DeleteJobs(ctx context.Context, ids []string) error
	DuplicateJob(ctx context.Context, id string) (string, error)
	SetFollowUpComplete(ctx context.Context, id string, done bool) error

	SaveExperience(ctx context.Context, e experience.Experience) (string, error)
	DeleteExperience(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) error

	UploadDocument(ctx context.Context, name, mimeType string, r io.Reader, size int64, emit func(tea.Msg)) (*app.UploadTask, error)
	DeleteDocument(ctx context.Context, id string) error
	AttachDocument(ctx context.Context, jobID, docID, refType string) error
	DetachDocument(ctx context.Context, jobID, docID string) error

	SaveProfileNames(ctx context.Context, fullName, firstName, lastName string) error
	ChangePassword(ctx context.Context, newPassword string) error
	UploadProfileImage(ctx context.Context, r io.Reader, size int64) (string, error)
	SetTheme(ctx context.Context, t profile.Theme) error
	SetTimezone(ctx context.Context, tz string) error
	SignOut(ctx context.Context) error

	Export(w io.Writer) error
	Import(ctx context.Context, r io.Reader) (int, error)
	BulkAdd(ctx context.Context, r io.Reader, policy app.DuplicatePolicy) (app.BulkResult, error)
}

// Renderer is whatever surface draws the viewmodels.
type Renderer interface {
	RenderDashboard(DashboardVM)
	RenderApplicationDetail(DetailVM)
	RenderExperienceBook(ExperienceBookVM)
	RenderDocuments(DocumentsVM)
	RenderSettings(SettingsVM)
}

// Prompter asks the user to confirm before a destructive action proceeds.
type Prompter interface {
	Confirm(message string) bool
}

// DashboardVM is the dashboard's render-ready state.
type DashboardVM struct {
	Metrics       view.Metrics
	Jobs          []job.Job
	Calendar      []view.CalendarEvent
	Reminders     []remind.Urgent
	Filter        view.JobFilter
	SelectionMode bool
	Selected      map[string]bool
}

// DetailVM is the application-detail page's render-ready state.
type DetailVM struct {
	Job   job.Job
	IsNew bool
	Dirty bool
	// Experiences is the full book, for the link-into-criteria picker.
	Experiences []experience.Experience
	// Library is every uploaded document, for the attach picker.
	Library []document.Document
}

// ExperienceBookVM is the experience book's render-ready state.
type ExperienceBookVM struct {
	Experiences []experience.Experience
	AllTags     []string
	Filter      view.ExperienceFilter
	// Editing is the experience open in the editor; nil when browsing.
	Editing *experience.Experience
}

// UploadStatus tracks one in-flight upload for rendering.
type UploadStatus struct {
	TaskID string
	Name   string
	Pct    int
}

// DocumentsVM is the documents page's render-ready state.
type DocumentsVM struct {
	Documents []document.Document
	Uploads   []UploadStatus
}

// SettingsVM is the settings page's render-ready state.
type SettingsVM struct {
	Profile *profile.Profile
	Theme   profile.Theme
	// LastBulkAdd is the most recent bulk-add summary, kept so the user
	// can review which rows were skipped; nil before the first run.
	LastBulkAdd *app.BulkResult
}

// clock lets tests pin time; controllers default to time.Now.
type clock func() time.Time

func orNow(c clock) clock {
	if c == nil {
		return time.Now
	}
	return c
}
