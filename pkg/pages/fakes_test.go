package pages

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/app"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/profile"
)

// fakeActions records every call; mutations land nowhere, matching the
// contract that pages read fresh state only from the cache.
type fakeActions struct {
	calls []string

	savedJobs       []job.Job
	deletedJobIDs   [][]string
	savedExps       []experience.Experience
	favoriteIDs     []string
	uploadNames     []string
	uploadSizes     []int64
	uploadEmit      func(tea.Msg)
	attached        []string
	detached        []string
	profileNames    []string
	passwords       []string
	themes          []profile.Theme
	timezones       []string
	bulkPolicies    []app.DuplicatePolicy
	bulkResult      app.BulkResult
	importCount     int
	exportCount     int
	signOuts        int
	duplicateResult string

	err error
}

func (f *fakeActions) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeActions) SaveJob(_ context.Context, j job.Job) (string, error) {
	f.record("SaveJob")
	f.savedJobs = append(f.savedJobs, j)
	if f.err != nil {
		return "", f.err
	}
	if j.ID != "" {
		return j.ID, nil
	}
	return "new-id", nil
}

func (f *fakeActions) DeleteJob(_ context.Context, id string) error {
	f.record("DeleteJob")
	f.deletedJobIDs = append(f.deletedJobIDs, []string{id})
	return f.err
}

func (f *fakeActions) DeleteJobs(_ context.Context, ids []string) error {
	f.record("DeleteJobs")
	f.deletedJobIDs = append(f.deletedJobIDs, ids)
	return f.err
}

func (f *fakeActions) DuplicateJob(_ context.Context, id string) (string, error) {
	f.record("DuplicateJob")
	if f.err != nil {
		return "", f.err
	}
	if f.duplicateResult != "" {
		return f.duplicateResult, nil
	}
	return id + "-copy", nil
}

func (f *fakeActions) SetFollowUpComplete(_ context.Context, id string, done bool) error {
	f.record("SetFollowUpComplete")
	return f.err
}

func (f *fakeActions) SaveExperience(_ context.Context, e experience.Experience) (string, error) {
	f.record("SaveExperience")
	f.savedExps = append(f.savedExps, e)
	return "exp-id", f.err
}

func (f *fakeActions) DeleteExperience(_ context.Context, id string) error {
	f.record("DeleteExperience")
	return f.err
}

func (f *fakeActions) ToggleFavorite(_ context.Context, id string) error {
	f.record("ToggleFavorite")
	f.favoriteIDs = append(f.favoriteIDs, id)
	return f.err
}

func (f *fakeActions) UploadDocument(_ context.Context, name, mimeType string, r io.Reader, size int64, emit func(tea.Msg)) (*app.UploadTask, error) {
	f.record("UploadDocument")
	if f.err != nil {
		return nil, f.err
	}
	f.uploadNames = append(f.uploadNames, name)
	f.uploadSizes = append(f.uploadSizes, size)
	f.uploadEmit = emit
	return &app.UploadTask{ID: "task-1"}, nil
}

func (f *fakeActions) DeleteDocument(_ context.Context, id string) error {
	f.record("DeleteDocument")
	return f.err
}

func (f *fakeActions) AttachDocument(_ context.Context, jobID, docID, refType string) error {
	f.record("AttachDocument")
	f.attached = append(f.attached, jobID+"/"+docID)
	return f.err
}

func (f *fakeActions) DetachDocument(_ context.Context, jobID, docID string) error {
	f.record("DetachDocument")
	f.detached = append(f.detached, jobID+"/"+docID)
	return f.err
}

func (f *fakeActions) SaveProfileNames(_ context.Context, fullName, firstName, lastName string) error {
	f.record("SaveProfileNames")
	f.profileNames = append(f.profileNames, fullName)
	return f.err
}

func (f *fakeActions) ChangePassword(_ context.Context, newPassword string) error {
	f.record("ChangePassword")
	f.passwords = append(f.passwords, newPassword)
	return f.err
}

func (f *fakeActions) UploadProfileImage(_ context.Context, _ io.Reader, size int64) (string, error) {
	f.record("UploadProfileImage")
	return "file://avatar", f.err
}

func (f *fakeActions) SetTheme(_ context.Context, t profile.Theme) error {
	f.record("SetTheme")
	f.themes = append(f.themes, t)
	return f.err
}

func (f *fakeActions) SetTimezone(_ context.Context, tz string) error {
	f.record("SetTimezone")
	f.timezones = append(f.timezones, tz)
	return f.err
}

func (f *fakeActions) SignOut(context.Context) error {
	f.record("SignOut")
	f.signOuts++
	return f.err
}

func (f *fakeActions) Export(io.Writer) error {
	f.record("Export")
	f.exportCount++
	return f.err
}

func (f *fakeActions) Import(context.Context, io.Reader) (int, error) {
	f.record("Import")
	f.importCount++
	return 0, f.err
}

func (f *fakeActions) BulkAdd(_ context.Context, _ io.Reader, policy app.DuplicatePolicy) (app.BulkResult, error) {
	f.record("BulkAdd")
	f.bulkPolicies = append(f.bulkPolicies, policy)
	return f.bulkResult, f.err
}

func (f *fakeActions) called(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// fakeRenderer keeps the last viewmodel per page.
type fakeRenderer struct {
	dashboard   *DashboardVM
	detail      *DetailVM
	experiences *ExperienceBookVM
	documents   *DocumentsVM
	settings    *SettingsVM
	renders     int
}

func (r *fakeRenderer) RenderDashboard(vm DashboardVM) {
	r.dashboard = &vm
	r.renders++
}

func (r *fakeRenderer) RenderApplicationDetail(vm DetailVM) {
	r.detail = &vm
	r.renders++
}

func (r *fakeRenderer) RenderExperienceBook(vm ExperienceBookVM) {
	r.experiences = &vm
	r.renders++
}

func (r *fakeRenderer) RenderDocuments(vm DocumentsVM) {
	r.documents = &vm
	r.renders++
}

func (r *fakeRenderer) RenderSettings(vm SettingsVM) {
	r.settings = &vm
	r.renders++
}

// fakePrompt answers every confirmation the same way.
type fakePrompt struct {
	answer bool
	asked  int
}

func (p *fakePrompt) Confirm(string) bool {
	p.asked++
	return p.answer
}

// navSpy records navigation tokens.
type navSpy struct {
	tokens []string
}

func (n *navSpy) go_(token string) { n.tokens = append(n.tokens, token) }

func (n *navSpy) last() string {
	if len(n.tokens) == 0 {
		return ""
	}
	return n.tokens[len(n.tokens)-1]
}
