package pages

import (
	"context"
	"os"

	"rmoflow/pkg/app"
	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/profile"
)

// Settings edits the profile, password, and preferences, and runs the
// backup operations. Import is destructive and always confirms first.
type Settings struct {
	Actions  Actions
	Cache    *cache.Cache
	Renderer Renderer
	Prompt   Prompter
	Navigate func(token string)
	// BulkPolicy is the configured duplicate handling for bulk add.
	BulkPolicy app.DuplicatePolicy

	form struct {
		fullName, firstName, lastName string
		password                      string
		seeded                        bool
	}

	// lastBulk survives navigation so the summary is still there when the
	// user comes back to check which rows were skipped.
	lastBulk *app.BulkResult
}

func (p *Settings) Mount(_ string, bind *events.Binder) error {
	p.form.seeded = false
	p.seedForm()

	bind.On("field", func(ev events.UIEvent) {
		switch ev.Target {
		case "fullName":
			p.form.fullName = ev.Value
		case "firstName":
			p.form.firstName = ev.Value
		case "lastName":
			p.form.lastName = ev.Value
		case "password":
			p.form.password = ev.Value
		}
	})
	bind.On("save-profile", func(events.UIEvent) {
		_ = p.Actions.SaveProfileNames(context.Background(),
			p.form.fullName, p.form.firstName, p.form.lastName)
	})
	bind.On("change-password", func(events.UIEvent) {
		if err := p.Actions.ChangePassword(context.Background(), p.form.password); err != nil {
			return
		}
		p.form.password = ""
		p.Refresh()
	})

	bind.On("theme", func(ev events.UIEvent) {
		_ = p.Actions.SetTheme(context.Background(), profile.Theme(ev.Value))
	})
	bind.On("timezone", func(ev events.UIEvent) {
		_ = p.Actions.SetTimezone(context.Background(), ev.Value)
	})

	bind.On("upload-image", func(ev events.UIEvent) { p.uploadImage(ev.Value) })

	bind.On("export", func(ev events.UIEvent) { p.export(ev.Value) })
	bind.On("import", func(ev events.UIEvent) { p.importBackup(ev.Value) })
	bind.On("bulk-add", func(ev events.UIEvent) { p.bulkAdd(ev.Value) })

	bind.On("sign-out", func(events.UIEvent) {
		_ = p.Actions.SignOut(context.Background())
	})

	p.Refresh()
	return nil
}

func (p *Settings) Refresh() {
	p.seedForm()
	prof := p.Cache.Profile()
	vm := SettingsVM{Profile: prof, Theme: profile.ThemeSystem, LastBulkAdd: p.lastBulk}
	if prof != nil {
		vm.Theme = prof.Theme()
	}
	p.Renderer.RenderSettings(vm)
}

// seedForm copies the profile into the form once per visit, so an arriving
// delivery does not clobber in-progress edits.
func (p *Settings) seedForm() {
	if p.form.seeded {
		return
	}
	if prof := p.Cache.Profile(); prof != nil {
		p.form.fullName = prof.FullName
		p.form.firstName = prof.FirstName
		p.form.lastName = prof.LastName
		p.form.seeded = true
	}
}

func (p *Settings) uploadImage(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return
	}
	_, _ = p.Actions.UploadProfileImage(context.Background(), f, info.Size())
}

func (p *Settings) export(path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = p.Actions.Export(f)
}

func (p *Settings) importBackup(path string) {
	if path == "" {
		return
	}
	if p.Prompt != nil && !p.Prompt.Confirm("Importing replaces every existing application. Continue?") {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = p.Actions.Import(context.Background(), f)
}

func (p *Settings) bulkAdd(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	res, err := p.Actions.BulkAdd(context.Background(), f, p.BulkPolicy)
	if err != nil {
		return
	}
	p.lastBulk = &res
	p.Refresh()
}
