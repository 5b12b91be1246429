package pages

import (
	"context"
	"strconv"
	"strings"
	"time"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/job"
	"rmoflow/pkg/timeutil"
)

// ApplicationDetail edits one application. The page works on a draft copy;
// nothing persists until save. Mounting with "new", an empty argument, or
// an id that is no longer in the cache opens a blank draft.
type ApplicationDetail struct {
	Actions  Actions
	Cache    *cache.Cache
	Renderer Renderer
	Prompt   Prompter
	Navigate func(token string)

	draft job.Job
	isNew bool
	dirty bool
}

func (p *ApplicationDetail) Mount(arg string, bind *events.Binder) error {
	p.load(arg)

	bind.On("field", func(ev events.UIEvent) {
		p.setField(ev.Target, ev.Value)
		p.dirty = true
		p.Refresh()
	})
	bind.On("save", func(events.UIEvent) { p.save() })
	bind.On("delete", func(events.UIEvent) { p.delete() })
	bind.On("duplicate", func(events.UIEvent) { p.duplicate() })
	bind.On("back", func(events.UIEvent) { p.Navigate("dashboard") })

	bind.On("criteria-add", func(events.UIEvent) {
		p.draft.SelectionCriteria = append(p.draft.SelectionCriteria, job.CriteriaEntry{})
		p.dirty = true
		p.Refresh()
	})
	bind.On("criteria-remove", func(ev events.UIEvent) {
		if i, ok := p.criteriaIndex(ev.Target); ok {
			p.draft.SelectionCriteria = append(
				p.draft.SelectionCriteria[:i], p.draft.SelectionCriteria[i+1:]...)
			p.dirty = true
			p.Refresh()
		}
	})
	bind.On("criterion", func(ev events.UIEvent) {
		if i, ok := p.criteriaIndex(ev.Target); ok {
			p.draft.SelectionCriteria[i].Criterion = ev.Value
			p.dirty = true
		}
	})
	bind.On("response", func(ev events.UIEvent) {
		if i, ok := p.criteriaIndex(ev.Target); ok {
			p.draft.SelectionCriteria[i].Response = ev.Value
			p.dirty = true
		}
	})
	bind.On("link-experience", func(ev events.UIEvent) {
		p.linkExperience(ev.Target, ev.Value)
	})

	bind.On("attach-document", func(ev events.UIEvent) {
		p.attach(ev.Target, ev.Value)
	})
	bind.On("detach-document", func(ev events.UIEvent) {
		p.detach(ev.Target)
	})

	p.Refresh()
	return nil
}

func (p *ApplicationDetail) Refresh() {
	// Saved jobs track the cache between edits so remote changes show up,
	// but never while the draft has unsaved edits.
	if !p.isNew && !p.dirty {
		if j, ok := p.Cache.FindJob(p.draft.ID); ok {
			p.draft = j
		}
	}
	p.Renderer.RenderApplicationDetail(DetailVM{
		Job:         p.draft,
		IsNew:       p.isNew,
		Dirty:       p.dirty,
		Experiences: p.Cache.Experiences(),
		Library:     p.Cache.Documents(),
	})
}

func (p *ApplicationDetail) load(arg string) {
	p.dirty = false
	if arg == "" || arg == "new" {
		p.draft = job.Job{Status: job.StatusIdentified}
		p.isNew = true
		return
	}
	if j, ok := p.Cache.FindJob(arg); ok {
		p.draft = j
		p.isNew = false
		return
	}
	// Stale id, e.g. deleted on another device. Fall back to a blank draft.
	p.draft = job.Job{Status: job.StatusIdentified}
	p.isNew = true
}

func (p *ApplicationDetail) setField(name, value string) {
	switch name {
	case "jobTitle":
		p.draft.Title = value
	case "hospital":
		p.draft.Hospital = value
	case "healthNetwork":
		p.draft.HealthNetwork = value
	case "sourceUrl":
		p.draft.SourceURL = value
	case "location":
		p.draft.Location = value
	case "state":
		p.draft.State = value
	case "jobId":
		p.draft.JobCode = value
	case "applicationType":
		p.draft.ApplicationType = job.ApplicationType(value)
	case "portal":
		p.draft.Portal = value
	case "specialty":
		p.draft.Specialty = value
	case "roleLevel":
		p.draft.RoleLevel = job.RoleLevel(value)
	case "contactPerson":
		p.draft.ContactPerson = value
	case "contactEmail":
		p.draft.ContactEmail = value
	case "contactPhone":
		p.draft.ContactPhone = value
	case "jobDetailNotes":
		p.draft.DetailNotes = value
	case "jobTrackerNotes":
		p.draft.TrackerNotes = value
	case "status":
		p.draft.Status = job.Status(value)
	case "interviewType":
		p.draft.InterviewType = value
	case "followUpComplete":
		p.draft.FollowUpComplete = value == "true"
	case "thankYouSent":
		p.draft.ThankYouSent = value == "true"
	case "closingDate":
		p.draft.ClosingDate = parseDate(value)
	case "dateApplied":
		p.draft.DateApplied = parseDate(value)
	case "followUpDate":
		p.draft.FollowUpDate = parseDate(value)
	case "interviewDate":
		p.draft.InterviewDate = parseDate(value)
	}
}

// parseDate accepts full wire timestamps and the bare yyyy-mm-dd a date
// field produces. Anything else clears the field.
func parseDate(value string) *timeutil.Timestamp {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	if t, err := timeutil.ParseTime(v); err == nil {
		return &timeutil.Timestamp{Time: t}
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &timeutil.Timestamp{Time: t}
	}
	return nil
}

func (p *ApplicationDetail) save() {
	id, err := p.Actions.SaveJob(context.Background(), p.draft)
	if err != nil {
		return
	}
	p.draft.ID = id
	p.isNew = false
	p.dirty = false
	p.Refresh()
}

func (p *ApplicationDetail) delete() {
	if p.isNew {
		p.Navigate("dashboard")
		return
	}
	if p.Prompt != nil && !p.Prompt.Confirm("Delete this application? This cannot be undone.") {
		return
	}
	if err := p.Actions.DeleteJob(context.Background(), p.draft.ID); err != nil {
		return
	}
	p.Navigate("dashboard")
}

func (p *ApplicationDetail) duplicate() {
	if p.isNew {
		return
	}
	id, err := p.Actions.DuplicateJob(context.Background(), p.draft.ID)
	if err != nil {
		return
	}
	p.Navigate("applicationDetail/" + id)
}

// linkExperience copies an experience's paragraph into a criteria response.
// It is a one-time text copy; editing the experience later changes nothing
// here.
func (p *ApplicationDetail) linkExperience(criteriaIdx, experienceID string) {
	i, ok := p.criteriaIndex(criteriaIdx)
	if !ok {
		return
	}
	e, ok := p.Cache.FindExperience(experienceID)
	if !ok {
		return
	}
	resp := p.draft.SelectionCriteria[i].Response
	if resp != "" && !strings.HasSuffix(resp, "\n") {
		resp += "\n\n"
	}
	p.draft.SelectionCriteria[i].Response = resp + e.Paragraph
	p.dirty = true
	p.Refresh()
}

func (p *ApplicationDetail) attach(docID, refType string) {
	if p.isNew {
		// Unsaved drafts have no document to update; attach after saving.
		return
	}
	if err := p.Actions.AttachDocument(context.Background(), p.draft.ID, docID, refType); err != nil {
		return
	}
	if d, ok := p.Cache.FindDocument(docID); ok {
		p.draft.Documents = append(p.draft.Documents, job.DocumentRef{
			ID: d.ID, Name: d.Name, URL: d.URL, Type: refType,
		})
	}
	p.Refresh()
}

func (p *ApplicationDetail) detach(docID string) {
	if p.isNew {
		return
	}
	if err := p.Actions.DetachDocument(context.Background(), p.draft.ID, docID); err != nil {
		return
	}
	refs := p.draft.Documents[:0]
	for _, ref := range p.draft.Documents {
		if ref.ID != docID {
			refs = append(refs, ref)
		}
	}
	p.draft.Documents = refs
	p.Refresh()
}

func (p *ApplicationDetail) criteriaIndex(target string) (int, bool) {
	i, err := strconv.Atoi(target)
	if err != nil || i < 0 || i >= len(p.draft.SelectionCriteria) {
		return 0, false
	}
	return i, true
}
