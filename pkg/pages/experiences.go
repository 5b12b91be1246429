package pages

import (
	"context"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/view"
)

// ExperienceBook browses and edits the reusable answers. Favorites float to
// the top; tag chips narrow by intersection.
type ExperienceBook struct {
	Actions  Actions
	Cache    *cache.Cache
	Renderer Renderer
	Prompt   Prompter

	filter  view.ExperienceFilter
	editing *experience.Experience
}

func (p *ExperienceBook) Mount(_ string, bind *events.Binder) error {
	bind.On("search", func(ev events.UIEvent) {
		p.filter.Search = ev.Value
		p.Refresh()
	})
	bind.On("tag", func(ev events.UIEvent) {
		p.toggleTag(ev.Target)
	})
	bind.On("clear-tags", func(events.UIEvent) {
		p.filter.Tags = nil
		p.Refresh()
	})

	bind.On("favorite", func(ev events.UIEvent) {
		_ = p.Actions.ToggleFavorite(context.Background(), ev.Target)
	})

	bind.On("add", func(events.UIEvent) {
		p.editing = &experience.Experience{}
		p.Refresh()
	})
	bind.On("edit", func(ev events.UIEvent) {
		if e, ok := p.Cache.FindExperience(ev.Target); ok {
			p.editing = &e
			p.Refresh()
		}
	})
	bind.On("field", func(ev events.UIEvent) {
		if p.editing == nil {
			return
		}
		switch ev.Target {
		case "title":
			p.editing.Title = ev.Value
		case "paragraph":
			p.editing.Paragraph = ev.Value
		case "tags":
			p.editing.Tags = experience.ParseTags(ev.Value)
		}
	})
	bind.On("save", func(events.UIEvent) { p.save() })
	bind.On("cancel", func(events.UIEvent) {
		p.editing = nil
		p.Refresh()
	})
	bind.On("delete", func(ev events.UIEvent) { p.delete(ev.Target) })

	p.Refresh()
	return nil
}

// Dismount drops any half-edited draft.
func (p *ExperienceBook) Dismount() {
	p.editing = nil
}

func (p *ExperienceBook) Refresh() {
	exps := p.Cache.Experiences()
	p.Renderer.RenderExperienceBook(ExperienceBookVM{
		Experiences: view.Experiences(exps, p.filter),
		AllTags:     view.AllTags(exps),
		Filter:      p.filter,
		Editing:     p.editing,
	})
}

func (p *ExperienceBook) toggleTag(tag string) {
	for i, t := range p.filter.Tags {
		if t == tag {
			p.filter.Tags = append(p.filter.Tags[:i], p.filter.Tags[i+1:]...)
			p.Refresh()
			return
		}
	}
	p.filter.Tags = append(p.filter.Tags, tag)
	p.Refresh()
}

func (p *ExperienceBook) save() {
	if p.editing == nil {
		return
	}
	if _, err := p.Actions.SaveExperience(context.Background(), *p.editing); err != nil {
		return
	}
	p.editing = nil
	p.Refresh()
}

func (p *ExperienceBook) delete(id string) {
	if p.Prompt != nil && !p.Prompt.Confirm("Delete this experience? Responses already copied into applications keep their text.") {
		return
	}
	if err := p.Actions.DeleteExperience(context.Background(), id); err != nil {
		return
	}
	if p.editing != nil && p.editing.ID == id {
		p.editing = nil
	}
	p.Refresh()
}
