// Package cache is the single in-memory source of truth for the remote
// collections. Slots are replaced wholesale by subscription deliveries and
// never patched incrementally; user actions go to the backend and come back
// through the subscription, so the cache has exactly one writer path.
package cache

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/document"
	"rmoflow/pkg/events"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/profile"
)

// Snapshot is a copy of every slot, safe to hold across renders.
type Snapshot struct {
	Jobs        []job.Job
	Experiences []experience.Experience
	Documents   []document.Document
	Profile     *profile.Profile
}

// Cache holds the live slots and emits an event on every replacement.
type Cache struct {
	mu sync.RWMutex

	jobs        []job.Job
	experiences []experience.Experience
	documents   []document.Document
	profile     *profile.Profile

	eventCh chan tea.Msg
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{eventCh: make(chan tea.Msg, 64)}
}

// Events exposes the cache event channel for Bubble Tea subscriptions.
func (c *Cache) Events() <-chan tea.Msg {
	return c.eventCh
}

// emit drops the message if no consumer is draining; a later snapshot or
// render pass will catch the state up, and the subscription callback must
// never block on the UI.
func (c *Cache) emit(msg tea.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}

// SetJobs replaces the jobs slot.
func (c *Cache) SetJobs(jobs []job.Job) {
	c.mu.Lock()
	c.jobs = append([]job.Job(nil), jobs...)
	n := len(c.jobs)
	c.mu.Unlock()
	c.emit(events.CacheUpdatedMsg{Collection: events.CollectionJobs, Count: n})
}

// SetExperiences replaces the experiences slot.
func (c *Cache) SetExperiences(exps []experience.Experience) {
	c.mu.Lock()
	c.experiences = append([]experience.Experience(nil), exps...)
	n := len(c.experiences)
	c.mu.Unlock()
	c.emit(events.CacheUpdatedMsg{Collection: events.CollectionExperiences, Count: n})
}

// SetDocuments replaces the documents slot.
func (c *Cache) SetDocuments(docs []document.Document) {
	c.mu.Lock()
	c.documents = append([]document.Document(nil), docs...)
	n := len(c.documents)
	c.mu.Unlock()
	c.emit(events.CacheUpdatedMsg{Collection: events.CollectionDocuments, Count: n})
}

// SetProfile replaces the profile slot; nil means the document is absent.
func (c *Cache) SetProfile(p *profile.Profile) {
	c.mu.Lock()
	if p == nil {
		c.profile = nil
	} else {
		cp := *p
		c.profile = &cp
	}
	n := 0
	if c.profile != nil {
		n = 1
	}
	c.mu.Unlock()
	c.emit(events.CacheUpdatedMsg{Collection: events.CollectionProfile, Count: n})
}

// Snapshot returns copies of every slot. Callers treat the result as
// immutable.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		Jobs:        append([]job.Job(nil), c.jobs...),
		Experiences: append([]experience.Experience(nil), c.experiences...),
		Documents:   append([]document.Document(nil), c.documents...),
	}
	if c.profile != nil {
		cp := *c.profile
		snap.Profile = &cp
	}
	return snap
}

// Jobs returns a copy of the jobs slot.
func (c *Cache) Jobs() []job.Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]job.Job(nil), c.jobs...)
}

// Experiences returns a copy of the experiences slot.
func (c *Cache) Experiences() []experience.Experience {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]experience.Experience(nil), c.experiences...)
}

// Documents returns a copy of the documents slot.
func (c *Cache) Documents() []document.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]document.Document(nil), c.documents...)
}

// Profile returns a copy of the profile slot, nil when absent.
func (c *Cache) Profile() *profile.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return nil
	}
	cp := *c.profile
	return &cp
}

// Reset empties every slot synchronously. Called on sign-out before the auth
// view is shown.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.jobs = nil
	c.experiences = nil
	c.documents = nil
	c.profile = nil
	c.mu.Unlock()
}

// FindJob looks a job up by id in the current slot.
func (c *Cache) FindJob(id string) (job.Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, j := range c.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return job.Job{}, false
}

// FindExperience looks an experience up by id.
func (c *Cache) FindExperience(id string) (experience.Experience, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.experiences {
		if e.ID == id {
			return e, true
		}
	}
	return experience.Experience{}, false
}

// FindDocument looks a document record up by id.
func (c *Cache) FindDocument(id string) (document.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.documents {
		if d.ID == id {
			return d, true
		}
	}
	return document.Document{}, false
}
