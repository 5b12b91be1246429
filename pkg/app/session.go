package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
	"rmoflow/pkg/remind"
	"rmoflow/pkg/remote"
)

// Session owns the live subscriptions. It reacts to auth transitions:
// sign-in opens the four subscriptions, sign-out tears them down and
// clears the cache. Deliveries land in the cache; jobs deliveries also
// recompute the urgent reminders.
type Session struct {
	store remote.Store
	id    remote.Identity
	cache *cache.Cache
	log   logrus.FieldLogger
	emit  func(tea.Msg)
	now   func() time.Time

	mu         sync.Mutex
	unsubs     []remote.UnsubscribeFunc
	cancelAuth func()
}

func NewSession(store remote.Store, id remote.Identity, c *cache.Cache, emit func(tea.Msg), log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if emit == nil {
		emit = func(tea.Msg) {}
	}
	return &Session{
		store: store,
		id:    id,
		cache: c,
		log:   log,
		emit:  emit,
		now:   time.Now,
	}
}

// Start hooks the auth listener; the callback fires immediately with the
// current state, so a persisted session resubscribes without user action.
func (s *Session) Start() {
	s.mu.Lock()
	if s.cancelAuth != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	cancel := s.id.OnAuthStateChanged(s.onAuth)
	s.mu.Lock()
	s.cancelAuth = cancel
	s.mu.Unlock()
}

// Stop tears everything down.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancelAuth
	s.cancelAuth = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.teardown()
}

func (s *Session) onAuth(u *remote.User) {
	if u == nil {
		s.teardown()
		s.cache.Reset()
		s.emit(events.AuthChangedMsg{})
		return
	}
	s.log.WithField("uid", u.ID).Info("session started")
	s.subscribe(u.ID)
	s.emit(events.AuthChangedMsg{User: u})
}

func (s *Session) teardown() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

func (s *Session) subscribe(uid string) {
	s.teardown()

	specs := []struct {
		path   string
		opts   []remote.SubscribeOption
		onData func(remote.Delivery)
	}{
		{remote.UserDoc(uid), nil, s.onProfile},
		{remote.JobsPath(uid), []remote.SubscribeOption{remote.WithOrderBy("createdAt", true)}, s.onJobs},
		{remote.ExperiencesPath(uid), nil, s.onExperiences},
		{remote.DocumentsPath(uid), nil, s.onDocuments},
	}

	var unsubs []remote.UnsubscribeFunc
	for _, sp := range specs {
		path := sp.path
		unsub, err := s.store.Subscribe(path, sp.onData, func(err error) {
			// The last good snapshot stays in place.
			s.log.WithField("path", path).WithError(err).Error("subscription error")
		}, sp.opts...)
		if err != nil {
			s.log.WithField("path", path).WithError(err).Error("subscribe failed")
			continue
		}
		unsubs = append(unsubs, unsub)
	}

	s.mu.Lock()
	s.unsubs = unsubs
	s.mu.Unlock()
}

func (s *Session) onProfile(d remote.Delivery) {
	p, err := cache.NormalizeProfile(d)
	if err != nil {
		s.log.WithError(err).Error("bad profile delivery")
		return
	}
	s.cache.SetProfile(p)
}

func (s *Session) onJobs(d remote.Delivery) {
	jobs, err := cache.NormalizeJobs(d)
	if err != nil {
		s.log.WithError(err).Error("bad jobs delivery")
		return
	}
	s.cache.SetJobs(jobs)
	s.emit(events.RemindersMsg{Items: remind.UrgentJobs(jobs, s.now())})
}

func (s *Session) onExperiences(d remote.Delivery) {
	exps, err := cache.NormalizeExperiences(d)
	if err != nil {
		s.log.WithError(err).Error("bad experiences delivery")
		return
	}
	s.cache.SetExperiences(exps)
}

func (s *Session) onDocuments(d remote.Delivery) {
	docs, err := cache.NormalizeDocuments(d)
	if err != nil {
		s.log.WithError(err).Error("bad documents delivery")
		return
	}
	s.cache.SetDocuments(docs)
}
