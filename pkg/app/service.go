// Package app is the action layer: it validates user input, writes through
// the remote adapters, and lets the resulting subscription deliveries update
// the cache. Service methods never mutate the cache directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/notify"
	"rmoflow/pkg/profile"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/timeutil"
)

var (
	ErrSignedOut     = errors.New("app: not signed in")
	ErrTitleRequired = errors.New("app: a title is required")
	ErrBadEmail      = errors.New("app: email address looks invalid")
	ErrShortPassword = errors.New("app: password must be at least 6 characters")
)

// Service executes user actions. Reads come from the live cache; writes go
// to the store and flow back through subscriptions.
type Service struct {
	store remote.Store
	blobs remote.BlobStore
	id    remote.Identity
	cache *cache.Cache
	toast *notify.Hub
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store remote.Store, blobs remote.BlobStore, id remote.Identity, c *cache.Cache, toast *notify.Hub, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if toast == nil {
		toast = notify.NewHub()
	}
	return &Service{
		store: store,
		blobs: blobs,
		id:    id,
		cache: c,
		toast: toast,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) uid() (string, error) {
	u := s.id.CurrentUser()
	if u == nil {
		return "", ErrSignedOut
	}
	return u.ID, nil
}

// SaveJob creates the job when it has no id, otherwise overwrites the whole
// document. Validation happens before any network call.
func (s *Service) SaveJob(ctx context.Context, j job.Job) (string, error) {
	if strings.TrimSpace(j.Title) == "" {
		return "", ErrTitleRequired
	}
	uid, err := s.uid()
	if err != nil {
		return "", err
	}

	if j.ID == "" {
		j.CreatedAt = timeutil.Timestamp{Time: s.now()}
		id, err := s.store.Create(ctx, remote.JobsPath(uid), j)
		if err != nil {
			s.toast.Error("Could not save the application")
			return "", fmt.Errorf("create job: %w", err)
		}
		s.toast.Success("Application saved")
		return id, nil
	}

	id := j.ID
	j.ID = ""
	if err := s.store.Set(ctx, remote.JobDoc(uid, id), j); err != nil {
		s.toast.Error("Could not save the application")
		return "", fmt.Errorf("save job %s: %w", id, err)
	}
	s.toast.Success("Application saved")
	return id, nil
}

// DeleteJob removes one application.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, remote.JobDoc(uid, id)); err != nil {
		s.toast.Error("Could not delete the application")
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	s.toast.Success("Application deleted")
	return nil
}

// DeleteJobs removes the selected applications in one batch.
func (s *Service) DeleteJobs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}
	if err := s.store.BatchDelete(ctx, remote.JobsPath(uid), ids); err != nil {
		s.toast.Error("Could not delete the selected applications")
		return fmt.Errorf("batch delete: %w", err)
	}
	s.toast.Success(fmt.Sprintf("Deleted %d applications", len(ids)))
	return nil
}

// DuplicateJob derives a fresh draft from an existing application and
// persists it.
func (s *Service) DuplicateJob(ctx context.Context, id string) (string, error) {
	uid, err := s.uid()
	if err != nil {
		return "", err
	}
	src, ok := s.cache.FindJob(id)
	if !ok {
		return "", fmt.Errorf("duplicate job: %w", remote.ErrNotFound)
	}
	d := src.Duplicate()
	d.CreatedAt = timeutil.Timestamp{Time: s.now()}
	newID, err := s.store.Create(ctx, remote.JobsPath(uid), d)
	if err != nil {
		s.toast.Error("Could not duplicate the application")
		return "", fmt.Errorf("duplicate job %s: %w", id, err)
	}
	s.toast.Success("Application duplicated")
	return newID, nil
}

// SetFollowUpComplete flips the single follow-up flag without touching the
// rest of the document.
func (s *Service) SetFollowUpComplete(ctx context.Context, id string, done bool) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	fields := map[string]any{"followUpComplete": done}
	if err := s.store.Update(ctx, remote.JobDoc(uid, id), fields); err != nil {
		return fmt.Errorf("update follow-up on %s: %w", id, err)
	}
	return nil
}

// SaveExperience creates or overwrites one reusable answer.
func (s *Service) SaveExperience(ctx context.Context, e experience.Experience) (string, error) {
	if strings.TrimSpace(e.Title) == "" {
		return "", ErrTitleRequired
	}
	uid, err := s.uid()
	if err != nil {
		return "", err
	}

	if e.ID == "" {
		e.CreatedAt = timeutil.Timestamp{Time: s.now()}
		id, err := s.store.Create(ctx, remote.ExperiencesPath(uid), e)
		if err != nil {
			s.toast.Error("Could not save the experience")
			return "", fmt.Errorf("create experience: %w", err)
		}
		s.toast.Success("Experience saved")
		return id, nil
	}

	id := e.ID
	e.ID = ""
	if err := s.store.Set(ctx, remote.ExperienceDoc(uid, id), e); err != nil {
		s.toast.Error("Could not save the experience")
		return "", fmt.Errorf("save experience %s: %w", id, err)
	}
	s.toast.Success("Experience saved")
	return id, nil
}

// DeleteExperience removes one reusable answer.
func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, remote.ExperienceDoc(uid, id)); err != nil {
		s.toast.Error("Could not delete the experience")
		return fmt.Errorf("delete experience %s: %w", id, err)
	}
	s.toast.Success("Experience deleted")
	return nil
}

// ToggleFavorite flips the favorite flag, writing only that field.
func (s *Service) ToggleFavorite(ctx context.Context, id string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	e, ok := s.cache.FindExperience(id)
	if !ok {
		return fmt.Errorf("toggle favorite: %w", remote.ErrNotFound)
	}
	fields := map[string]any{"isFavorite": !e.Favorite}
	if err := s.store.Update(ctx, remote.ExperienceDoc(uid, id), fields); err != nil {
		return fmt.Errorf("toggle favorite on %s: %w", id, err)
	}
	return nil
}

// SaveProfileNames updates the editable name fields, mirrored to both the
// profile document and the identity provider.
func (s *Service) SaveProfileNames(ctx context.Context, fullName, firstName, lastName string) error {
	if strings.TrimSpace(fullName) == "" {
		return ErrTitleRequired
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}
	fields := map[string]any{
		"fullName":  fullName,
		"firstName": firstName,
		"lastName":  lastName,
	}
	if err := s.store.Update(ctx, remote.UserDoc(uid), fields); err != nil {
		s.toast.Error("Could not update the profile")
		return fmt.Errorf("update profile: %w", err)
	}
	if err := s.id.UpdateProfileFields(ctx, map[string]string{"displayName": fullName}); err != nil {
		s.log.WithError(err).Warn("identity display name not updated")
	}
	s.toast.Success("Profile updated")
	return nil
}

// ChangePassword sets a new password after local validation.
func (s *Service) ChangePassword(ctx context.Context, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrShortPassword
	}
	if _, err := s.uid(); err != nil {
		return err
	}
	if err := s.id.UpdatePassword(ctx, newPassword); err != nil {
		s.toast.Error("Could not change the password")
		return fmt.Errorf("update password: %w", err)
	}
	s.toast.Success("Password changed")
	return nil
}

// SetTheme persists the theme preference as a nested field update.
func (s *Service) SetTheme(ctx context.Context, t profile.Theme) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	fields := map[string]any{"preferences.theme": string(t)}
	if err := s.store.Update(ctx, remote.UserDoc(uid), fields); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

// SetTimezone persists the preferred IANA timezone.
func (s *Service) SetTimezone(ctx context.Context, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("app: unknown timezone %q", tz)
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}
	fields := map[string]any{"preferences.timezone": tz}
	if err := s.store.Update(ctx, remote.UserDoc(uid), fields); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	return nil
}

// SignUp registers a new account and seeds its profile document.
func (s *Service) SignUp(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return ErrTitleRequired
	}
	if !strings.Contains(email, "@") {
		return ErrBadEmail
	}
	if len(password) < 6 {
		return ErrShortPassword
	}
	u, err := s.id.SignUp(ctx, name, email, password)
	if err != nil {
		s.toast.Error("Sign up failed")
		return fmt.Errorf("sign up: %w", err)
	}
	p := profile.Profile{
		FullName:  name,
		Email:     email,
		CreatedAt: timeutil.Timestamp{Time: s.now()},
	}
	if first, last, ok := strings.Cut(name, " "); ok {
		p.FirstName, p.LastName = first, last
	}
	if err := s.store.Set(ctx, remote.UserDoc(u.ID), p); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	s.toast.Success("Welcome, " + p.DisplayName())
	return nil
}

// SignIn authenticates; the session reacts to the resulting auth event.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	if !strings.Contains(email, "@") {
		return ErrBadEmail
	}
	if _, err := s.id.SignIn(ctx, email, password); err != nil {
		s.toast.Error("Sign in failed")
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// SignOut ends the session; subscription teardown happens via the auth
// listener, not here.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.id.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
