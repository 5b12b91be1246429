package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"rmoflow/pkg/cache"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/timeutil"
)

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc   *Service
	store *memoryStore
	id    *fakeIdentity
	blobs *memoryBlobs
	cache *cache.Cache
	sess  *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newMemoryStore()
	id := newFakeIdentity()
	blobs := newMemoryBlobs()
	c := cache.New()

	sess := NewSession(store, id, c, nil, nil)
	sess.now = func() time.Time { return testNow }
	sess.Start()
	t.Cleanup(sess.Stop)

	svc := NewService(store, blobs, id, c, nil, nil)
	svc.now = func() time.Time { return testNow }

	id.setUser(&remote.User{ID: "u1", Email: "u1@example.com"})
	return &harness{svc: svc, store: store, id: id, blobs: blobs, cache: c, sess: sess}
}

func TestSaveJobCreates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, err := h.svc.SaveJob(ctx, job.Job{Title: "ED Registrar", State: "NSW"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("no id returned")
	}

	got, ok := h.cache.FindJob(id)
	if !ok {
		t.Fatal("job did not arrive through the subscription")
	}
	if got.Title != "ED Registrar" {
		t.Fatalf("title = %q", got.Title)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Fatalf("createdAt = %v", got.CreatedAt)
	}
}

func TestSaveJobValidatesBeforeWriting(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.SaveJob(context.Background(), job.Job{Title: "   "})
	if err != ErrTitleRequired {
		t.Fatalf("err = %v", err)
	}
	if n := len(h.cache.Jobs()); n != 0 {
		t.Fatalf("invalid job reached the store: %d jobs", n)
	}
}

func TestSaveJobRequiresSignIn(t *testing.T) {
	h := newHarness(t)
	h.id.setUser(nil)

	_, err := h.svc.SaveJob(context.Background(), job.Job{Title: "ED Registrar"})
	if err != ErrSignedOut {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveJobOverwritesWholeDocument(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, err := h.svc.SaveJob(ctx, job.Job{Title: "ED Registrar", Hospital: "RPA"})
	if err != nil {
		t.Fatal(err)
	}

	edited, _ := h.cache.FindJob(id)
	edited.Title = "ICU Registrar"
	edited.Hospital = ""
	if _, err := h.svc.SaveJob(ctx, edited); err != nil {
		t.Fatal(err)
	}

	got, _ := h.cache.FindJob(id)
	if got.Title != "ICU Registrar" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Hospital != "" {
		t.Fatalf("cleared field survived the overwrite: %q", got.Hospital)
	}
}

func TestDeleteJobsBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		id, err := h.svc.SaveJob(ctx, job.Job{Title: title})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	if err := h.svc.DeleteJobs(ctx, ids[:2]); err != nil {
		t.Fatal(err)
	}
	left := h.cache.Jobs()
	if len(left) != 1 || left[0].Title != "C" {
		t.Fatalf("remaining = %+v", left)
	}
}

func TestDuplicateJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	applied := timeutil.Timestamp{Time: testNow.Add(-48 * time.Hour)}
	srcID, err := h.svc.SaveJob(ctx, job.Job{
		Title:       "ED Registrar",
		Status:      job.StatusApplied,
		DateApplied: &applied,
	})
	if err != nil {
		t.Fatal(err)
	}

	dupID, err := h.svc.DuplicateJob(ctx, srcID)
	if err != nil {
		t.Fatal(err)
	}
	dup, ok := h.cache.FindJob(dupID)
	if !ok {
		t.Fatal("duplicate not in cache")
	}
	if dup.Title != "ED Registrar (Copy)" {
		t.Fatalf("title = %q", dup.Title)
	}
	if dup.Status != job.StatusIdentified {
		t.Fatalf("status = %q", dup.Status)
	}
	if dup.DateApplied != nil || dup.ClosingDate != nil {
		t.Fatalf("dates not cleared: %+v", dup)
	}
}

func TestDuplicateUnknownJob(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.DuplicateJob(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestSetFollowUpCompleteTouchesOneField(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, err := h.svc.SaveJob(ctx, job.Job{Title: "ED Registrar", Hospital: "RPA"})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.SetFollowUpComplete(ctx, id, true); err != nil {
		t.Fatal(err)
	}

	got, _ := h.cache.FindJob(id)
	if !got.FollowUpComplete {
		t.Fatal("flag not set")
	}
	if got.Hospital != "RPA" {
		t.Fatalf("unrelated field changed: %q", got.Hospital)
	}
}

func TestToggleFavorite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, err := h.svc.SaveExperience(ctx, experience.Experience{
		Title:     "Night shift triage",
		Paragraph: "Ran triage solo overnight.",
		Tags:      []string{"triage"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.svc.ToggleFavorite(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, _ := h.cache.FindExperience(id)
	if !got.Favorite {
		t.Fatal("not favorited")
	}
	if got.Paragraph != "Ran triage solo overnight." {
		t.Fatalf("unrelated field changed: %q", got.Paragraph)
	}

	if err := h.svc.ToggleFavorite(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, _ = h.cache.FindExperience(id)
	if got.Favorite {
		t.Fatal("second toggle did not clear the flag")
	}
}

func TestSetThemePreservesOtherPreferences(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.svc.SetTimezone(ctx, "Australia/Sydney"); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.SetTheme(ctx, "dark"); err != nil {
		t.Fatal(err)
	}

	p := h.cache.Profile()
	if p == nil {
		t.Fatal("no profile in cache")
	}
	if p.Prefs.Theme != "dark" {
		t.Fatalf("theme = %q", p.Prefs.Theme)
	}
	if p.Prefs.Timezone != "Australia/Sydney" {
		t.Fatalf("timezone lost on nested update: %q", p.Prefs.Timezone)
	}
}

func TestSetTimezoneRejectsUnknownZone(t *testing.T) {
	h := newHarness(t)

	err := h.svc.SetTimezone(context.Background(), "Mars/Olympus")
	if err == nil {
		t.Fatal("bad zone accepted")
	}
}

func TestChangePasswordValidation(t *testing.T) {
	h := newHarness(t)

	if err := h.svc.ChangePassword(context.Background(), "abc"); err != ErrShortPassword {
		t.Fatalf("err = %v", err)
	}
}

func TestSignUpSeedsProfile(t *testing.T) {
	store := newMemoryStore()
	id := newFakeIdentity()
	c := cache.New()
	sess := NewSession(store, id, c, nil, nil)
	sess.Start()
	defer sess.Stop()

	svc := NewService(store, newMemoryBlobs(), id, c, nil, nil)
	svc.now = func() time.Time { return testNow }

	if err := svc.SignUp(context.Background(), "Riley Moore", "riley@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}

	p := c.Profile()
	if p == nil {
		t.Fatal("profile not seeded")
	}
	if p.FullName != "Riley Moore" || p.FirstName != "Riley" || p.LastName != "Moore" {
		t.Fatalf("profile = %+v", p)
	}
}
