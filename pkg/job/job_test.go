package job

import (
	"testing"
	"time"

	"rmoflow/pkg/timeutil"
)

func ts(t time.Time) *timeutil.Timestamp {
	v := timeutil.At(t)
	return &v
}

func TestDuplicateDerivation(t *testing.T) {
	src := Job{
		ID:              "abc123",
		Title:           "ED Registrar",
		Hospital:        "Westmead",
		State:           "NSW",
		JobCode:         "REQ-9915",
		ApplicationType: TypeDirectHospital,
		RoleLevel:       RoleRegistrar,
		Status:          StatusApplied,
		ClosingDate:     ts(time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)),
		DateApplied:     ts(time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)),
		FollowUpDate:    ts(time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC)),
		CreatedAt:       timeutil.At(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)),
		SelectionCriteria: []CriteriaEntry{
			{Criterion: "Teamwork", Response: "Led the night team."},
		},
		Documents: []DocumentRef{{ID: "d1", Name: "CV.pdf", URL: "u", Type: "self-submitted"}},
	}

	d := src.Duplicate()

	if d.ID != "" {
		t.Errorf("id should be cleared, got %q", d.ID)
	}
	if d.Title != "ED Registrar (Copy)" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Status != StatusIdentified {
		t.Errorf("status = %q", d.Status)
	}
	if d.DateApplied != nil || d.ClosingDate != nil {
		t.Errorf("applied/closing dates should be nulled: %v %v", d.DateApplied, d.ClosingDate)
	}
	if !d.CreatedAt.IsZero() {
		t.Errorf("createdAt should be cleared for re-assignment on persist")
	}
	// Everything else carries over, including criteria and doc refs.
	if d.Hospital != src.Hospital || d.State != src.State || d.JobCode != src.JobCode {
		t.Errorf("plain fields should be copied")
	}
	if d.FollowUpDate == nil || !d.FollowUpDate.Equal(src.FollowUpDate.Time) {
		t.Errorf("follow-up date should be kept")
	}
	if len(d.SelectionCriteria) != 1 || d.SelectionCriteria[0].Response != "Led the night team." {
		t.Errorf("selection criteria should be copied: %+v", d.SelectionCriteria)
	}
	if len(d.Documents) != 1 || d.Documents[0].ID != "d1" {
		t.Errorf("document refs should be copied: %+v", d.Documents)
	}

	// The copy must not alias the source's slices.
	d.SelectionCriteria[0].Response = "changed"
	if src.SelectionCriteria[0].Response == "changed" {
		t.Errorf("duplicate shares criteria backing array with source")
	}
}

func TestMatchesSearchesEverything(t *testing.T) {
	j := Job{
		Title:        "ED Reg",
		Hospital:     "Royal Melbourne",
		TrackerNotes: "spoke to Dr Singh about roster",
		SelectionCriteria: []CriteriaEntry{
			{Criterion: "Communication", Response: "Handled escalations"},
		},
	}

	for _, term := range []string{"reg", "MELBOURNE", "singh", "escalations", ""} {
		if !j.Matches(term) {
			t.Errorf("expected match for %q", term)
		}
	}
	if j.Matches("paediatrics") {
		t.Errorf("unexpected match")
	}
}

func TestClosedSet(t *testing.T) {
	for _, s := range []Status{StatusUnsuccessful, StatusClosed, StatusOfferDeclined} {
		if !s.IsClosed() {
			t.Errorf("%q should be closed", s)
		}
	}
	for _, s := range []Status{StatusIdentified, StatusPreparing, StatusApplied, StatusInterviewOffered, StatusOfferReceived} {
		if s.IsClosed() {
			t.Errorf("%q should not be closed", s)
		}
	}
}
