package cache

import (
	"encoding/json"
	"testing"
	"time"

	"rmoflow/pkg/events"
	"rmoflow/pkg/job"
	"rmoflow/pkg/remote"
)

func TestReplaceSemantics(t *testing.T) {
	c := New()

	d1 := []job.Job{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	d2 := []job.Job{{ID: "b", Title: "B2"}}

	c.SetJobs(d1)
	c.SetJobs(d2)

	got := c.Jobs()
	if len(got) != 1 {
		t.Fatalf("slot should equal the second delivery exactly, got %d items", len(got))
	}
	if got[0].ID != "b" || got[0].Title != "B2" {
		t.Fatalf("residue from first delivery: %+v", got[0])
	}
	if _, ok := c.FindJob("a"); ok {
		t.Fatalf("item absent from the latest delivery must not linger")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New()
	c.SetJobs([]job.Job{{ID: "a", Title: "A"}})

	snap := c.Snapshot()
	snap.Jobs[0].Title = "mutated"

	if got := c.Jobs()[0].Title; got != "A" {
		t.Fatalf("snapshot mutation leaked into the cache: %q", got)
	}
}

func TestEventsEmittedPerReplacement(t *testing.T) {
	c := New()
	c.SetJobs([]job.Job{{ID: "a"}})

	select {
	case msg := <-c.Events():
		upd, ok := msg.(events.CacheUpdatedMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		if upd.Collection != events.CollectionJobs || upd.Count != 1 {
			t.Fatalf("unexpected payload: %+v", upd)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event emitted")
	}
}

func TestResetEmptiesEverySlot(t *testing.T) {
	c := New()
	c.SetJobs([]job.Job{{ID: "a"}})
	c.SetProfile(nil)
	c.Reset()

	snap := c.Snapshot()
	if len(snap.Jobs) != 0 || len(snap.Experiences) != 0 || len(snap.Documents) != 0 || snap.Profile != nil {
		t.Fatalf("reset left residue: %+v", snap)
	}
}

func TestNormalizeJobsAttachesIDAndParsesDates(t *testing.T) {
	raw := `{"jobTitle":"ED Reg","status":"Applied","closingDate":"2025-03-10T17:00:00Z","createdAt":"2025-01-01T00:00:00Z"}`
	delivery := remote.Delivery{
		Path: "users/u1/jobs",
		Docs: []remote.Doc{{ID: "j1", Data: json.RawMessage(raw)}},
	}

	jobs, err := NormalizeJobs(delivery)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	j := jobs[0]
	if j.ID != "j1" {
		t.Errorf("id = %q", j.ID)
	}
	if j.ClosingDate == nil || !j.ClosingDate.Equal(time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("closingDate = %v", j.ClosingDate)
	}
	if j.Status != job.StatusApplied {
		t.Errorf("status = %q", j.Status)
	}
}

func TestNormalizeProfileAbsent(t *testing.T) {
	p, err := NormalizeProfile(remote.Delivery{Path: "users/u1"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p != nil {
		t.Fatalf("absent document should normalize to nil, got %+v", p)
	}
}
