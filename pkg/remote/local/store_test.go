package local

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"rmoflow/pkg/remote"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestKeyTransforms(t *testing.T) {
	cases := []string{
		"users/u1",
		"users/u1/jobs/j1",
	}
	for _, key := range cases {
		pk := keyToPath(key)
		if got := pathToKey(pk); got != key {
			t.Errorf("round trip %q -> %q", key, got)
		}
	}
	pk := keyToPath("users/u1/jobs/j1")
	if pk.FileName != "j1.json" {
		t.Errorf("filename = %q", pk.FileName)
	}
	if len(pk.Path) != 3 || pk.Path[0] != "users" || pk.Path[2] != "jobs" {
		t.Errorf("path = %v", pk.Path)
	}
}

func TestCreateGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "users/u1/jobs", map[string]any{"jobTitle": "ED Registrar"})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := s.Get(ctx, remote.Join("users/u1/jobs", id))
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		t.Fatal(err)
	}
	if body["jobTitle"] != "ED Registrar" {
		t.Fatalf("body = %v", body)
	}

	if err := s.Delete(ctx, remote.Join("users/u1/jobs", id)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, remote.Join("users/u1/jobs", id)); err != remote.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateMergesAndNests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "users/u1", map[string]any{
		"fullName":    "Riley Moore",
		"preferences": map[string]any{"timezone": "Australia/Sydney"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "users/u1", map[string]any{
		"preferences.theme": "dark",
	}); err != nil {
		t.Fatal(err)
	}

	doc, err := s.Get(ctx, "users/u1")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		FullName    string `json:"fullName"`
		Preferences struct {
			Theme    string `json:"theme"`
			Timezone string `json:"timezone"`
		} `json:"preferences"`
	}
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		t.Fatal(err)
	}
	if body.FullName != "Riley Moore" {
		t.Fatalf("fullName = %q", body.FullName)
	}
	if body.Preferences.Theme != "dark" || body.Preferences.Timezone != "Australia/Sydney" {
		t.Fatalf("preferences = %+v", body.Preferences)
	}
}

type deliveryLog struct {
	mu   sync.Mutex
	got  []remote.Delivery
	wake chan struct{}
}

func newDeliveryLog() *deliveryLog {
	return &deliveryLog{wake: make(chan struct{}, 16)}
}

func (l *deliveryLog) onData(d remote.Delivery) {
	l.mu.Lock()
	l.got = append(l.got, d)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *deliveryLog) waitFor(t *testing.T, pred func([]remote.Delivery) bool) []remote.Delivery {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		l.mu.Lock()
		got := append([]remote.Delivery(nil), l.got...)
		l.mu.Unlock()
		if pred(got) {
			return got
		}
		select {
		case <-l.wake:
		case <-deadline:
			t.Fatalf("condition never held; deliveries = %d", len(got))
		}
	}
}

func TestSubscribeDeliversInitialSnapshotThenChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, "users/u1/jobs", map[string]any{"jobTitle": "A"}); err != nil {
		t.Fatal(err)
	}

	log := newDeliveryLog()
	unsub, err := s.Subscribe("users/u1/jobs", log.onData, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()

	log.waitFor(t, func(ds []remote.Delivery) bool {
		return len(ds) >= 1 && len(ds[0].Docs) == 1
	})

	if _, err := s.Create(ctx, "users/u1/jobs", map[string]any{"jobTitle": "B"}); err != nil {
		t.Fatal(err)
	}
	log.waitFor(t, func(ds []remote.Delivery) bool {
		last := ds[len(ds)-1]
		return len(last.Docs) == 2
	})
}

func TestSubscribeOrderByDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, j := range []map[string]any{
		{"jobTitle": "old", "createdAt": "2025-01-01T00:00:00Z"},
		{"jobTitle": "new", "createdAt": "2025-03-01T00:00:00Z"},
		{"jobTitle": "mid", "createdAt": "2025-02-01T00:00:00Z"},
	} {
		if _, err := s.Create(ctx, "users/u1/jobs", j); err != nil {
			t.Fatal(err)
		}
	}

	log := newDeliveryLog()
	unsub, err := s.Subscribe("users/u1/jobs", log.onData, nil,
		remote.WithOrderBy("createdAt", true))
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()

	ds := log.waitFor(t, func(ds []remote.Delivery) bool { return len(ds) >= 1 })
	titles := make([]string, 0, 3)
	for _, doc := range ds[0].Docs {
		var m map[string]any
		_ = json.Unmarshal(doc.Data, &m)
		titles = append(titles, m["jobTitle"].(string))
	}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v", titles)
		}
	}
}

func TestDocumentSubscription(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	log := newDeliveryLog()
	unsub, err := s.Subscribe("users/u1", log.onData, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()

	// Initial snapshot for a missing document carries no Doc.
	ds := log.waitFor(t, func(ds []remote.Delivery) bool { return len(ds) >= 1 })
	if ds[0].Doc != nil {
		t.Fatalf("missing doc delivered as %+v", ds[0].Doc)
	}

	if err := s.Set(ctx, "users/u1", map[string]any{"fullName": "Riley"}); err != nil {
		t.Fatal(err)
	}
	log.waitFor(t, func(ds []remote.Delivery) bool {
		last := ds[len(ds)-1]
		return last.Doc != nil && last.Doc.ID == "u1"
	})
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	log := newDeliveryLog()
	unsub, err := s.Subscribe("users/u1/jobs", log.onData, nil)
	if err != nil {
		t.Fatal(err)
	}
	log.waitFor(t, func(ds []remote.Delivery) bool { return len(ds) >= 1 })
	unsub()

	if _, err := s.Create(ctx, "users/u1/jobs", map[string]any{"jobTitle": "A"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(250 * time.Millisecond)

	log.mu.Lock()
	n := len(log.got)
	log.mu.Unlock()
	if n != 1 {
		t.Fatalf("deliveries after unsubscribe = %d", n)
	}
}

func TestBatchDeleteNotifiesOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		id, err := s.Create(ctx, "users/u1/jobs", map[string]any{"jobTitle": title})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	log := newDeliveryLog()
	unsub, err := s.Subscribe("users/u1/jobs", log.onData, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()
	log.waitFor(t, func(ds []remote.Delivery) bool { return len(ds) >= 1 })

	if err := s.BatchDelete(ctx, "users/u1/jobs", ids[:2]); err != nil {
		t.Fatal(err)
	}
	log.waitFor(t, func(ds []remote.Delivery) bool {
		last := ds[len(ds)-1]
		return len(last.Docs) == 1
	})
}
