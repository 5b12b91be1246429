package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"rmoflow/pkg/remote"
)

// memoryStore is an in-process remote.Store with synchronous subscription
// redelivery, enough to drive the service and session in tests.
type memoryStore struct {
	mu   sync.Mutex
	seq  int
	docs map[string]map[string]json.RawMessage // collection -> id -> body

	subs []*memorySub

	failNext error
}

type memorySub struct {
	store  *memoryStore
	path   string
	opts   remote.SubscribeOptions
	onData func(remote.Delivery)
	gone   bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

func (m *memoryStore) collection(path string) map[string]json.RawMessage {
	if m.docs[path] == nil {
		m.docs[path] = make(map[string]json.RawMessage)
	}
	return m.docs[path]
}

func (m *memoryStore) Subscribe(path string, onData func(remote.Delivery), onErr func(error), opts ...remote.SubscribeOption) (remote.UnsubscribeFunc, error) {
	var o remote.SubscribeOptions
	for _, opt := range opts {
		opt(&o)
	}
	sub := &memorySub{store: m, path: path, opts: o, onData: onData}
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	sub.deliver()
	return func() {
		m.mu.Lock()
		sub.gone = true
		m.mu.Unlock()
	}, nil
}

func (s *memorySub) deliver() {
	s.onData(s.store.snapshot(s.path, s.opts))
}

func (m *memoryStore) snapshot(path string, o remote.SubscribeOptions) remote.Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remote.IsCollection(path) {
		var docs []remote.Doc
		for id, body := range m.docs[path] {
			docs = append(docs, remote.Doc{ID: id, Data: body})
		}
		sort.Slice(docs, func(i, j int) bool {
			if o.OrderBy == "" {
				return docs[i].ID < docs[j].ID
			}
			a := fieldString(docs[i].Data, o.OrderBy)
			b := fieldString(docs[j].Data, o.OrderBy)
			if o.Descending {
				return a > b
			}
			return a < b
		})
		return remote.Delivery{Path: path, Docs: docs}
	}
	coll, _ := remote.ParentCollection(path)
	segs := remote.Split(path)
	id := segs[len(segs)-1]
	if body, ok := m.docs[coll][id]; ok {
		return remote.Delivery{Path: path, Doc: &remote.Doc{ID: id, Data: body}}
	}
	return remote.Delivery{Path: path}
}

func fieldString(body json.RawMessage, field string) string {
	var all map[string]any
	_ = json.Unmarshal(body, &all)
	return fmt.Sprint(all[field])
}

func (m *memoryStore) redeliver() {
	m.mu.Lock()
	subs := append([]*memorySub(nil), m.subs...)
	m.mu.Unlock()
	for _, s := range subs {
		if !s.gone {
			s.deliver()
		}
	}
}

func (m *memoryStore) liveSubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if !s.gone {
			n++
		}
	}
	return n
}

func (m *memoryStore) fail(err error) { m.failNext = err }

func (m *memoryStore) takeErr() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memoryStore) Get(_ context.Context, docPath string) (*remote.Doc, error) {
	d := m.snapshot(docPath, remote.SubscribeOptions{})
	if d.Doc == nil {
		return nil, remote.ErrNotFound
	}
	return d.Doc, nil
}

func (m *memoryStore) Create(_ context.Context, collectionPath string, data any) (string, error) {
	if err := m.takeErr(); err != nil {
		return "", err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.seq++
	id := fmt.Sprintf("doc-%d", m.seq)
	m.collection(collectionPath)[id] = body
	m.mu.Unlock()
	m.redeliver()
	return id, nil
}

func (m *memoryStore) Set(_ context.Context, docPath string, data any) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	coll, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	segs := remote.Split(docPath)
	m.mu.Lock()
	m.collection(coll)[segs[len(segs)-1]] = body
	m.mu.Unlock()
	m.redeliver()
	return nil
}

func (m *memoryStore) Update(_ context.Context, docPath string, fields map[string]any) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	coll, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	segs := remote.Split(docPath)
	id := segs[len(segs)-1]
	m.mu.Lock()
	var all map[string]any
	if body, ok := m.collection(coll)[id]; ok {
		_ = json.Unmarshal(body, &all)
	}
	if all == nil {
		all = make(map[string]any)
	}
	for k, v := range fields {
		applyField(all, k, v)
	}
	body, _ := json.Marshal(all)
	m.collection(coll)[id] = body
	m.mu.Unlock()
	m.redeliver()
	return nil
}

func applyField(all map[string]any, key string, v any) {
	for {
		head, rest, nested := cutDot(key)
		if !nested {
			all[head] = v
			return
		}
		child, ok := all[head].(map[string]any)
		if !ok {
			child = make(map[string]any)
			all[head] = child
		}
		all, key = child, rest
	}
}

func cutDot(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func (m *memoryStore) Delete(_ context.Context, docPath string) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	coll, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	segs := remote.Split(docPath)
	m.mu.Lock()
	delete(m.collection(coll), segs[len(segs)-1])
	m.mu.Unlock()
	m.redeliver()
	return nil
}

func (m *memoryStore) BatchDelete(_ context.Context, collectionPath string, ids []string) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	m.mu.Lock()
	for _, id := range ids {
		delete(m.collection(collectionPath), id)
	}
	m.mu.Unlock()
	m.redeliver()
	return nil
}

// fakeIdentity is an in-memory remote.Identity.
type fakeIdentity struct {
	mu        sync.Mutex
	user      *remote.User
	listeners []remote.AuthStateFunc
	passwords map[string]string
	seq       int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{passwords: make(map[string]string)}
}

func (f *fakeIdentity) CurrentUser() *remote.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeIdentity) setUser(u *remote.User) {
	f.mu.Lock()
	f.user = u
	ls := append([]remote.AuthStateFunc(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(u)
	}
}

func (f *fakeIdentity) SignUp(_ context.Context, name, email, password string) (*remote.User, error) {
	f.mu.Lock()
	f.seq++
	u := &remote.User{ID: fmt.Sprintf("user-%d", f.seq), DisplayName: name, Email: email}
	f.passwords[email] = password
	f.mu.Unlock()
	f.setUser(u)
	return u, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*remote.User, error) {
	f.mu.Lock()
	stored, ok := f.passwords[email]
	f.mu.Unlock()
	if !ok || stored != password {
		return nil, fmt.Errorf("bad credentials")
	}
	u := &remote.User{ID: "user-1", Email: email}
	f.setUser(u)
	return u, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.setUser(nil)
	return nil
}

func (f *fakeIdentity) UpdateProfileFields(_ context.Context, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return fmt.Errorf("signed out")
	}
	if name, ok := fields["displayName"]; ok {
		f.user.DisplayName = name
	}
	if url, ok := fields["photoURL"]; ok {
		f.user.PhotoURL = url
	}
	return nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return fmt.Errorf("signed out")
	}
	f.passwords[f.user.Email] = newPassword
	return nil
}

func (f *fakeIdentity) OnAuthStateChanged(cb remote.AuthStateFunc) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, cb)
	u := f.user
	f.mu.Unlock()
	cb(u)
	return func() {}
}

// memoryBlobs is an in-memory remote.BlobStore.
type memoryBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	deleted   []string
	uploadErr error
	// block, when set, is closed by the test to let Upload finish.
	block chan struct{}
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string][]byte)}
}

func (b *memoryBlobs) Upload(ctx context.Context, path string, r io.Reader, size int64, onProgress func(int)) (string, error) {
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	if onProgress != nil {
		onProgress(0)
	}
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	b.mu.Lock()
	b.blobs[path] = buf.Bytes()
	b.mu.Unlock()
	if onProgress != nil {
		onProgress(100)
	}
	return b.PublicURL(path), nil
}

func (b *memoryBlobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, path)
	b.deleted = append(b.deleted, path)
	return nil
}

func (b *memoryBlobs) PublicURL(path string) string {
	return "mem://" + path
}
