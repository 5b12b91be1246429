// Package local backs the remote contracts with the local filesystem:
// documents in a diskv tree, blobs as plain files, identity in a bcrypt
// user table. A filesystem watcher feeds subscriptions, so edits made by
// another process show up like any remote change.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"

	"rmoflow/pkg/remote"
)

const docsDir = "docs"

// Store is a remote.Store on a diskv tree. Document paths map directly to
// directories; every write renotifies the affected subscriptions with a
// fresh wholesale snapshot.
type Store struct {
	d    *diskv.Diskv
	base string
	log  logrus.FieldLogger

	mu     sync.Mutex
	seq    int
	subs   map[int]*subscription
	cancel context.CancelFunc
}

func NewStore(basePath string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	base := filepath.Join(basePath, docsDir)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("local: ensure base path: %w", err)
	}
	s := &Store{
		d: diskv.New(diskv.Options{
			BasePath:          base,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      1024 * 1024,
		}),
		base: base,
		log:  log,
		subs: make(map[int]*subscription),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if err := s.watch(ctx); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// Close stops the watcher and ends every subscription.
func (s *Store) Close() {
	s.cancel()
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[int]*subscription)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.stop()
	}
}

// keyToPath maps a document path ("users/u1/jobs/j1") onto the disk
// layout: directories per segment, the last segment as the file.
func keyToPath(key string) *diskv.PathKey {
	segs := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     segs[:len(segs)-1],
		FileName: segs[len(segs)-1] + ".json",
	}
}

func pathToKey(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, ".json")
	if len(pk.Path) == 0 {
		return name
	}
	return strings.Join(pk.Path, "/") + "/" + name
}

type subscription struct {
	id     int
	path   string
	opts   remote.SubscribeOptions
	onData func(remote.Delivery)
	onErr  func(error)

	ch   chan remote.Delivery
	once sync.Once
	done chan struct{}
}

func (sub *subscription) stop() {
	sub.once.Do(func() { close(sub.done) })
}

// run delivers snapshots in arrival order on a dedicated goroutine, so a
// slow consumer never reorders or interleaves deliveries.
func (sub *subscription) run() {
	for {
		select {
		case <-sub.done:
			return
		case d := <-sub.ch:
			sub.onData(d)
		}
	}
}

func (sub *subscription) enqueue(d remote.Delivery) {
	select {
	case sub.ch <- d:
	default:
		// Full buffer means older snapshots are stale anyway; drop the
		// oldest and retry so the newest always lands.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- d:
		default:
		}
	}
}

func (s *Store) Subscribe(path string, onData func(remote.Delivery), onErr func(error), opts ...remote.SubscribeOption) (remote.UnsubscribeFunc, error) {
	if onData == nil {
		return nil, fmt.Errorf("local: subscribe %q: onData required", path)
	}
	var o remote.SubscribeOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	s.seq++
	sub := &subscription{
		id:     s.seq,
		path:   path,
		opts:   o,
		onData: onData,
		onErr:  onErr,
		ch:     make(chan remote.Delivery, 16),
		done:   make(chan struct{}),
	}
	s.subs[sub.id] = sub
	s.mu.Unlock()

	go sub.run()
	sub.enqueue(s.snapshot(path, o))

	return func() {
		s.mu.Lock()
		delete(s.subs, sub.id)
		s.mu.Unlock()
		sub.stop()
	}, nil
}

// notify redelivers to every subscription watching the changed collection:
// the collection's own subscribers plus single-document subscribers whose
// parent is that collection.
func (s *Store) notify(collectionPath string) {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.path == collectionPath {
			subs = append(subs, sub)
			continue
		}
		if parent, err := remote.ParentCollection(sub.path); err == nil && parent == collectionPath {
			subs = append(subs, sub)
		}
		// A document subscription is also affected when the "collection"
		// above it is really its own path prefix, e.g. users/u1 under
		// users.
		if !remote.IsCollection(sub.path) && strings.HasPrefix(collectionPath+"/", sub.path+"/") {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.enqueue(s.snapshot(sub.path, sub.opts))
	}
}

func (s *Store) snapshot(path string, o remote.SubscribeOptions) remote.Delivery {
	if remote.IsCollection(path) {
		return remote.Delivery{Path: path, Docs: s.readCollection(path, o)}
	}
	d := remote.Delivery{Path: path}
	if data, err := s.d.Read(path); err == nil {
		segs := remote.Split(path)
		d.Doc = &remote.Doc{ID: segs[len(segs)-1], Data: data}
	}
	return d
}

func (s *Store) readCollection(path string, o remote.SubscribeOptions) []remote.Doc {
	var docs []remote.Doc
	prefix := path + "/"
	for key := range s.d.Keys(nil) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		// Only direct children; deeper keys belong to subcollections.
		rest := strings.TrimPrefix(key, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		data, err := s.d.Read(key)
		if err != nil {
			s.log.WithField("key", key).WithError(err).Warn("unreadable document")
			continue
		}
		docs = append(docs, remote.Doc{ID: rest, Data: data})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if o.OrderBy == "" {
			return docs[i].ID < docs[j].ID
		}
		a := rawField(docs[i].Data, o.OrderBy)
		b := rawField(docs[j].Data, o.OrderBy)
		if a == b {
			return docs[i].ID < docs[j].ID
		}
		if o.Descending {
			return a > b
		}
		return a < b
	})
	return docs
}

// rawField pulls a top-level field as a comparable string. Timestamps are
// RFC3339 so lexical order is chronological order.
func rawField(data json.RawMessage, field string) string {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	v, ok := m[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (s *Store) Get(_ context.Context, docPath string) (*remote.Doc, error) {
	if remote.IsCollection(docPath) {
		return nil, fmt.Errorf("local: %q is not a document path", docPath)
	}
	data, err := s.d.Read(docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, remote.ErrNotFound
		}
		return nil, fmt.Errorf("local: read %q: %w", docPath, err)
	}
	segs := remote.Split(docPath)
	return &remote.Doc{ID: segs[len(segs)-1], Data: data}, nil
}

func (s *Store) Create(_ context.Context, collectionPath string, data any) (string, error) {
	if !remote.IsCollection(collectionPath) {
		return "", fmt.Errorf("local: %q is not a collection path", collectionPath)
	}
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("local: encode document: %w", err)
	}
	id := uuid.New().String()
	if err := s.d.Write(remote.Join(collectionPath, id), body); err != nil {
		return "", fmt.Errorf("local: write document: %w", err)
	}
	s.notify(collectionPath)
	return id, nil
}

func (s *Store) Set(_ context.Context, docPath string, data any) error {
	parent, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("local: encode document: %w", err)
	}
	if err := s.d.Write(docPath, body); err != nil {
		return fmt.Errorf("local: write %q: %w", docPath, err)
	}
	s.notify(parent)
	return nil
}

func (s *Store) Update(_ context.Context, docPath string, fields map[string]any) error {
	parent, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	all := make(map[string]any)
	if data, err := s.d.Read(docPath); err == nil {
		if err := json.Unmarshal(data, &all); err != nil {
			return fmt.Errorf("local: decode %q: %w", docPath, err)
		}
	}
	for key, v := range fields {
		applyField(all, key, v)
	}
	body, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("local: encode document: %w", err)
	}
	if err := s.d.Write(docPath, body); err != nil {
		return fmt.Errorf("local: write %q: %w", docPath, err)
	}
	s.notify(parent)
	return nil
}

// applyField merges one update key, where dots address nested objects.
func applyField(all map[string]any, key string, v any) {
	for {
		head, rest, nested := strings.Cut(key, ".")
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

func (s *Store) Delete(_ context.Context, docPath string) error {
	parent, err := remote.ParentCollection(docPath)
	if err != nil {
		return err
	}
	if err := s.d.Erase(docPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local: erase %q: %w", docPath, err)
	}
	s.notify(parent)
	return nil
}

func (s *Store) BatchDelete(_ context.Context, collectionPath string, ids []string) error {
	if !remote.IsCollection(collectionPath) {
		return fmt.Errorf("local: %q is not a collection path", collectionPath)
	}
	for _, id := range ids {
		if err := s.d.Erase(remote.Join(collectionPath, id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("local: erase %q: %w", id, err)
		}
	}
	s.notify(collectionPath)
	return nil
}
