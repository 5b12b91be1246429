package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rmoflow/pkg/remote"
)

const usersFile = "users.json"

var (
	ErrBadCredentials = errors.New("local: wrong email or password")
	ErrEmailTaken     = errors.New("local: an account with that email exists")
)

type userRecord struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	PhotoURL     string `json:"photoURL,omitempty"`
	PasswordHash string `json:"passwordHash"`
}

// Identity is a remote.Identity backed by a bcrypt-hashed user table on
// disk. One process, one signed-in user at a time.
type Identity struct {
	path string

	mu        sync.Mutex
	users     map[string]userRecord // by email
	current   *remote.User
	seq       int
	listeners map[int]remote.AuthStateFunc
}

func NewIdentity(basePath string) (*Identity, error) {
	id := &Identity{
		path:      filepath.Join(basePath, usersFile),
		users:     make(map[string]userRecord),
		listeners: make(map[int]remote.AuthStateFunc),
	}
	if err := id.load(); err != nil {
		return nil, err
	}
	return id, nil
}

func (i *Identity) load() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("local: read user table: %w", err)
	}
	var list []userRecord
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("local: parse user table: %w", err)
	}
	for _, u := range list {
		i.users[u.Email] = u
	}
	return nil
}

// save writes the table atomically; callers hold the lock.
func (i *Identity) save() error {
	list := make([]userRecord, 0, len(i.users))
	for _, u := range i.users {
		list = append(list, u)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return err
	}
	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, i.path)
}

func (i *Identity) CurrentUser() *remote.User {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return nil
	}
	u := *i.current
	return &u
}

func (i *Identity) setCurrent(u *remote.User) {
	i.mu.Lock()
	i.current = u
	cbs := make([]remote.AuthStateFunc, 0, len(i.listeners))
	for _, cb := range i.listeners {
		cbs = append(cbs, cb)
	}
	i.mu.Unlock()
	for _, cb := range cbs {
		cb(u)
	}
}

func (i *Identity) SignUp(_ context.Context, name, email, password string) (*remote.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("local: hash password: %w", err)
	}

	i.mu.Lock()
	if _, exists := i.users[email]; exists {
		i.mu.Unlock()
		return nil, ErrEmailTaken
	}
	rec := userRecord{
		ID:           uuid.New().String(),
		DisplayName:  name,
		Email:        email,
		PasswordHash: string(hash),
	}
	i.users[email] = rec
	err = i.save()
	i.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("local: save user table: %w", err)
	}

	u := &remote.User{ID: rec.ID, DisplayName: name, Email: email}
	i.setCurrent(u)
	return u, nil
}

func (i *Identity) SignIn(_ context.Context, email, password string) (*remote.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	i.mu.Lock()
	rec, ok := i.users[email]
	i.mu.Unlock()
	if !ok {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	u := &remote.User{ID: rec.ID, DisplayName: rec.DisplayName, Email: rec.Email, PhotoURL: rec.PhotoURL}
	i.setCurrent(u)
	return u, nil
}

func (i *Identity) SignOut(context.Context) error {
	i.setCurrent(nil)
	return nil
}

func (i *Identity) UpdateProfileFields(_ context.Context, fields map[string]string) error {
	i.mu.Lock()
	if i.current == nil {
		i.mu.Unlock()
		return errors.New("local: not signed in")
	}
	rec := i.users[i.current.Email]
	if name, ok := fields["displayName"]; ok {
		rec.DisplayName = name
		i.current.DisplayName = name
	}
	if url, ok := fields["photoURL"]; ok {
		rec.PhotoURL = url
		i.current.PhotoURL = url
	}
	i.users[i.current.Email] = rec
	err := i.save()
	i.mu.Unlock()
	if err != nil {
		return fmt.Errorf("local: save user table: %w", err)
	}
	return nil
}

func (i *Identity) UpdatePassword(_ context.Context, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("local: hash password: %w", err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return errors.New("local: not signed in")
	}
	rec := i.users[i.current.Email]
	rec.PasswordHash = string(hash)
	i.users[i.current.Email] = rec
	if err := i.save(); err != nil {
		return fmt.Errorf("local: save user table: %w", err)
	}
	return nil
}

func (i *Identity) OnAuthStateChanged(cb remote.AuthStateFunc) func() {
	i.mu.Lock()
	i.seq++
	id := i.seq
	i.listeners[id] = cb
	u := i.current
	i.mu.Unlock()

	cb(u)
	return func() {
		i.mu.Lock()
		delete(i.listeners, id)
		i.mu.Unlock()
	}
}
