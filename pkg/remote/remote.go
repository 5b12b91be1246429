// Package remote defines the adapter contracts for the document store, blob
// storage, and identity provider backing the application. The core never
// talks to a backend directly; it consumes these interfaces and receives
// state exclusively through subscription deliveries.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = errors.New("remote: document not found")

// Doc is one raw document as delivered by the store: identity plus the
// undecoded JSON body. Normalization into entity types happens cache-side.
type Doc struct {
	ID   string
	Data json.RawMessage
}

// Delivery is one subscription snapshot. A collection path carries Docs; a
// document path carries Doc (nil when the document does not exist). Every
// delivery replaces the consumer's previous view wholesale.
type Delivery struct {
	Path string
	Docs []Doc
	Doc  *Doc
}

// UnsubscribeFunc tears down one subscription. Safe to call more than once.
type UnsubscribeFunc func()

// SubscribeOptions constrain a collection subscription.
type SubscribeOptions struct {
	// OrderBy names a top-level document field to sort deliveries by.
	OrderBy    string
	Descending bool
}

// SubscribeOption mutates SubscribeOptions.
type SubscribeOption func(*SubscribeOptions)

// WithOrderBy sorts collection deliveries by the named field.
func WithOrderBy(field string, descending bool) SubscribeOption {
	return func(o *SubscribeOptions) {
		o.OrderBy = field
		o.Descending = descending
	}
}

// Store is the document-store contract. Paths use slash-separated segments;
// an odd segment count addresses a collection, an even count a document.
type Store interface {
	// Subscribe delivers an initial snapshot and then re-delivers the full
	// snapshot on every backend change, in order, until unsubscribed.
	// Errors after setup are reported through onErr; the consumer's last
	// good snapshot stays in place.
	Subscribe(path string, onData func(Delivery), onErr func(error), opts ...SubscribeOption) (UnsubscribeFunc, error)

	Get(ctx context.Context, docPath string) (*Doc, error)
	// Create appends a document to a collection and returns its new id.
	Create(ctx context.Context, collectionPath string, data any) (string, error)
	// Update merges the given top-level fields into the document. Keys
	// containing a dot address nested fields ("preferences.theme").
	Update(ctx context.Context, docPath string, fields map[string]any) error
	// Set overwrites the whole document.
	Set(ctx context.Context, docPath string, data any) error
	Delete(ctx context.Context, docPath string) error
	// BatchDelete removes the identified documents from a collection as one
	// operation.
	BatchDelete(ctx context.Context, collectionPath string, ids []string) error
}

// BlobStore is the file-storage contract.
type BlobStore interface {
	// Upload streams r to path, invoking onProgress with 0-100 as bytes
	// move, and returns the blob's download URL. Cancel via ctx.
	Upload(ctx context.Context, path string, r io.Reader, size int64, onProgress func(pct int)) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

// User is the identity provider's view of the signed-in user.
type User struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// AuthStateFunc observes sign-in/sign-out transitions. user is nil when
// signed out.
type AuthStateFunc func(user *User)

// Identity is the identity-provider contract. The core treats
// OnAuthStateChanged as its top-level lifecycle trigger.
type Identity interface {
	CurrentUser() *User
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
	UpdateProfileFields(ctx context.Context, fields map[string]string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	// OnAuthStateChanged registers cb and returns a cancel func. cb fires
	// immediately with the current state and then on every transition.
	OnAuthStateChanged(cb AuthStateFunc) func()
}
