package local

import (
	"context"
	"testing"

	"rmoflow/pkg/remote"
)

func TestIdentitySignUpSignInRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	id, err := NewIdentity(dir)
	if err != nil {
		t.Fatal(err)
	}
	u, err := id.SignUp(ctx, "Riley Moore", "Riley@Example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "riley@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if err := id.SignOut(ctx); err != nil {
		t.Fatal(err)
	}

	// A fresh instance reads the persisted table; the stored hash must
	// verify, and the plaintext must not be on disk.
	id2, err := NewIdentity(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := id2.SignIn(ctx, "riley@example.com", "wrong"); err != ErrBadCredentials {
		t.Fatalf("err = %v", err)
	}
	u2, err := id2.SignIn(ctx, "riley@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if u2.ID != u.ID {
		t.Fatalf("id changed across restarts: %q vs %q", u2.ID, u.ID)
	}
}

func TestIdentityDuplicateEmail(t *testing.T) {
	id, err := NewIdentity(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := id.SignUp(ctx, "A", "a@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	if _, err := id.SignUp(ctx, "B", "a@example.com", "hunter23"); err != ErrEmailTaken {
		t.Fatalf("err = %v", err)
	}
}

func TestIdentityAuthListener(t *testing.T) {
	id, err := NewIdentity(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var states []*remote.User
	cancel := id.OnAuthStateChanged(func(u *remote.User) {
		states = append(states, u)
	})

	// Fires immediately with the signed-out state.
	if len(states) != 1 || states[0] != nil {
		t.Fatalf("initial states = %v", states)
	}

	if _, err := id.SignUp(ctx, "Riley", "riley@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 || states[1] == nil {
		t.Fatalf("states after sign-up = %v", states)
	}

	cancel()
	if err := id.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 {
		t.Fatal("canceled listener still fired")
	}
}

func TestIdentityUpdatePassword(t *testing.T) {
	id, err := NewIdentity(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := id.SignUp(ctx, "Riley", "riley@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	if err := id.UpdatePassword(ctx, "hunter23"); err != nil {
		t.Fatal(err)
	}
	if err := id.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := id.SignIn(ctx, "riley@example.com", "hunter22"); err != ErrBadCredentials {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := id.SignIn(ctx, "riley@example.com", "hunter23"); err != nil {
		t.Fatal(err)
	}
}
