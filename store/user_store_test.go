package store

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureUserProvisionsOnFirstSight(t *testing.T) {
	db := getTestGormDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	subject := uniqueName("subj")
	email := subject + "@district.org"

	u, err := users.EnsureUser(ctx, subject, email, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("new user must get an id")
	}
	if u.ExternalSubject != subject || u.Email != email {
		t.Fatalf("user = %+v, want subject %s email %s", u, subject, email)
	}
	if u.LastSignInAt == nil {
		t.Fatal("last_sign_in_at must be stamped on first sight")
	}
}

func TestEnsureUserIdempotent(t *testing.T) {
	db := getTestGormDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	subject := uniqueName("subj")
	email := subject + "@district.org"

	first, err := users.EnsureUser(ctx, subject, email, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := users.EnsureUser(ctx, subject, email, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second ensure created a new row: %d != %d", second.ID, first.ID)
	}
}

func TestEnsureUserRefreshesProfile(t *testing.T) {
	db := getTestGormDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	subject := uniqueName("subj")

	first, err := users.EnsureUser(ctx, subject, subject+"@district.org", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	// A renamed account keeps its row; the identity key is the subject.
	newEmail := subject + "@newdistrict.org"
	second, err := users.EnsureUser(ctx, subject, newEmail, "Ada", "King")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("profile refresh must not reprovision: %d != %d", second.ID, first.ID)
	}
	if second.Email != newEmail || second.LastName != "King" {
		t.Fatalf("profile not refreshed: %+v", second)
	}

	got, err := users.GetBySubject(ctx, subject)
	if err != nil {
		t.Fatalf("get by subject: %v", err)
	}
	if got.Email != newEmail {
		t.Fatalf("persisted email = %s, want %s", got.Email, newEmail)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := getTestGormDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	if _, err := users.GetByID(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID = %v, want ErrNotFound", err)
	}
	if _, err := users.GetBySubject(ctx, uniqueName("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBySubject = %v, want ErrNotFound", err)
	}
}
