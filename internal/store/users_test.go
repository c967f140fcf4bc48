package store

import (
	"context"
	"errors"
	"testing"

	"foundit/internal/db"
)

func TestUpsertUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := UpsertUser(ctx, database, "student@klh.edu.in", "A Student")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if u.Email != "student@klh.edu.in" {
		t.Errorf("expected email preserved, got %q", u.Email)
	}

	// Second sign-in with a changed display name keeps the same account.
	again, err := UpsertUser(ctx, database, "student@klh.edu.in", "Renamed Student")
	if err != nil {
		t.Fatalf("UpsertUser (second): %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("expected same user id on re-sign-in, got %d and %d", u.ID, again.ID)
	}
	if again.Name != "Renamed Student" {
		t.Errorf("expected refreshed name, got %q", again.Name)
	}
}

func TestGetUserNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := GetUser(context.Background(), database, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := GetUserByEmail(context.Background(), database, "nobody@klh.edu.in"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
