package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"foundit/internal/db"
	"foundit/internal/model"
)

func newTestUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()
	u, err := UpsertUser(context.Background(), database, email, "Test User")
	if err != nil {
		t.Fatalf("UpsertUser(%s): %v", email, err)
	}
	return u
}

func validFields() ItemFields {
	return ItemFields{
		Title:       "Black Bag",
		Description: "Black laptop bag with a red zipper",
		Category:    model.CategoryAccessories,
		Location:    "Library 2nd Floor",
		DateLost:    "2026-08-20",
		Contact:     "owner@klh.edu.in",
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")

	item, err := CreateItem(ctx, database, owner.ID, validFields())
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Title != "Black Bag" {
		t.Errorf("expected title 'Black Bag', got %q", item.Title)
	}
	if item.Status != model.ItemStatusLost {
		t.Errorf("expected default status 'lost', got %q", item.Status)
	}
	if item.OwnerID != owner.ID {
		t.Errorf("expected owner %d, got %d", owner.ID, item.OwnerID)
	}
	if item.OwnerEmail != "owner@klh.edu.in" {
		t.Errorf("expected joined owner email, got %q", item.OwnerEmail)
	}
}

func TestCreateItemValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")

	_, err := CreateItem(ctx, database, owner.ID, ItemFields{Title: "  "})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "description", "location", "date_lost"} {
		if verr.Fields[field] == "" {
			t.Errorf("expected validation message for %q", field)
		}
	}

	// Bad date format.
	f := validFields()
	f.DateLost = "20/08/2026"
	if _, err := CreateItem(ctx, database, owner.ID, f); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for bad date, got %v", err)
	}

	// Claimed is not a postable status.
	f = validFields()
	f.Status = model.ItemStatusClaimed
	if _, err := CreateItem(ctx, database, owner.ID, f); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for claimed status, got %v", err)
	}
}

func TestGetItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetItem(context.Background(), database, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")

	bag := validFields()
	CreateItem(ctx, database, owner.ID, bag)

	wallet := ItemFields{
		Title:       "Red Wallet",
		Description: "Leather wallet",
		Category:    model.CategoryElectronics,
		Status:      model.ItemStatusFound,
		Location:    "Cafeteria",
		DateLost:    "2026-08-21",
	}
	CreateItem(ctx, database, owner.ID, wallet)

	// Case-insensitive substring search over title/description/location.
	items, err := ListItems(ctx, database, ItemFilter{Search: "bag"})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Black Bag" {
		t.Errorf("expected exactly [Black Bag] for search=bag, got %v", items)
	}

	// Search matches location too.
	items, _ = ListItems(ctx, database, ItemFilter{Search: "cafeteria"})
	if len(items) != 1 || items[0].Title != "Red Wallet" {
		t.Errorf("expected [Red Wallet] for location search, got %v", items)
	}

	// Category and status combine with AND.
	items, _ = ListItems(ctx, database, ItemFilter{
		Category: model.CategoryElectronics,
		Status:   model.ItemStatusFound,
	})
	if len(items) != 1 || items[0].Title != "Red Wallet" {
		t.Errorf("expected [Red Wallet] for category+status filter, got %v", items)
	}

	items, _ = ListItems(ctx, database, ItemFilter{
		Category: model.CategoryElectronics,
		Status:   model.ItemStatusLost,
	})
	if len(items) != 0 {
		t.Errorf("expected no lost electronics, got %d items", len(items))
	}
}

func TestListItemsOrdering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")

	first := validFields()
	first.Title = "First"
	CreateItem(ctx, database, owner.ID, first)

	second := validFields()
	second.Title = "Second"
	CreateItem(ctx, database, owner.ID, second)

	items, err := ListItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Second" || items[1].Title != "First" {
		t.Errorf("expected most-recent-first ordering, got [%s, %s]", items[0].Title, items[1].Title)
	}
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	other := newTestUser(t, database, "other@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	f := validFields()
	f.Title = "Updated Bag"
	if _, err := UpdateItem(ctx, database, item.ID, other.ID, f); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-owner update, got %v", err)
	}

	updated, err := UpdateItem(ctx, database, item.ID, owner.ID, f)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Title != "Updated Bag" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.OwnerID != owner.ID {
		t.Errorf("owner must be immutable, got %d", updated.OwnerID)
	}
}

func TestDeleteItemOwnerOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	other := newTestUser(t, database, "other@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	if err := DeleteItem(ctx, database, item.ID, other.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-owner delete, got %v", err)
	}
	if _, err := GetItem(ctx, database, item.ID); err != nil {
		t.Errorf("item should persist after denied delete: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID, owner.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := GetItem(ctx, database, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteItemCascadesClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	claim, err := CreateClaim(ctx, database, item.ID, claimant.ID, "this is mine")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID, owner.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if _, err := GetClaim(ctx, database, claim.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected claim deleted with its item, got %v", err)
	}
	claims, _ := ListClaimsForUser(ctx, database, claimant.ID)
	if len(claims) != 0 {
		t.Errorf("expected no orphan claims, got %d", len(claims))
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	other := newTestUser(t, database, "other@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	imageData := []byte("fake image data")

	if err := SetItemImage(ctx, database, item.ID, other.ID, imageData, "image/jpeg"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-owner image upload, got %v", err)
	}

	if err := SetItemImage(ctx, database, item.ID, owner.ID, imageData, "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
