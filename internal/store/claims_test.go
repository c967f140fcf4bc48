package store

import (
	"context"
	"errors"
	"testing"

	"foundit/internal/db"
	"foundit/internal/model"
)

func TestCreateClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	claim, err := CreateClaim(ctx, database, item.ID, claimant.ID, "mine")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected status 'pending', got %q", claim.Status)
	}
	if claim.ItemOwnerID != owner.ID {
		t.Errorf("expected joined item owner %d, got %d", owner.ID, claim.ItemOwnerID)
	}
	if claim.ClaimantEmail != "claimant@klh.edu.in" {
		t.Errorf("expected joined claimant email, got %q", claim.ClaimantEmail)
	}
}

func TestCreateClaimOwnItemDenied(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	if _, err := CreateClaim(ctx, database, item.ID, owner.ID, "mine"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for self-claim, got %v", err)
	}
}

func TestCreateClaimDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	if _, err := CreateClaim(ctx, database, item.ID, claimant.ID, "mine"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := CreateClaim(ctx, database, item.ID, claimant.ID, "still mine"); !errors.Is(err, ErrDuplicateClaim) {
		t.Errorf("expected ErrDuplicateClaim for second claim, got %v", err)
	}

	claims, _ := ListClaimsForItem(ctx, database, item.ID)
	if len(claims) != 1 {
		t.Errorf("expected exactly 1 claim after duplicate attempt, got %d", len(claims))
	}
}

func TestCreateClaimEmptyMessage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())

	var verr *ValidationError
	if _, err := CreateClaim(ctx, database, item.ID, claimant.ID, "  "); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty message, got %v", err)
	}
}

func TestCreateClaimMissingItem(t *testing.T) {
	database := db.NewTestDB(t)
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	if _, err := CreateClaim(context.Background(), database, 999, claimant.ID, "mine"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestApproveClaimMarksItemClaimed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	b := newTestUser(t, database, "b@klh.edu.in")
	c := newTestUser(t, database, "c@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	claimB, _ := CreateClaim(ctx, database, item.ID, b.ID, "mine")
	claimC, _ := CreateClaim(ctx, database, item.ID, c.ID, "no, mine")

	approved, err := UpdateClaimStatus(ctx, database, claimB.ID, owner.ID, model.ClaimStatusApproved)
	if err != nil {
		t.Fatalf("UpdateClaimStatus: %v", err)
	}
	if approved.Status != model.ClaimStatusApproved {
		t.Errorf("expected status 'approved', got %q", approved.Status)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusClaimed {
		t.Errorf("expected item status 'claimed' after approval, got %q", got.Status)
	}

	// Other pending claims are deliberately left pending.
	otherClaim, _ := GetClaim(ctx, database, claimC.ID)
	if otherClaim.Status != model.ClaimStatusPending {
		t.Errorf("expected other claim untouched, got %q", otherClaim.Status)
	}
}

func TestRejectClaimKeepsItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	claim, _ := CreateClaim(ctx, database, item.ID, claimant.ID, "mine")

	rejected, err := UpdateClaimStatus(ctx, database, claim.ID, owner.ID, model.ClaimStatusRejected)
	if err != nil {
		t.Fatalf("UpdateClaimStatus: %v", err)
	}
	if rejected.Status != model.ClaimStatusRejected {
		t.Errorf("expected status 'rejected', got %q", rejected.Status)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusLost {
		t.Errorf("rejection must not change item status, got %q", got.Status)
	}
}

func TestUpdateClaimStatusOwnerOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	claim, _ := CreateClaim(ctx, database, item.ID, claimant.ID, "mine")

	if _, err := UpdateClaimStatus(ctx, database, claim.ID, claimant.ID, model.ClaimStatusApproved); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for claimant deciding own claim, got %v", err)
	}
}

func TestUpdateClaimStatusInvalid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	item, _ := CreateItem(ctx, database, owner.ID, validFields())
	claim, _ := CreateClaim(ctx, database, item.ID, claimant.ID, "mine")

	var verr *ValidationError
	if _, err := UpdateClaimStatus(ctx, database, claim.ID, owner.ID, "pending"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for non-decision status, got %v", err)
	}
}

func TestListClaimsForUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, database, "owner@klh.edu.in")
	claimant := newTestUser(t, database, "claimant@klh.edu.in")

	first, _ := CreateItem(ctx, database, owner.ID, validFields())
	f := validFields()
	f.Title = "Umbrella"
	second, _ := CreateItem(ctx, database, owner.ID, f)

	CreateClaim(ctx, database, first.ID, claimant.ID, "mine")
	CreateClaim(ctx, database, second.ID, claimant.ID, "also mine")

	claims, err := ListClaimsForUser(ctx, database, claimant.ID)
	if err != nil {
		t.Fatalf("ListClaimsForUser: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].ItemTitle != "Umbrella" {
		t.Errorf("expected most-recent-first, got %q first", claims[0].ItemTitle)
	}
}
