package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foundit/internal/authz"
	"foundit/internal/model"
)

// CreateClaim files a claim by claimantID on an item. Owners cannot
// claim their own items, and the (item, claimant) pair is unique; the
// database constraint is the final arbiter for concurrent submissions.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, claimantID int64, message string) (*model.Claim, error) {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == claimantID {
		return nil, ErrPermissionDenied
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "message is required"}}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, message) VALUES (?, ?, ?)`,
		itemID, claimantID, message,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateClaim
	}
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

const claimColumns = `c.id, c.item_id, c.claimant_id, c.message, c.status, c.created_at, c.updated_at,
	       i.title AS item_title, i.status AS item_status, i.owner_id AS item_owner_id,
	       u.name AS claimant_name, u.email AS claimant_email`

const claimJoins = `FROM claims c
	 JOIN items i ON i.id = c.item_id
	 JOIN users u ON u.id = c.claimant_id`

// GetClaim returns a claim by ID with its item and claimant joined.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+` WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.ItemTitle, &c.ItemStatus, &c.ItemOwnerID, &c.ClaimantName, &c.ClaimantEmail)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// HasClaim reports whether the user already has a claim on the item.
func HasClaim(ctx context.Context, db *sql.DB, itemID, userID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE item_id = ? AND claimant_id = ?`,
		itemID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking existing claim: %w", err)
	}
	return count > 0, nil
}

// ListClaimsForItem returns claims on an item, most recent first.
func ListClaimsForItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+`
		 WHERE c.item_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListClaimsForUser returns claims filed by a user, most recent first.
func ListClaimsForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+`
		 WHERE c.claimant_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// UpdateClaimStatus applies the item owner's decision to a claim.
// Approval also marks the parent item as claimed, in the same
// transaction. Other pending claims on the item are left untouched.
func UpdateClaimStatus(ctx context.Context, db *sql.DB, claimID, actorID int64, status string) (*model.Claim, error) {
	if !model.ClaimDecision(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "status must be approved or rejected"}}
	}

	claim, err := GetClaim(ctx, db, claimID)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateClaimStatus(actorID, claim) {
		return nil, ErrPermissionDenied
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim status: %w", err)
	}

	if status == model.ClaimStatusApproved {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			model.ItemStatusClaimed, claim.ItemID,
		)
		if err != nil {
			return nil, fmt.Errorf("marking item claimed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim decision: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Message, &c.Status,
			&c.CreatedAt, &c.UpdatedAt,
			&c.ItemTitle, &c.ItemStatus, &c.ItemOwnerID,
			&c.ClaimantName, &c.ClaimantEmail); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
