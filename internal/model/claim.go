package model

import "time"

// Claim represents an assertion by a non-owner user that an item is theirs.
type Claim struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	ClaimantID int64     `json:"claimant_id"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemTitle     string `json:"item_title,omitempty"`
	ItemStatus    string `json:"item_status,omitempty"`
	ItemOwnerID   int64  `json:"item_owner_id,omitempty"`
	ClaimantName  string `json:"claimant_name,omitempty"`
	ClaimantEmail string `json:"claimant_email,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ClaimDecision reports whether status is a valid owner decision on a claim.
// Only approvals and rejections count; a pending claim cannot be reset.
func ClaimDecision(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusRejected
}
