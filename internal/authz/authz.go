// Package authz holds the ownership rules for items and claims as pure
// predicates. Every mutating store operation consults these before
// touching a record, so the rules live in one place instead of being
// scattered through handlers.
package authz

import "foundit/internal/model"

// CanEditItem reports whether the actor may edit the item.
func CanEditItem(actorID int64, item *model.Item) bool {
	return item != nil && actorID == item.OwnerID
}

// CanDeleteItem reports whether the actor may delete the item.
func CanDeleteItem(actorID int64, item *model.Item) bool {
	return item != nil && actorID == item.OwnerID
}

// CanClaimItem reports whether the actor may file a claim on the item.
// Owners cannot claim their own items, and each user gets at most one
// claim per item; hasClaim is the caller's lookup of the latter.
func CanClaimItem(actorID int64, item *model.Item, hasClaim bool) bool {
	return item != nil && actorID != item.OwnerID && !hasClaim
}

// CanManageClaims reports whether the actor may view and decide the
// claims filed against the item.
func CanManageClaims(actorID int64, item *model.Item) bool {
	return item != nil && actorID == item.OwnerID
}

// CanUpdateClaimStatus reports whether the actor may approve or reject
// the claim. Only the owner of the claimed item decides.
func CanUpdateClaimStatus(actorID int64, claim *model.Claim) bool {
	return claim != nil && actorID == claim.ItemOwnerID
}
