package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"foundit/internal/authz"
	"foundit/internal/model"
	"foundit/internal/store"
)

// claimFormPage is the data for the claim form template.
type claimFormPage struct {
	PageData
	Item      *model.Item
	Message   string
	FieldErrs map[string]string
}

// ClaimItemPage handles GET /item/{id}/claim.
func (s *Server) ClaimItemPage(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if item.OwnerID == claims.UserID {
		setFlash(w, "error", "You cannot claim your own item.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	}

	hasClaimed, err := store.HasClaim(r.Context(), s.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to check existing claim", "error", err)
	}
	if hasClaimed {
		setFlash(w, "warning", "You have already submitted a claim for this item.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, "claim_form.html", &claimFormPage{
		PageData: PageData{Title: "Claim item", User: claims},
		Item:     item,
	})
}

// ClaimItemSubmit handles POST /item/{id}/claim.
func (s *Server) ClaimItemSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	message := r.FormValue("message")

	claim, err := store.CreateClaim(r.Context(), s.DB, id, claims.UserID, message)
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, store.ErrPermissionDenied):
		setFlash(w, "error", "You cannot claim your own item.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	case errors.Is(err, store.ErrDuplicateClaim):
		setFlash(w, "warning", "You have already submitted a claim for this item.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	case errors.As(err, &verr):
		item, gerr := store.GetItem(r.Context(), s.DB, id)
		if gerr != nil {
			http.NotFound(w, r)
			return
		}
		s.Templates.Render(w, "claim_form.html", &claimFormPage{
			PageData:  PageData{Title: "Claim item", User: claims},
			Item:      item,
			Message:   message,
			FieldErrs: verr.Fields,
		})
		return
	case err != nil:
		slog.Error("failed to create claim", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("claim submitted", "user", claims.Email, "item_id", claim.ItemID)
	setFlash(w, "success", "Your claim has been submitted. The poster will review it.")
	http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
}

// MyClaims handles GET /my-claims.
func (s *Server) MyClaims(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())

	list, err := store.ListClaimsForUser(r.Context(), s.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list own claims", "error", err)
	}

	s.Templates.Render(w, "my_claims.html", &struct {
		PageData
		Claims []model.Claim
	}{
		PageData: PageData{Title: "My claims", User: claims, Flash: popFlash(w, r)},
		Claims:   list,
	})
}

// ManageClaims handles GET /item/{id}/manage-claims. Only the item's
// poster may review its claims.
func (s *Server) ManageClaims(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !authz.CanManageClaims(claims.UserID, item) {
		setFlash(w, "error", "You can only manage claims on items you posted.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	}

	list, err := store.ListClaimsForItem(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list item claims", "error", err)
	}

	s.Templates.Render(w, "manage_claims.html", &struct {
		PageData
		Item   *model.Item
		Claims []model.Claim
	}{
		PageData: PageData{Title: "Manage claims", User: claims, Flash: popFlash(w, r)},
		Item:     item,
		Claims:   list,
	})
}

// UpdateClaimStatus handles POST /claim/{id}/update/{status}. A status
// other than approved or rejected is ignored and the request bounces
// back to the manage view.
func (s *Server) UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	status := r.PathValue("status")

	claim, err := store.GetClaim(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get claim", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	manageURL := fmt.Sprintf("/item/%d/manage-claims", claim.ItemID)

	_, err = store.UpdateClaimStatus(r.Context(), s.DB, id, claims.UserID, status)
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrPermissionDenied):
		setFlash(w, "error", "You can only manage claims on items you posted.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", claim.ItemID), http.StatusSeeOther)
		return
	case errors.As(err, &verr):
		// Unknown status, nothing happened.
		http.Redirect(w, r, manageURL, http.StatusSeeOther)
		return
	case err != nil:
		slog.Error("failed to update claim status", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("claim decided", "user", claims.Email, "claim_id", id, "status", status)
	if status == model.ClaimStatusApproved {
		setFlash(w, "success", "Claim approved! Item marked as claimed.")
	} else {
		setFlash(w, "success", "Claim rejected.")
	}
	http.Redirect(w, r, manageURL, http.StatusSeeOther)
}
