package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"foundit/internal/authz"
	"foundit/internal/imaging"
	"foundit/internal/model"
	"foundit/internal/store"
)

// itemFormPage is the data for the shared post/edit form template.
type itemFormPage struct {
	PageData
	Action     string
	Fields     store.ItemFields
	FieldErrs  map[string]string
	Categories []string
	Item       *model.Item
}

// Home handles GET /: the public listing with category, status and
// search filters.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())

	filter := store.ItemFilter{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
	}

	items, err := store.ListItems(r.Context(), s.DB, filter)
	if err != nil {
		slog.Error("failed to list items", "error", err)
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Items      []model.Item
		Categories []string
		Statuses   []string
		Filter     store.ItemFilter
	}{
		PageData:   PageData{Title: "Lost & Found", User: claims, Flash: popFlash(w, r)},
		Items:      items,
		Categories: model.Categories(),
		Statuses:   model.ItemStatuses(),
		Filter:     filter,
	})
}

// ItemDetail handles GET /item/{id}. Claims on the item are shown only
// to signed-in viewers.
func (s *Server) ItemDetail(w http.ResponseWriter, r *http.Request) {
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

	var itemClaims []model.Claim
	var hasClaimed bool
	if claims != nil {
		itemClaims, err = store.ListClaimsForItem(r.Context(), s.DB, id)
		if err != nil {
			slog.Error("failed to list item claims", "error", err)
		}
		hasClaimed, err = store.HasClaim(r.Context(), s.DB, id, claims.UserID)
		if err != nil {
			slog.Error("failed to check existing claim", "error", err)
		}
	}

	var actorID int64
	if claims != nil {
		actorID = claims.UserID
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item       *model.Item
		Claims     []model.Claim
		HasClaimed bool
		IsOwner    bool
		CanClaim   bool
	}{
		PageData:   PageData{Title: item.Title, User: claims, Flash: popFlash(w, r)},
		Item:       item,
		Claims:     itemClaims,
		HasClaimed: hasClaimed,
		IsOwner:    claims != nil && authz.CanManageClaims(actorID, item),
		CanClaim:   claims != nil && authz.CanClaimItem(actorID, item, hasClaimed),
	})
}

// ItemImage handles GET /item/{id}/image.
func (s *Server) ItemImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get item image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}

// PostItemPage handles GET /post.
func (s *Server) PostItemPage(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	s.Templates.Render(w, "item_form.html", &itemFormPage{
		PageData:   PageData{Title: "Post item", User: claims},
		Action:     "/post",
		Categories: model.Categories(),
	})
}

// PostItemSubmit handles POST /post.
func (s *Server) PostItemSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	fields := readItemForm(w, r)

	item, err := store.CreateItem(r.Context(), s.DB, claims.UserID, fields)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		s.Templates.Render(w, "item_form.html", &itemFormPage{
			PageData:   PageData{Title: "Post item", User: claims},
			Action:     "/post",
			Fields:     fields,
			FieldErrs:  verr.Fields,
			Categories: model.Categories(),
		})
		return
	}
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.saveItemPhoto(w, r, item.ID, claims.UserID)

	slog.Info("item posted", "user", claims.Email, "item", item.Title)
	setFlash(w, "success", "Item posted successfully!")
	http.Redirect(w, r, fmt.Sprintf("/item/%d", item.ID), http.StatusSeeOther)
}

// EditItemPage handles GET /item/{id}/edit.
func (s *Server) EditItemPage(w http.ResponseWriter, r *http.Request) {
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

	if !authz.CanEditItem(claims.UserID, item) {
		setFlash(w, "error", "You can only edit items you posted.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, "item_form.html", &itemFormPage{
		PageData: PageData{Title: "Edit item", User: claims},
		Action:   fmt.Sprintf("/item/%d/edit", id),
		Fields: store.ItemFields{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Status:      item.Status,
			Location:    item.Location,
			DateLost:    item.DateLost,
			Contact:     item.Contact,
		},
		Categories: model.Categories(),
		Item:       item,
	})
}

// EditItemSubmit handles POST /item/{id}/edit.
func (s *Server) EditItemSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	fields := readItemForm(w, r)

	item, err := store.UpdateItem(r.Context(), s.DB, id, claims.UserID, fields)
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, store.ErrPermissionDenied):
		setFlash(w, "error", "You can only edit items you posted.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	case errors.As(err, &verr):
		s.Templates.Render(w, "item_form.html", &itemFormPage{
			PageData:   PageData{Title: "Edit item", User: claims},
			Action:     fmt.Sprintf("/item/%d/edit", id),
			Fields:     fields,
			FieldErrs:  verr.Fields,
			Categories: model.Categories(),
		})
		return
	case err != nil:
		slog.Error("failed to update item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.saveItemPhoto(w, r, item.ID, claims.UserID)

	slog.Info("item updated", "user", claims.Email, "item", item.Title)
	setFlash(w, "success", "Item updated successfully!")
	http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
}

// DeleteItemSubmit handles POST /item/{id}/delete.
func (s *Server) DeleteItemSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = store.DeleteItem(r.Context(), s.DB, id, claims.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, store.ErrPermissionDenied):
		setFlash(w, "error", "You can only delete items you posted.")
		http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
		return
	case err != nil:
		slog.Error("failed to delete item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "user", claims.Email, "item_id", id)
	setFlash(w, "success", "Item deleted successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// MyItems handles GET /my-items.
func (s *Server) MyItems(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())

	items, err := store.ListItems(r.Context(), s.DB, store.ItemFilter{OwnerID: claims.UserID})
	if err != nil {
		slog.Error("failed to list own items", "error", err)
	}

	s.Templates.Render(w, "my_items.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: PageData{Title: "My items", User: claims, Flash: popFlash(w, r)},
		Items:    items,
	})
}

// readItemForm parses the submitted item fields. The form may be
// multipart (when a photo is attached) or URL-encoded.
func readItemForm(w http.ResponseWriter, r *http.Request) store.ItemFields {
	r.Body = http.MaxBytesReader(w, r.Body, 6<<20)
	_ = r.ParseMultipartForm(5 << 20)

	return store.ItemFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
		Location:    r.FormValue("location"),
		DateLost:    r.FormValue("date_lost"),
		Contact:     r.FormValue("contact"),
	}
}

// saveItemPhoto stores an attached photo, if any. Photo problems do not
// fail the submission; they surface as a warning notice instead.
func (s *Server) saveItemPhoto(w http.ResponseWriter, r *http.Request, itemID, actorID int64) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return // no photo attached
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if err != nil {
		slog.Warn("rejected item photo", "error", err)
		setFlash(w, "warning", "Photo could not be processed: "+err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), s.DB, itemID, actorID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save item photo", "error", err)
		setFlash(w, "warning", "Photo could not be saved.")
	}
}
