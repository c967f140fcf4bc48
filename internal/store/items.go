package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"foundit/internal/authz"
	"foundit/internal/model"
)

// ItemFields holds the user-supplied fields of an item form.
type ItemFields struct {
	Title       string
	Description string
	Category    string
	Status      string
	Location    string
	DateLost    string
	Contact     string
}

// ItemFilter narrows an item listing. Zero values mean "no filter".
type ItemFilter struct {
	Category string
	Status   string
	Search   string
	OwnerID  int64
}

// ValidateItemFields checks an item form and normalizes defaults in
// place. Returns a ValidationError listing every bad field, or nil.
func ValidateItemFields(f *ItemFields) error {
	fields := make(map[string]string)

	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
	f.Contact = strings.TrimSpace(f.Contact)

	if f.Title == "" {
		fields["title"] = "title is required"
	}
	if f.Description == "" {
		fields["description"] = "description is required"
	}
	if f.Location == "" {
		fields["location"] = "location is required"
	}
	if f.DateLost == "" {
		fields["date_lost"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", f.DateLost); err != nil {
		fields["date_lost"] = "date must be in YYYY-MM-DD format"
	}

	if f.Category == "" {
		f.Category = model.CategoryOther
	} else if !model.ValidCategory(f.Category) {
		fields["category"] = "unknown category"
	}

	// Items are posted as lost or found; claimed is only reachable
	// through an approved claim.
	if f.Status == "" {
		f.Status = model.ItemStatusLost
	} else if f.Status != model.ItemStatusLost && f.Status != model.ItemStatusFound {
		fields["status"] = "status must be lost or found"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateItem creates a new item owned by ownerID.
func CreateItem(ctx context.Context, db *sql.DB, ownerID int64, f ItemFields) (*model.Item, error) {
	if err := ValidateItemFields(&f); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, category, status, location, date_lost, contact, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Title, f.Description, f.Category, f.Status, f.Location, f.DateLost, f.Contact, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

const itemColumns = `i.id, i.title, i.description, i.category, i.status, i.location,
	       i.date_lost, i.image_mime, i.contact, i.owner_id, i.created_at, i.updated_at,
	       u.name AS owner_name, u.email AS owner_email`

// GetItem returns an item by ID with its owner joined.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN users u ON u.id = i.owner_id
		 WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.Status,
		&item.Location, &item.DateLost, &imageMime, &item.Contact, &item.OwnerID,
		&item.CreatedAt, &item.UpdatedAt, &item.OwnerName, &item.OwnerEmail)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns items matching the filter, most recently posted
// first. The search term matches title, description or location,
// case-insensitively.
func ListItems(ctx context.Context, db *sql.DB, filter ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i JOIN users u ON u.id = i.owner_id
	          WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND i.category = ?`
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, filter.Status)
	}
	if filter.OwnerID > 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.Search != "" {
		query += ` AND (instr(lower(i.title), ?) > 0
		           OR instr(lower(i.description), ?) > 0
		           OR instr(lower(i.location), ?) > 0)`
		term := strings.ToLower(filter.Search)
		args = append(args, term, term, term)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Category,
			&item.Status, &item.Location, &item.DateLost, &imageMime, &item.Contact,
			&item.OwnerID, &item.CreatedAt, &item.UpdatedAt,
			&item.OwnerName, &item.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem applies field changes to an item. Only the owner may edit;
// the owner itself is immutable and never part of the update.
func UpdateItem(ctx context.Context, db *sql.DB, id, actorID int64, f ItemFields) (*model.Item, error) {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditItem(actorID, item) {
		return nil, ErrPermissionDenied
	}

	if err := ValidateItemFields(&f); err != nil {
		return nil, err
	}

	// An already-claimed item keeps its status; edits only change the
	// descriptive fields.
	status := f.Status
	if item.Status == model.ItemStatusClaimed {
		status = model.ItemStatusClaimed
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, status = ?,
		        location = ?, date_lost = ?, contact = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		f.Title, f.Description, f.Category, status, f.Location, f.DateLost, f.Contact, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem removes an item and every claim filed against it in a
// single transaction. Only the owner may delete.
func DeleteItem(ctx context.Context, db *sql.DB, id, actorID int64) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteItem(actorID, item) {
		return ErrPermissionDenied
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Claims never outlive their item.
	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting item claims: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// SetItemImage stores an item's photo. Only the owner may change it.
func SetItemImage(ctx context.Context, db *sql.DB, id, actorID int64, image []byte, mime string) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if !authz.CanEditItem(actorID, item) {
		return ErrPermissionDenied
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo data and MIME type. A nil slice
// means the item has no photo.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
