package model

import "time"

// Item represents a lost-or-found object posted by a user.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	DateLost    string    `json:"date_lost"`
	ImageMime   string    `json:"image_mime,omitempty"`
	Contact     string    `json:"contact"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

// Item statuses.
const (
	ItemStatusLost    = "lost"
	ItemStatusFound   = "found"
	ItemStatusClaimed = "claimed"
)

// Item categories.
const (
	CategoryElectronics = "electronics"
	CategoryDocuments   = "documents"
	CategoryAccessories = "accessories"
	CategoryClothing    = "clothing"
	CategoryBooks       = "books"
	CategoryOther       = "other"
)

// Categories lists all item categories in display order.
func Categories() []string {
	return []string{
		CategoryElectronics,
		CategoryDocuments,
		CategoryAccessories,
		CategoryClothing,
		CategoryBooks,
		CategoryOther,
	}
}

// ItemStatuses lists all item statuses in display order.
func ItemStatuses() []string {
	return []string{ItemStatusLost, ItemStatusFound, ItemStatusClaimed}
}

// ValidCategory reports whether the category is one of the known values.
func ValidCategory(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// ValidItemStatus reports whether the status is one of the known values.
func ValidItemStatus(status string) bool {
	for _, s := range ItemStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
