package model

import "time"

// User represents a signed-in student. Accounts are created on first
// successful sign-in through the institution identity provider; there
// are no local credentials.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
