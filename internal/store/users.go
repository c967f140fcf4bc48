package store

import (
	"context"
	"database/sql"
	"fmt"

	"foundit/internal/model"
)

// UpsertUser creates a user on first sign-in or refreshes the display
// name on later sign-ins. Email is the identity key. Uses an upsert so
// concurrent first sign-ins of the same account cannot race.
func UpsertUser(ctx context.Context, db *sql.DB, email, name string) (*model.User, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (email, name) VALUES (?, ?)
		 ON CONFLICT (email) DO UPDATE SET name = excluded.name`,
		email, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	return GetUserByEmail(ctx, db, email)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}
