package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// OnboardingKey records that the instructions overlay was dismissed.
const OnboardingKey = "invoiceGeneratorSeen"

const seenValue = "true"

// Store is a small durable key/value store on the settings table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}

// OnboardingSeen reports whether the user already dismissed the overlay.
func (s *Store) OnboardingSeen(ctx context.Context) (bool, error) {
	value, ok, err := s.Get(ctx, OnboardingKey)
	if err != nil {
		return false, err
	}
	return ok && value != "", nil
}

func (s *Store) MarkOnboardingSeen(ctx context.Context) error {
	return s.Set(ctx, OnboardingKey, seenValue)
}
