package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassa-dev/kassa/internal/domain/settings"
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// List returns all settings ordered by key.
func (r *SettingsRepository) List(ctx context.Context) ([]settings.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (settings.Setting, error) {
		var s settings.Setting
		err := row.Scan(&s.Key, &s.Value)
		return s, err
	})
}

// Get returns one setting by key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*settings.Setting, error) {
	s := settings.Setting{Key: key}
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&s.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, settings.ErrNotFound
		}
		return nil, fmt.Errorf("getting setting %q: %w", key, err)
	}
	return &s, nil
}

// Set upserts one setting.
func (r *SettingsRepository) Set(ctx context.Context, s *settings.Setting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		s.Key, s.Value,
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", s.Key, err)
	}
	return nil
}

// Delete removes one setting by key.
func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrNotFound
	}
	return nil
}
