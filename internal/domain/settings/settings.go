// Package settings is the key/value store behind the admin settings screen.
// A handful of keys are read by the application itself, most importantly
// the POS tax rate.
package settings

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Well-known keys.
const (
	KeyTaxRate  = "pos.tax_rate"
	KeyStore    = "store.name"
	KeyCurrency = "store.currency"
)

// DefaultTaxRate is used when pos.tax_rate is absent or unparsable.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// ErrNotFound is returned when a requested setting does not exist.
var ErrNotFound = errors.New("setting not found")

// Setting is one key/value pair.
type Setting struct {
	Key   string
	Value string
}

// Repository defines persistence operations for settings.
type Repository interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, s *Setting) error
	Delete(ctx context.Context, key string) error
}

// Service wraps the repository with typed accessors.
type Service struct {
	repo Repository
}

// NewService creates a settings Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all settings.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

// Get returns one setting by key.
func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	return s.repo.Get(ctx, key)
}

// Set upserts one setting.
func (s *Service) Set(ctx context.Context, setting *Setting) error {
	if setting.Key == "" {
		return errors.New("setting key is required")
	}
	return s.repo.Set(ctx, setting)
}

// Delete removes one setting by key.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// TaxRate returns the configured POS tax rate as a fraction, falling back
// to DefaultTaxRate when the key is missing or malformed.
func (s *Service) TaxRate(ctx context.Context) decimal.Decimal {
	setting, err := s.repo.Get(ctx, KeyTaxRate)
	if err != nil {
		return DefaultTaxRate
	}
	rate, err := decimal.NewFromString(setting.Value)
	if err != nil || rate.IsNegative() {
		return DefaultTaxRate
	}
	return rate
}
