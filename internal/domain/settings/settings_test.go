package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	values map[string]string
}

func (m *mockRepo) List(_ context.Context) ([]Setting, error) {
	out := make([]Setting, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *mockRepo) Get(_ context.Context, key string) (*Setting, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Setting{Key: key, Value: v}, nil
}

func (m *mockRepo) Set(_ context.Context, s *Setting) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[s.Key] = s.Value
	return nil
}

func (m *mockRepo) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestTaxRate(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   string
	}{
		{name: "configured", stored: "0.21", want: "0.21"},
		{name: "zero is a valid rate", stored: "0", want: "0"},
		{name: "malformed falls back", stored: "ten percent", want: "0.1"},
		{name: "negative falls back", stored: "-0.05", want: "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{values: map[string]string{KeyTaxRate: tt.stored}}
			svc := NewService(repo)

			got := svc.TaxRate(context.Background())
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTaxRate_MissingKeyFallsBack(t *testing.T) {
	svc := NewService(&mockRepo{})

	got := svc.TaxRate(context.Background())
	assert.True(t, DefaultTaxRate.Equal(got))
}

func TestSet_RequiresKey(t *testing.T) {
	svc := NewService(&mockRepo{})

	err := svc.Set(context.Background(), &Setting{Value: "x"})
	require.Error(t, err)

	require.NoError(t, svc.Set(context.Background(), &Setting{Key: KeyCurrency, Value: "EUR"}))

	s, err := svc.Get(context.Background(), KeyCurrency)
	require.NoError(t, err)
	assert.Equal(t, "EUR", s.Value)
}
