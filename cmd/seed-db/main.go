// Command seed-db loads the demo catalog, default settings, and an API key
// into the database. It is idempotent: rerunning updates rows in place.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/settings"
	"github.com/kassa-dev/kassa/internal/repository"
)

type productJSON struct {
	Name             string          `json:"name"`
	SKU              string          `json:"sku"`
	Barcode          string          `json:"barcode"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or KASSA_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or KASSA_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("KASSA_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or KASSA_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("KASSA_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedSettings(ctx, pool); err != nil {
		return errors.Wrap(err, "seed settings")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		categoryID, err := upsertCategory(ctx, pool, p.Category)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", p.Category)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO products (category_id, name, sku, barcode, description,
				cost_price, selling_price, quantity, reorder_threshold)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (sku) WHERE sku <> '' DO UPDATE SET
				category_id = EXCLUDED.category_id,
				name = EXCLUDED.name,
				barcode = EXCLUDED.barcode,
				description = EXCLUDED.description,
				cost_price = EXCLUDED.cost_price,
				selling_price = EXCLUDED.selling_price,
				reorder_threshold = EXCLUDED.reorder_threshold,
				updated_at = NOW()`,
			categoryID, p.Name, p.SKU, p.Barcode, p.Description,
			p.CostPrice, p.SellingPrice, p.Quantity, p.ReorderThreshold,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}

		slog.Info("upserted product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
		RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding default settings")

	defaults := map[string]string{
		settings.KeyTaxRate:  settings.DefaultTaxRate.String(),
		settings.KeyCurrency: "USD",
	}

	for key, value := range defaults {
		_, err := pool.Exec(ctx, `
			INSERT INTO settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING`, key, value,
		)
		if err != nil {
			return errors.Wrapf(err, "seed setting %s", key)
		}

		slog.Info("seeded setting", slog.String("key", key), slog.String("value", value))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, `
		INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ('default', $1, 'Default admin key', $2, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			scopes = EXCLUDED.scopes,
			active = TRUE`,
		keyHash, []string{"admin"},
	)
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"), slog.String("name", "Default admin key"))

	return nil
}
