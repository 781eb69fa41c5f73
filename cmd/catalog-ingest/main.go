// Command catalog-ingest imports gzipped supplier catalog feeds into the
// product table. Each feed is a gzip-compressed JSON array of catalog
// entries. Feeds are parsed concurrently; duplicate barcodes within a feed
// are dropped with a bloom filter, and across feeds the lexicographically
// last feed wins so a newer dump overrides an older one.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kassa-dev/kassa/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// feedEntry is one catalog row from a supplier feed.
type feedEntry struct {
	Barcode      string
	Name         string
	Category     string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog feed .gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no .gz feed files in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	results := make([][]feedEntry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeedFile(gctx, i, f, results))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	// Merge in file order so later feeds override earlier ones.
	merged := make(map[string]feedEntry)
	for _, entries := range results {
		for _, e := range entries {
			merged[e.Barcode] = e
		}
	}

	slog.Info("entries merged", slog.Int("count", len(merged)))

	if len(merged) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeEntries(ctx, pool, merged); err != nil {
		return errors.Wrap(err, "write entries")
	}

	return nil
}

func parseFeedFile(ctx context.Context, idx int, path string, results [][]feedEntry) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var entries []feedEntry
		var count uint64

		if err := streamFeed(ctx, path, func(e feedEntry) {
			if e.Barcode == "" || seen.TestAndAddString(e.Barcode) {
				return
			}
			entries = append(entries, e)
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("entries", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "parse feed %s", path)
		}

		slog.Info("feed parsed",
			slog.String("path", path),
			slog.Uint64("entries", count),
		)

		results[idx] = entries
		return nil
	}
}

// streamFeed decodes a gzipped JSON array of catalog entries, calling fn
// for each one without materializing the whole feed in memory.
func streamFeed(ctx context.Context, path string, fn func(feedEntry)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	d := jx.Decode(gz, 1<<16)
	return d.Arr(func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var e feedEntry
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "barcode":
				s, err := d.Str()
				e.Barcode = s
				return err
			case "name":
				s, err := d.Str()
				e.Name = s
				return err
			case "category":
				s, err := d.Str()
				e.Category = s
				return err
			case "cost_price":
				return decodeDecimal(d, &e.CostPrice)
			case "selling_price":
				return decodeDecimal(d, &e.SellingPrice)
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}

		fn(e)
		return nil
	})
}

func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return errors.Wrap(err, "parse decimal")
	}
	*out = v
	return nil
}

// writeEntries upserts catalog entries by barcode. Stock on hand is never
// touched; feeds carry prices and names only.
func writeEntries(ctx context.Context, pool *pgxpool.Pool, entries map[string]feedEntry) error {
	slog.Info("writing entries to database", slog.Int("count", len(entries)))

	categoryIDs := make(map[string]int64)
	written := 0

	for _, e := range entries {
		var categoryID *int64
		if e.Category != "" {
			id, ok := categoryIDs[e.Category]
			if !ok {
				if err := pool.QueryRow(ctx, `
					INSERT INTO categories (name)
					VALUES ($1)
					ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
					RETURNING id`, e.Category,
				).Scan(&id); err != nil {
					return errors.Wrapf(err, "upsert category %s", e.Category)
				}
				categoryIDs[e.Category] = id
			}
			categoryID = &id
		}

		if _, err := pool.Exec(ctx, `
			INSERT INTO products (category_id, name, barcode, cost_price, selling_price)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (barcode) WHERE barcode <> '' DO UPDATE SET
				category_id = EXCLUDED.category_id,
				name = EXCLUDED.name,
				cost_price = EXCLUDED.cost_price,
				selling_price = EXCLUDED.selling_price,
				updated_at = NOW()`,
			categoryID, e.Name, e.Barcode, e.CostPrice, e.SellingPrice,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", e.Barcode)
		}

		written++
		if written%1000 == 0 || written == len(entries) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(entries)))
		}
	}

	return nil
}
