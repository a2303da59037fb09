// Command catalog-ingest bulk-loads product dumps into the catalog.
//
// A dump is a gzip-compressed NDJSON file, one product per line. Files are
// processed concurrently; duplicate product IDs across lines are skipped via
// a bloom filter, with the upsert's ON CONFLICT clause as the exact backstop
// for false positives.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/giftnest/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

const upsertProductSQL = `INSERT INTO products
	(id, name, description, price, discount, stock, category, tags, images)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		discount = EXCLUDED.discount,
		stock = EXCLUDED.stock,
		category = EXCLUDED.category,
		tags = EXCLUDED.tags,
		images = EXCLUDED.images`

// productRecord is one NDJSON dump line.
type productRecord struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Category    string
	Tags        []string
	Images      []string
}

// seenFilter is a concurrency-safe bloom filter over product IDs.
type seenFilter struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// testAndAdd reports whether id was (probably) seen before, adding it if not.
func (s *seenFilter) testAndAdd(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.TestAndAddString(id)
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("usage: catalog-ingest [flags] dump1.gz [dump2.gz ...]")
		os.Exit(1)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seen := &seenFilter{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(ingestFile(ctx, pool, seen, f))
	}
	return g.Wait()
}

func ingestFile(ctx context.Context, pool *pgxpool.Pool, seen *seenFilter, path string) func() error {
	return func() error {
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

		var (
			line     int
			upserted uint64
			skipped  uint64
		)

		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line++

			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}

			rec, err := decodeProduct(raw)
			if err != nil {
				return errors.Wrapf(err, "%s line %d", path, line)
			}

			if seen.testAndAdd(rec.ID) {
				skipped++
				continue
			}

			if err := upsertProduct(ctx, pool, rec); err != nil {
				return errors.Wrapf(err, "upsert product %s", rec.ID)
			}
			upserted++

			if upserted%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.String("file", path),
					slog.Uint64("upserted", upserted),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("ingest complete",
			slog.String("file", path),
			slog.Uint64("upserted", upserted),
			slog.Uint64("skipped_duplicates", skipped),
		)
		return nil
	}
}

// decodeProduct parses one dump line without allocating an intermediate map.
func decodeProduct(raw []byte) (*productRecord, error) {
	rec := &productRecord{}
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			rec.ID = v
			return err
		case "name":
			v, err := d.Str()
			rec.Name = v
			return err
		case "description":
			v, err := d.Str()
			rec.Description = v
			return err
		case "price":
			return decodeDecimal(d, &rec.Price)
		case "discount":
			return decodeDecimal(d, &rec.Discount)
		case "stock":
			v, err := d.Int()
			rec.Stock = v
			return err
		case "category":
			v, err := d.Str()
			rec.Category = v
			return err
		case "tags":
			return decodeStrings(d, &rec.Tags)
		case "images":
			return decodeStrings(d, &rec.Images)
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		return nil, errors.New("missing product id")
	}
	if rec.Name == "" {
		return nil, errors.New("missing product name")
	}
	if rec.Price.IsNegative() {
		return nil, errors.New("negative price")
	}
	if rec.Stock < 0 {
		return nil, errors.New("negative stock")
	}
	return rec, nil
}

func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*out = v
	return nil
}

func decodeStrings(d *jx.Decoder, out *[]string) error {
	return d.Arr(func(d *jx.Decoder) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		*out = append(*out, v)
		return nil
	})
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, rec *productRecord) error {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	images := rec.Images
	if images == nil {
		images = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	_, err = pool.Exec(ctx, upsertProductSQL,
		rec.ID, rec.Name, rec.Description, rec.Price, rec.Discount, rec.Stock,
		rec.Category, tagsJSON, imagesJSON,
	)
	return err
}
