package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fullcarts/shrinktrack/internal/models"
)

// Postgres is the primary store.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS reddit_staging (
	source_url       TEXT PRIMARY KEY,
	subreddit        TEXT,
	posted_utc       TIMESTAMPTZ,
	scraped_utc      TIMESTAMPTZ NOT NULL,
	tier             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending',
	title            TEXT,
	brand            TEXT,
	product_hint     TEXT,
	old_size         DOUBLE PRECISION,
	old_unit         TEXT,
	new_size         DOUBLE PRECISION,
	new_unit         TEXT,
	old_price        DOUBLE PRECISION,
	new_price        DOUBLE PRECISION,
	explicit_from_to BOOLEAN NOT NULL DEFAULT FALSE,
	fields_found     INTEGER NOT NULL DEFAULT 0,
	score            INTEGER NOT NULL DEFAULT 0,
	num_comments     INTEGER NOT NULL DEFAULT 0,
	date_noticed     TEXT
);
CREATE INDEX IF NOT EXISTS reddit_staging_tier_status_idx ON reddit_staging (tier, status);

CREATE TABLE IF NOT EXISTS products (
	key          TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	brand        TEXT,
	category     TEXT,
	current_size DOUBLE PRECISION,
	unit         TEXT,
	type         TEXT,
	source       TEXT
);

CREATE TABLE IF NOT EXISTS events (
	product_key  TEXT NOT NULL,
	date         TEXT,
	old_size     DOUBLE PRECISION,
	new_size     DOUBLE PRECISION,
	unit         TEXT,
	pct          DOUBLE PRECISION,
	price_before DOUBLE PRECISION,
	price_after  DOUBLE PRECISION,
	type         TEXT,
	notes        TEXT,
	source       TEXT
);

CREATE TABLE IF NOT EXISTS known_urls (
	url TEXT PRIMARY KEY
);
`

// Status is deliberately absent from the update set: a promoted entry that is
// scraped again must never flip back to pending.
const pgUpsertStaging = `
INSERT INTO reddit_staging (
	source_url, subreddit, posted_utc, scraped_utc, tier, status, title,
	brand, product_hint, old_size, old_unit, new_size, new_unit,
	old_price, new_price, explicit_from_to, fields_found, score,
	num_comments, date_noticed
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (source_url) DO UPDATE SET
	subreddit = EXCLUDED.subreddit,
	posted_utc = EXCLUDED.posted_utc,
	scraped_utc = EXCLUDED.scraped_utc,
	tier = EXCLUDED.tier,
	title = EXCLUDED.title,
	brand = EXCLUDED.brand,
	product_hint = EXCLUDED.product_hint,
	old_size = EXCLUDED.old_size,
	old_unit = EXCLUDED.old_unit,
	new_size = EXCLUDED.new_size,
	new_unit = EXCLUDED.new_unit,
	old_price = EXCLUDED.old_price,
	new_price = EXCLUDED.new_price,
	explicit_from_to = EXCLUDED.explicit_from_to,
	fields_found = EXCLUDED.fields_found,
	score = EXCLUDED.score,
	num_comments = EXCLUDED.num_comments,
	date_noticed = EXCLUDED.date_noticed
`

const pgSelectPendingAuto = `
SELECT source_url, subreddit, posted_utc, scraped_utc, tier, status, title,
	brand, product_hint, old_size, old_unit, new_size, new_unit,
	old_price, new_price, explicit_from_to, fields_found, score,
	num_comments, date_noticed
FROM reddit_staging
WHERE tier = 'auto' AND status = 'pending'
ORDER BY source_url
`

func NewPostgres(ctx context.Context, dsn string, log *zap.SugaredLogger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Postgres{pool: pool, log: log}, nil
}

func stagingArgs(e models.StagingEntry) []any {
	return []any{
		e.SourceURL, e.Subreddit, e.PostedUTC, e.ScrapedUTC, string(e.Tier),
		string(e.Status), e.Title, e.Brand, e.ProductHint, e.OldSize, e.OldUnit,
		e.NewSize, e.NewUnit, e.OldPrice, e.NewPrice, e.ExplicitFromTo,
		e.FieldsFound, e.Score, e.NumComments, e.DateNoticed,
	}
}

func (s *Postgres) UpsertStaging(ctx context.Context, entries []models.StagingEntry) (int, error) {
	upserted := 0

	for i, chunk := range chunkEntries(entries, upsertChunkSize) {
		batch := &pgx.Batch{}
		for _, e := range chunk {
			batch.Queue(pgUpsertStaging, stagingArgs(e)...)
		}
		err := s.pool.SendBatch(ctx, batch).Close()
		if err == nil {
			upserted += len(chunk)
			continue
		}
		s.log.Warnw("staging batch upsert failed, retrying one by one", "chunk", i+1, "error", err)

		for _, e := range chunk {
			if _, err := s.pool.Exec(ctx, pgUpsertStaging, stagingArgs(e)...); err != nil {
				s.log.Warnw("staging upsert failed", "source_url", e.SourceURL, "error", err)
				continue
			}
			upserted++
		}
	}

	return upserted, nil
}

func (s *Postgres) PendingAuto(ctx context.Context) ([]models.StagingEntry, error) {
	rows, err := s.pool.Query(ctx, pgSelectPendingAuto)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending auto entries: %w", err)
	}
	defer rows.Close()

	var entries []models.StagingEntry
	for rows.Next() {
		var e models.StagingEntry
		if err := rows.Scan(
			&e.SourceURL, &e.Subreddit, &e.PostedUTC, &e.ScrapedUTC, &e.Tier,
			&e.Status, &e.Title, &e.Brand, &e.ProductHint, &e.OldSize, &e.OldUnit,
			&e.NewSize, &e.NewUnit, &e.OldPrice, &e.NewPrice, &e.ExplicitFromTo,
			&e.FieldsFound, &e.Score, &e.NumComments, &e.DateNoticed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan staging entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

func (s *Postgres) UpsertProduct(ctx context.Context, p models.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (key, name, brand, category, current_size, unit, type, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			current_size = EXCLUDED.current_size,
			unit = EXCLUDED.unit,
			type = EXCLUDED.type,
			source = EXCLUDED.source
	`, p.Key, p.Name, p.Brand, p.Category, p.CurrentSize, p.Unit, p.Type, p.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.Key, err)
	}
	return nil
}

func (s *Postgres) InsertEvent(ctx context.Context, e models.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (product_key, date, old_size, new_size, unit, pct,
			price_before, price_after, type, notes, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, e.ProductKey, e.Date, e.OldSize, e.NewSize, e.Unit, e.Pct,
		e.PriceBefore, e.PriceAfter, e.Type, e.Notes, e.Source)
	if err != nil {
		return fmt.Errorf("failed to insert event for %s: %w", e.ProductKey, err)
	}
	return nil
}

func (s *Postgres) MarkPromoted(ctx context.Context, sourceURL string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE reddit_staging SET status = 'promoted' WHERE source_url = $1`, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to mark %s promoted: %w", sourceURL, err)
	}
	return nil
}

func (s *Postgres) KnownURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT url FROM known_urls`)
	if err != nil {
		return nil, fmt.Errorf("failed to query known urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan known url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *Postgres) AddKnownURLs(ctx context.Context, urls []string) error {
	batch := &pgx.Batch{}
	for _, u := range urls {
		batch.Queue(`INSERT INTO known_urls (url) VALUES ($1) ON CONFLICT DO NOTHING`, u)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to add known urls: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
