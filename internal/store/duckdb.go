package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/fullcarts/shrinktrack/internal/models"
	"github.com/fullcarts/shrinktrack/internal/signals"
)

// DuckDB is the local fallback store, used when no DATABASE_URL is set so the
// pipeline still produces usable output without the remote database.
type DuckDB struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

const duckSchema = `
CREATE TABLE IF NOT EXISTS reddit_staging (
	source_url       VARCHAR PRIMARY KEY,
	subreddit        VARCHAR,
	posted_utc       TIMESTAMP,
	scraped_utc      TIMESTAMP NOT NULL,
	tier             VARCHAR NOT NULL,
	status           VARCHAR NOT NULL DEFAULT 'pending',
	title            VARCHAR,
	brand            VARCHAR,
	product_hint     VARCHAR,
	old_size         DOUBLE,
	old_unit         VARCHAR,
	new_size         DOUBLE,
	new_unit         VARCHAR,
	old_price        DOUBLE,
	new_price        DOUBLE,
	explicit_from_to BOOLEAN NOT NULL DEFAULT FALSE,
	fields_found     INTEGER NOT NULL DEFAULT 0,
	score            INTEGER NOT NULL DEFAULT 0,
	num_comments     INTEGER NOT NULL DEFAULT 0,
	date_noticed     VARCHAR
);

CREATE TABLE IF NOT EXISTS products (
	key          VARCHAR PRIMARY KEY,
	name         VARCHAR NOT NULL,
	brand        VARCHAR,
	category     VARCHAR,
	current_size DOUBLE,
	unit         VARCHAR,
	type         VARCHAR,
	source       VARCHAR
);

CREATE TABLE IF NOT EXISTS events (
	product_key  VARCHAR NOT NULL,
	date         VARCHAR,
	old_size     DOUBLE,
	new_size     DOUBLE,
	unit         VARCHAR,
	pct          DOUBLE,
	price_before DOUBLE,
	price_after  DOUBLE,
	type         VARCHAR,
	notes        VARCHAR,
	source       VARCHAR
);

CREATE TABLE IF NOT EXISTS known_urls (
	url VARCHAR PRIMARY KEY
);
`

const duckUpsertStaging = `
INSERT INTO reddit_staging (
	source_url, subreddit, posted_utc, scraped_utc, tier, status, title,
	brand, product_hint, old_size, old_unit, new_size, new_unit,
	old_price, new_price, explicit_from_to, fields_found, score,
	num_comments, date_noticed
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
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

func NewDuckDB(path string, log *zap.SugaredLogger) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(duckSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &DuckDB{db: db, log: log}, nil
}

func (s *DuckDB) UpsertStaging(ctx context.Context, entries []models.StagingEntry) (int, error) {
	upserted := 0

	for i, chunk := range chunkEntries(entries, upsertChunkSize) {
		err := s.upsertChunk(ctx, chunk)
		if err == nil {
			upserted += len(chunk)
			continue
		}
		s.log.Warnw("staging chunk upsert failed, retrying one by one", "chunk", i+1, "error", err)

		for _, e := range chunk {
			if _, err := s.db.ExecContext(ctx, duckUpsertStaging, stagingArgs(e)...); err != nil {
				s.log.Warnw("staging upsert failed", "source_url", e.SourceURL, "error", err)
				continue
			}
			upserted++
		}
	}

	return upserted, nil
}

func (s *DuckDB) upsertChunk(ctx context.Context, chunk []models.StagingEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, e := range chunk {
		if _, err := tx.ExecContext(ctx, duckUpsertStaging, stagingArgs(e)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *DuckDB) PendingAuto(ctx context.Context) ([]models.StagingEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_url, subreddit, posted_utc, scraped_utc, tier, status, title,
			brand, product_hint, old_size, old_unit, new_size, new_unit,
			old_price, new_price, explicit_from_to, fields_found, score,
			num_comments, date_noticed
		FROM reddit_staging
		WHERE tier = 'auto' AND status = 'pending'
		ORDER BY source_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending auto entries: %w", err)
	}
	defer rows.Close()

	var entries []models.StagingEntry
	for rows.Next() {
		var (
			e         models.StagingEntry
			posted    sql.NullTime
			brand     sql.NullString
			oldSize   sql.NullFloat64
			oldUnit   sql.NullString
			newSize   sql.NullFloat64
			newUnit   sql.NullString
			oldPrice  sql.NullFloat64
			newPrice  sql.NullFloat64
			tier      string
			status    string
			dateNoted sql.NullString
		)
		if err := rows.Scan(
			&e.SourceURL, &e.Subreddit, &posted, &e.ScrapedUTC, &tier,
			&status, &e.Title, &brand, &e.ProductHint, &oldSize, &oldUnit,
			&newSize, &newUnit, &oldPrice, &newPrice, &e.ExplicitFromTo,
			&e.FieldsFound, &e.Score, &e.NumComments, &dateNoted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan staging entry: %w", err)
		}

		e.Tier = signals.Tier(tier)
		e.Status = models.Status(status)
		if posted.Valid {
			t := posted.Time.UTC()
			e.PostedUTC = &t
		}
		e.Brand = nullString(brand)
		e.OldSize = nullFloat(oldSize)
		e.OldUnit = nullString(oldUnit)
		e.NewSize = nullFloat(newSize)
		e.NewUnit = nullString(newUnit)
		e.OldPrice = nullFloat(oldPrice)
		e.NewPrice = nullFloat(newPrice)
		if dateNoted.Valid {
			e.DateNoticed = dateNoted.String
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

func (s *DuckDB) UpsertProduct(ctx context.Context, p models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (key, name, brand, category, current_size, unit, type, source)
		VALUES (?,?,?,?,?,?,?,?)
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

func (s *DuckDB) InsertEvent(ctx context.Context, e models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (product_key, date, old_size, new_size, unit, pct,
			price_before, price_after, type, notes, source)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`, e.ProductKey, e.Date, e.OldSize, e.NewSize, e.Unit, e.Pct,
		e.PriceBefore, e.PriceAfter, e.Type, e.Notes, e.Source)
	if err != nil {
		return fmt.Errorf("failed to insert event for %s: %w", e.ProductKey, err)
	}
	return nil
}

func (s *DuckDB) MarkPromoted(ctx context.Context, sourceURL string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reddit_staging SET status = 'promoted' WHERE source_url = ?`, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to mark %s promoted: %w", sourceURL, err)
	}
	return nil
}

func (s *DuckDB) KnownURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM known_urls`)
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

func (s *DuckDB) AddKnownURLs(ctx context.Context, urls []string) error {
	for _, u := range urls {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO known_urls (url) VALUES (?) ON CONFLICT DO NOTHING`, u); err != nil {
			return fmt.Errorf("failed to add known url: %w", err)
		}
	}
	return nil
}

func (s *DuckDB) Close() error {
	return s.db.Close()
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
