package models

import (
	"time"

	"github.com/fullcarts/shrinktrack/internal/signals"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPromoted Status = "promoted"
)

// StagingEntry is one persisted post, keyed by SourceURL. Discard-tier posts
// are never built into entries. Status moves from pending to promoted exactly
// once, via the promotion engine, and never reverts.
type StagingEntry struct {
	SourceURL  string       `json:"source_url"`
	Subreddit  string       `json:"subreddit"`
	PostedUTC  *time.Time   `json:"posted_utc"`
	ScrapedUTC time.Time    `json:"scraped_utc"`
	Tier       signals.Tier `json:"tier"`
	Status     Status       `json:"status"`
	Title      string       `json:"title"`

	Brand          *string  `json:"brand"`
	ProductHint    string   `json:"product_hint"`
	OldSize        *float64 `json:"old_size"`
	OldUnit        *string  `json:"old_unit"`
	NewSize        *float64 `json:"new_size"`
	NewUnit        *string  `json:"new_unit"`
	OldPrice       *float64 `json:"old_price"`
	NewPrice       *float64 `json:"new_price"`
	ExplicitFromTo bool     `json:"explicit_from_to"`
	FieldsFound    int      `json:"fields_found"`

	Score       int `json:"score"`
	NumComments int `json:"num_comments"`

	// DateNoticed is the first day of the month the post was created (UTC),
	// formatted YYYY-MM-01. The exact day is deliberately not kept.
	DateNoticed string `json:"date_noticed"`
}

// Product is a canonical product derived from a promoted staging entry. The
// key is synthetic and stable across reruns so repeated promotions upsert
// rather than duplicate.
type Product struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Brand       *string `json:"brand"`
	Category    string  `json:"category"`
	CurrentSize float64 `json:"current_size"`
	Unit        string  `json:"unit"`
	Type        string  `json:"type"`
	Source      string  `json:"source"`
}

// Event is an append-only record of one observed size change.
type Event struct {
	ProductKey  string   `json:"product_key"`
	Date        string   `json:"date"`
	OldSize     float64  `json:"old_size"`
	NewSize     float64  `json:"new_size"`
	Unit        string   `json:"unit"`
	Pct         float64  `json:"pct"`
	PriceBefore *float64 `json:"price_before"`
	PriceAfter  *float64 `json:"price_after"`
	Type        string   `json:"type"`
	Notes       string   `json:"notes"`
	Source      string   `json:"source"`
}
