package promote

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
	"github.com/fullcarts/shrinktrack/internal/models"
	"github.com/fullcarts/shrinktrack/internal/store"
)

const (
	eventType  = "shrinkflation"
	sourceTag  = "reddit_bot"
	nameMaxLen = 100
)

// Engine promotes pending auto-tier staging entries to canonical products and
// events. Once created, those records are never rewritten by the extractor.
type Engine struct {
	store store.Store
	lex   *lexicon.Lexicon
	log   *zap.SugaredLogger
}

func New(st store.Store, lex *lexicon.Lexicon, log *zap.SugaredLogger) *Engine {
	if lex == nil {
		lex = lexicon.Default()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{store: st, lex: lex, log: log}
}

// Run processes every pending auto entry with both sizes present. Product
// upsert, event insert, and the status flip form one logical unit per entry:
// any failure before the flip leaves the entry pending so a retry safely
// re-attempts, and no single failure aborts the rest of the batch. Returns
// the number of entries promoted.
func (e *Engine) Run(ctx context.Context) (int, error) {
	entries, err := e.store.PendingAuto(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending entries: %w", err)
	}

	promoted := 0
	for _, entry := range entries {
		if entry.OldSize == nil || entry.NewSize == nil {
			continue
		}
		if e.promoteOne(ctx, entry) {
			promoted++
		}
	}
	return promoted, nil
}

func (e *Engine) promoteOne(ctx context.Context, entry models.StagingEntry) bool {
	key := ProductKey(entry.SourceURL)
	oldSize, newSize := *entry.OldSize, *entry.NewSize

	unit := "oz"
	switch {
	case entry.NewUnit != nil:
		unit = *entry.NewUnit
	case entry.OldUnit != nil:
		unit = *entry.OldUnit
	}

	name := entry.ProductHint
	if name == "" {
		name = "Unknown Product"
	}
	if r := []rune(name); len(r) > nameMaxLen {
		name = string(r[:nameMaxLen])
	}

	brandText := ""
	if entry.Brand != nil {
		brandText = *entry.Brand
	}

	date := entry.DateNoticed
	if date == "" && entry.PostedUTC != nil {
		date = entry.PostedUTC.Format("2006-01-02")
	}

	product := models.Product{
		Key:         key,
		Name:        name,
		Brand:       entry.Brand,
		Category:    e.lex.GuessCategory(name + " " + brandText),
		CurrentSize: newSize,
		Unit:        unit,
		Type:        eventType,
		Source:      sourceTag,
	}
	if err := e.store.UpsertProduct(ctx, product); err != nil {
		e.log.Warnw("promotion failed at product upsert", "source_url", entry.SourceURL, "error", err)
		return false
	}

	event := models.Event{
		ProductKey:  key,
		Date:        date,
		OldSize:     oldSize,
		NewSize:     newSize,
		Unit:        unit,
		Pct:         Pct(oldSize, newSize),
		PriceBefore: entry.OldPrice,
		PriceAfter:  entry.NewPrice,
		Type:        eventType,
		Notes:       fmt.Sprintf("Auto-imported from r/%s: %s", entry.Subreddit, entry.SourceURL),
		Source:      sourceTag,
	}
	if err := e.store.InsertEvent(ctx, event); err != nil {
		e.log.Warnw("promotion failed at event insert", "source_url", entry.SourceURL, "error", err)
		return false
	}

	// The flip is mandatory before declaring success: it is what guards a
	// crash-and-retry from inserting a duplicate event.
	if err := e.store.MarkPromoted(ctx, entry.SourceURL); err != nil {
		e.log.Warnw("promotion failed at status flip", "source_url", entry.SourceURL, "error", err)
		return false
	}

	e.log.Infow("promoted entry", "product", name, "brand", brandText,
		"old", fmt.Sprintf("%g%s", oldSize, unit), "new", fmt.Sprintf("%g%s", newSize, unit), "date", date)
	return true
}

// ProductKey derives the stable synthetic product key for a staging entry.
// The same source URL always yields the same key, so repeated promotion
// attempts upsert rather than duplicate.
func ProductKey(sourceURL string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL))
	return "REDDIT-" + id.String()[:8]
}

// Pct is the shrink percentage rounded to two decimals, defined as 0 for
// zero or negative old sizes rather than a division fault.
func Pct(oldSize, newSize float64) float64 {
	if oldSize <= 0 {
		return 0
	}
	return math.Round((oldSize-newSize)/oldSize*100*100) / 100
}
