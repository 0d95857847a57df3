package pipeline

import (
	"github.com/fullcarts/shrinktrack/internal/models"
	"github.com/fullcarts/shrinktrack/internal/reddit"
	"github.com/fullcarts/shrinktrack/internal/signals"
)

const titleMaxLen = 200

// buildEntry combines post metadata, extracted signals, and tier into a
// persistable staging entry. The post's month, not its exact day, becomes
// the canonical "when noticed" date.
func (p *Pipeline) buildEntry(post reddit.Post, sigs signals.Signals, tier signals.Tier) models.StagingEntry {
	scraped := p.now().UTC()

	entry := models.StagingEntry{
		SourceURL:  post.SourceURL(),
		Subreddit:  post.Subreddit,
		ScrapedUTC: scraped,
		Tier:       tier,
		Status:     models.StatusPending,
		Title:      truncate(post.Title, titleMaxLen),

		Brand:          sigs.Brand,
		ProductHint:    sigs.ProductHint,
		OldSize:        sigs.OldSize,
		OldUnit:        sigs.OldUnit,
		NewSize:        sigs.NewSize,
		NewUnit:        sigs.NewUnit,
		OldPrice:       sigs.OldPrice,
		NewPrice:       sigs.NewPrice,
		ExplicitFromTo: sigs.ExplicitFromTo,
		FieldsFound:    sigs.FieldsFound,

		Score:       post.Score,
		NumComments: post.NumComments,
	}

	if created := post.Created(); !created.IsZero() {
		entry.PostedUTC = &created
		entry.DateNoticed = created.Format("2006-01") + "-01"
	} else {
		entry.DateNoticed = scraped.Format("2006-01") + "-01"
	}

	return entry
}
