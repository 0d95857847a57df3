package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
	"github.com/fullcarts/shrinktrack/internal/models"
	"github.com/fullcarts/shrinktrack/internal/reddit"
	"github.com/fullcarts/shrinktrack/internal/registry"
	"github.com/fullcarts/shrinktrack/internal/signals"
)

// Pipeline runs posts through dedup, relevance filtering, signal extraction,
// tier classification, and staging entry construction, in input order.
type Pipeline struct {
	lex       *lexicon.Lexicon
	extractor *signals.Extractor
	registry  *registry.Registry
	homeSub   string
	log       *zap.SugaredLogger
	now       func() time.Time
}

type Config struct {
	Lexicon  *lexicon.Lexicon
	Registry *registry.Registry
	// HomeSubreddit bypasses the relevance-keyword filter: on the dedicated
	// community almost every post is on topic.
	HomeSubreddit string
	Logger        *zap.SugaredLogger
	Now           func() time.Time
}

func New(cfg Config) *Pipeline {
	if cfg.Lexicon == nil {
		cfg.Lexicon = lexicon.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.New()
	}
	if cfg.HomeSubreddit == "" {
		cfg.HomeSubreddit = "shrinkflation"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Pipeline{
		lex:       cfg.Lexicon,
		extractor: signals.NewExtractor(cfg.Lexicon),
		registry:  cfg.Registry,
		homeSub:   cfg.HomeSubreddit,
		log:       cfg.Logger,
		now:       cfg.Now,
	}
}

type Stats struct {
	Seen      int
	Duplicate int
	NoKeyword int
	Auto      int
	Review    int
	Discard   int
}

// Process evaluates posts one at a time. Every evaluated URL enters the
// registry, including posts dropped for lacking topical keywords, so no post
// is re-evaluated on a later run. Discard-tier posts produce no entry.
func (p *Pipeline) Process(posts []reddit.Post) ([]models.StagingEntry, Stats) {
	var entries []models.StagingEntry
	var stats Stats

	for _, post := range posts {
		stats.Seen++
		url := post.SourceURL()

		if p.registry.Contains(url) {
			stats.Duplicate++
			continue
		}

		text := post.FullText()
		if post.Subreddit != p.homeSub && !p.lex.Relevant(text) {
			stats.NoKeyword++
			p.registry.Add(url)
			continue
		}

		sigs := p.extractor.Extract(text)
		tier := signals.ClassifyTier(sigs)

		switch tier {
		case signals.TierAuto:
			stats.Auto++
		case signals.TierReview:
			stats.Review++
		case signals.TierDiscard:
			stats.Discard++
		}

		if tier != signals.TierDiscard {
			entries = append(entries, p.buildEntry(post, sigs, tier))
			p.log.Infow("staged post", "tier", tier, "month", monthOf(post), "title", truncate(post.Title, 70))
		}

		p.registry.Add(url)
	}

	return entries, stats
}

func monthOf(post reddit.Post) string {
	created := post.Created()
	if created.IsZero() {
		return "?"
	}
	return created.Format("2006-01")
}

func truncate(s string, maxLen int) string {
	if r := []rune(s); len(r) > maxLen {
		return string(r[:maxLen])
	}
	return s
}
