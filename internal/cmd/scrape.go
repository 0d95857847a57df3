package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
	"github.com/fullcarts/shrinktrack/internal/pipeline"
	"github.com/fullcarts/shrinktrack/internal/promote"
	"github.com/fullcarts/shrinktrack/internal/reddit"
)

var (
	scrapePages       int
	scrapeSubreddit   string
	scrapeSkipPromote bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch recent posts from the public JSON listings and stage them",
	Long: `Fetch the latest posts from the subreddit's new, hot, and top listings,
extract shrinkflation signals, stage the results by confidence tier, and
auto-promote high-confidence entries to products and events.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&scrapePages, "pages", "p", 10, "Listing pages to fetch per listing")
	scrapeCmd.Flags().StringVar(&scrapeSubreddit, "sub", "shrinkflation", "Subreddit to scrape")
	scrapeCmd.Flags().BoolVar(&scrapeSkipPromote, "skip-promote", false, "Stage only, skip the promotion pass")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	st, err := openStore(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	reg := loadRegistry(ctx, st, log)
	fmt.Printf("Known URLs loaded: %d\n", reg.Len())

	client := reddit.NewClient(reddit.Config{
		Subreddit: scrapeSubreddit,
		PageDelay: 2 * time.Second,
		Logger:    log,
	})

	var all []reddit.Post
	for _, listing := range []string{"new", "hot", "top"} {
		fmt.Printf("Fetching r/%s/%s...\n", scrapeSubreddit, listing)
		all = append(all, client.ListingPages(ctx, listing, scrapePages)...)
	}

	unique := dedupeByID(all)
	fmt.Printf("Total unique posts fetched: %d\n", len(unique))

	lex := lexicon.Default()
	p := pipeline.New(pipeline.Config{
		Lexicon:       lex,
		Registry:      reg,
		HomeSubreddit: scrapeSubreddit,
		Logger:        log,
	})
	entries, stats := p.Process(unique)

	upserted, err := st.UpsertStaging(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to upsert staging entries: %w", err)
	}
	fmt.Printf("Upserted %d staging entries\n", upserted)

	saveRegistry(ctx, st, reg, log)

	if !scrapeSkipPromote {
		promoted, err := promote.New(st, lex, log).Run(ctx)
		if err != nil {
			log.Warnw("promotion pass failed", "error", err)
		} else {
			fmt.Printf("Auto-promoted %d entries to products + events\n", promoted)
		}
	}

	printStats(stats)
	return nil
}

func dedupeByID(posts []reddit.Post) []reddit.Post {
	seen := make(map[string]struct{}, len(posts))
	var unique []reddit.Post
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

func printStats(stats pipeline.Stats) {
	fmt.Printf("Run complete - seen:%d dupes:%d no-keyword:%d\n", stats.Seen, stats.Duplicate, stats.NoKeyword)
	fmt.Printf("  auto:%d review:%d discard:%d\n", stats.Auto, stats.Review, stats.Discard)
}
