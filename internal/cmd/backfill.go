package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
	"github.com/fullcarts/shrinktrack/internal/models"
	"github.com/fullcarts/shrinktrack/internal/pipeline"
	"github.com/fullcarts/shrinktrack/internal/promote"
	"github.com/fullcarts/shrinktrack/internal/reddit"
)

var (
	backfillSubreddit   string
	backfillSkipPromote bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "One-time historical scrape via the archive API",
	Long: `Walk the entire post archive for the subreddit, oldest to newest, and
stage every post that carries shrinkflation signals. Safe to re-run: posts
already seen are skipped by the dedup registry.`,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().StringVar(&backfillSubreddit, "sub", "shrinkflation", "Subreddit to backfill")
	backfillCmd.Flags().BoolVar(&backfillSkipPromote, "skip-promote", false, "Stage only, skip the promotion pass")
}

func runBackfill(cmd *cobra.Command, args []string) error {
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
		Subreddit: backfillSubreddit,
		PageDelay: 1500 * time.Millisecond,
		Logger:    log,
	})

	fmt.Printf("Fetching full archive of r/%s...\n", backfillSubreddit)
	posts := client.ArchiveAll(ctx)
	if len(posts) == 0 {
		fmt.Println("No posts returned from archive, API may be down")
		return nil
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedUTC < posts[j].CreatedUTC
	})
	fmt.Printf("Fetched %d posts, range %s to %s\n", len(posts),
		posts[0].Created().Format("2006-01-02"), posts[len(posts)-1].Created().Format("2006-01-02"))

	lex := lexicon.Default()
	p := pipeline.New(pipeline.Config{
		Lexicon:       lex,
		Registry:      reg,
		HomeSubreddit: backfillSubreddit,
		Logger:        log,
	})
	entries, stats := p.Process(posts)

	upserted, err := st.UpsertStaging(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to upsert staging entries: %w", err)
	}
	fmt.Printf("Upserted %d staging entries\n", upserted)

	saveRegistry(ctx, st, reg, log)

	if !backfillSkipPromote {
		promoted, err := promote.New(st, lex, log).Run(ctx)
		if err != nil {
			log.Warnw("promotion pass failed", "error", err)
		} else {
			fmt.Printf("Auto-promoted %d entries to products + events\n", promoted)
		}
	}

	printStats(stats)
	printYearBreakdown(entries)
	return nil
}

func printYearBreakdown(entries []models.StagingEntry) {
	years := make(map[string]int)
	for _, e := range entries {
		year := "????"
		if len(e.DateNoticed) >= 4 {
			year = e.DateNoticed[:4]
		}
		years[year]++
	}

	var sorted []string
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Strings(sorted)

	fmt.Println("Entries by year:")
	for _, y := range sorted {
		fmt.Printf("  %s: %d\n", y, years[y])
	}
}
