package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
	"github.com/fullcarts/shrinktrack/internal/promote"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote pending auto-tier entries without scraping",
	Long: `Skip fetching and run only the promotion pass: every staged entry with
tier auto and status pending becomes a product upsert plus an event insert,
then flips to promoted.`,
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
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

	promoted, err := promote.New(st, lexicon.Default(), log).Run(ctx)
	if err != nil {
		return fmt.Errorf("promotion failed: %w", err)
	}

	fmt.Printf("Promoted %d entries to products + events\n", promoted)
	return nil
}
