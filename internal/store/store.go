package store

import (
	"context"

	"github.com/fullcarts/shrinktrack/internal/models"
)

// Store is the persistence contract the pipeline and promotion engine write
// through. Staging upserts are keyed on source_url; product upserts on the
// synthetic product key; events are append-only.
type Store interface {
	UpsertStaging(ctx context.Context, entries []models.StagingEntry) (int, error)
	PendingAuto(ctx context.Context) ([]models.StagingEntry, error)

	UpsertProduct(ctx context.Context, p models.Product) error
	InsertEvent(ctx context.Context, e models.Event) error
	MarkPromoted(ctx context.Context, sourceURL string) error

	KnownURLs(ctx context.Context) ([]string, error)
	AddKnownURLs(ctx context.Context, urls []string) error

	Close() error
}

// Staging writes go out in chunks; a failed chunk falls back to one-at-a-time
// so rows that already succeeded are never lost.
const upsertChunkSize = 50

func chunkEntries(entries []models.StagingEntry, size int) [][]models.StagingEntry {
	var chunks [][]models.StagingEntry
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
