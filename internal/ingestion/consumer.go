package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// ErrStorage marks a failed existence check, insert or commit. It aborts the run.
var ErrStorage = errors.New("ingestion: storage failure")

// ConsumeStats summarizes what the consumer did with the batches it received.
type ConsumeStats struct {
	Batches  int
	Inserted int
	Skipped  int
}

// Consumer is the single writer of a pipeline run.
type Consumer struct {
	repo storage.TradeResultsRepository
}

// NewConsumer returns a Consumer persisting through repo.
func NewConsumer(repo storage.TradeResultsRepository) *Consumer {
	return &Consumer{repo: repo}
}

// Consume drains queue until it is closed and commits everything staged in one transaction.
//
// Behavior:
//   - A record is staged only when no row (committed, or staged earlier in this run)
//     exists for its trade date; otherwise it is skipped. Records of one batch do not
//     suppress each other.
//   - On any storage error the transaction is rolled back, the remaining batches are
//     drained without being persisted, and an error wrapping ErrStorage is returned.
func (c *Consumer) Consume(ctx context.Context, queue <-chan models.Batch) (ConsumeStats, error) {
	lg := logger.With("consumer")
	var stats ConsumeStats

	tx, err := c.repo.Begin(ctx)
	if err != nil {
		drain(queue)
		return stats, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	for batch := range queue {
		stats.Batches++
		inserted, skipped, err := stage(ctx, tx, batch)
		if err != nil {
			_ = tx.Rollback()
			drain(queue)
			lg.Error().Err(err).Str("url", batch.SourceURL).Msg("staging failed; run rolled back")
			return ConsumeStats{Batches: stats.Batches}, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		stats.Inserted += inserted
		stats.Skipped += skipped
		lg.Info().
			Str("url", batch.SourceURL).
			Str("trade_date", batch.TradeDate.Format(dayLayout)).
			Int("staged", inserted).
			Int("skipped", skipped).
			Msg("batch staged")
	}

	if err := tx.Commit(); err != nil {
		lg.Error().Err(err).Msg("commit failed")
		return ConsumeStats{Batches: stats.Batches}, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}

	metrics.RecordRecords(stats.Inserted, stats.Skipped)
	lg.Info().Int("batches", stats.Batches).Int("inserted", stats.Inserted).Int("skipped", stats.Skipped).Msg("committed")
	return stats, nil
}

// stage runs the existence checks for every record of batch and then inserts the
// records whose date was absent.
func stage(ctx context.Context, tx storage.Tx, batch models.Batch) (inserted, skipped int, err error) {
	// No insert happens between the checks of one batch, so one answer per date is enough.
	exists := make(map[time.Time]bool, 1)
	keep := make([]models.TradeRecord, 0, len(batch.Records))
	for _, rec := range batch.Records {
		day := models.TradeDate(rec.TradeDate)
		found, checked := exists[day]
		if !checked {
			if found, err = tx.ExistsForDate(ctx, day); err != nil {
				return 0, 0, err
			}
			exists[day] = found
		}
		if found {
			skipped++
			continue
		}
		keep = append(keep, rec)
	}

	for _, rec := range keep {
		if err := tx.Insert(ctx, rec); err != nil {
			return 0, 0, err
		}
	}
	return len(keep), skipped, nil
}

func drain(queue <-chan models.Batch) {
	for range queue {
	}
}
