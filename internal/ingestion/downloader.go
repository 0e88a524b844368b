package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/fetcher"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
	"github.com/guttosm/spimexpulse/internal/report"
)

// Outcome is the terminal state of one download sequence.
type Outcome int

const (
	// OutcomeFailed: the fetch, the temp write or the rename failed.
	OutcomeFailed Outcome = iota
	// OutcomeDiscarded: the file had no trade date (or could not be decoded) and was deleted.
	OutcomeDiscarded
	// OutcomeEmpty: the file was finalized but produced no records.
	OutcomeEmpty
	// OutcomeEnqueued: a batch was pushed onto the queue.
	OutcomeEnqueued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeEnqueued:
		return "enqueued"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

const dayLayout = "2006-01-02"

// Downloader runs the per-URL download sequence:
// fetch → temp file → trade date → rename → parse → enqueue.
type Downloader struct {
	fetcher    fetcher.Fetcher
	parser     *report.Parser
	reportsDir string
}

// NewDownloader returns a Downloader writing bulletins under reportsDir.
func NewDownloader(f fetcher.Fetcher, p *report.Parser, reportsDir string) *Downloader {
	return &Downloader{fetcher: f, parser: p, reportsDir: reportsDir}
}

// TempPath is where the bulletin with the given run index is written before its date is known.
func (d *Downloader) TempPath(index int) string {
	return filepath.Join(d.reportsDir, fmt.Sprintf("temp_report_%d.xls", index))
}

// FinalPath is the canonical location of the bulletin for a trade date.
func (d *Downloader) FinalPath(date time.Time) string {
	return filepath.Join(d.reportsDir, date.Format(dayLayout)+".xls")
}

// DownloadOne runs the whole sequence for url while holding one unit of sem.
//
// Every failure is local: it is logged here and reported as an Outcome, and it never
// affects sibling downloads. queue must have room for the batch (the pipeline sizes it
// to the number of links) so that pushing never blocks.
func (d *Downloader) DownloadOne(ctx context.Context, url string, index int, sem *semaphore.Weighted, queue chan<- models.Batch) Outcome {
	lg := logger.With("downloader").With().Str("url", url).Int("index", index).Logger()

	if err := sem.Acquire(ctx, 1); err != nil {
		lg.Warn().Err(err).Msg("download not started")
		return OutcomeFailed
	}
	defer sem.Release(1)

	metrics.DownloadsInFlight.Inc()
	defer metrics.DownloadsInFlight.Dec()

	start := time.Now()
	outcome := d.run(ctx, url, index, queue, &lg)
	metrics.RecordOutcome(outcome.String(), time.Since(start))

	lg.Info().Str("outcome", outcome.String()).Dur("elapsed", time.Since(start)).Msg("download done")
	return outcome
}

func (d *Downloader) run(ctx context.Context, url string, index int, queue chan<- models.Batch, lg *zerolog.Logger) Outcome {
	body, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			lg.Error().Int("status", se.StatusCode).Msg("download rejected")
		} else {
			lg.Error().Err(err).Msg("download failed")
		}
		return OutcomeFailed
	}

	tmp := d.TempPath(index)
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		lg.Error().Err(err).Str("path", tmp).Msg("write temp file failed")
		return OutcomeFailed
	}
	lg.Debug().Str("path", tmp).Int("bytes", len(body)).Msg("temp file written")

	date, err := d.parser.ExtractFileTradeDate(tmp)
	if err != nil {
		if errors.Is(err, report.ErrDateNotFound) {
			lg.Warn().Err(err).Msg("discarding bulletin")
		} else {
			lg.Error().Err(err).Msg("bulletin unreadable; discarding")
		}
		d.remove(tmp, lg)
		return OutcomeDiscarded
	}

	final := d.FinalPath(date)
	if err := os.Rename(tmp, final); err != nil {
		lg.Error().Err(err).Str("path", final).Msg("finalize bulletin failed")
		d.remove(tmp, lg)
		return OutcomeFailed
	}
	lg = withDate(lg, date)
	lg.Info().Str("path", final).Msg("bulletin saved")

	records, err := d.parser.ParseFile(final, date)
	if err != nil {
		lg.Error().Err(err).Msg("parse bulletin failed")
		return OutcomeEmpty
	}
	if len(records) == 0 {
		lg.Warn().Msg("bulletin has no records")
		return OutcomeEmpty
	}

	batch := models.Batch{SourceURL: url, TradeDate: date, Records: records}
	select {
	case queue <- batch:
	case <-ctx.Done():
		lg.Warn().Err(ctx.Err()).Msg("batch dropped")
		return OutcomeFailed
	}
	lg.Debug().Int("records", len(records)).Msg("batch enqueued")
	return OutcomeEnqueued
}

func (d *Downloader) remove(path string, lg *zerolog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		lg.Error().Err(err).Str("path", path).Msg("remove temp file failed")
	}
}

func withDate(lg *zerolog.Logger, date time.Time) *zerolog.Logger {
	l := lg.With().Str("trade_date", date.Format(dayLayout)).Logger()
	return &l
}
