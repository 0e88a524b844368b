package ingestion

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
)

// DefaultConcurrency is the number of download sequences allowed in flight at once.
const DefaultConcurrency = 5

// LinkSource returns up to limit bulletin URLs in listing order.
type LinkSource interface {
	Discover(ctx context.Context, limit int) []string
}

// Stats describes one pipeline run.
type Stats struct {
	RunID    string
	Links    int
	Outcomes map[Outcome]int
	Consumed ConsumeStats
	Elapsed  time.Duration
}

// Pipeline wires discovery, the bounded downloads and the single consumer.
type Pipeline struct {
	links       LinkSource
	downloader  *Downloader
	consumer    *Consumer
	reportsDir  string
	concurrency int64
}

// NewPipeline returns a Pipeline. concurrency < 1 falls back to DefaultConcurrency.
func NewPipeline(links LinkSource, d *Downloader, c *Consumer, concurrency int) *Pipeline {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		links:       links,
		downloader:  d,
		consumer:    c,
		reportsDir:  d.reportsDir,
		concurrency: int64(concurrency),
	}
}

// Run ingests up to limit bulletins.
//
// Sequence:
//  1. discover links;
//  2. start the consumer, then one goroutine per link, each admitted by a shared
//     weighted semaphore;
//  3. wait for every download, close the queue, wait for the consumer.
//
// Per-link failures are logged and counted in Stats.Outcomes. The only error returned
// is a reports-directory failure or a consumer failure (wrapping ErrStorage), in which
// case nothing from this run is persisted.
func (p *Pipeline) Run(ctx context.Context, limit int) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.NewString(), Outcomes: make(map[Outcome]int)}
	lg := logger.With("pipeline").With().Str("run_id", stats.RunID).Logger()

	if err := os.MkdirAll(p.reportsDir, 0o755); err != nil {
		return stats, fmt.Errorf("create reports dir %s: %w", p.reportsDir, err)
	}

	links := p.links.Discover(ctx, limit)
	stats.Links = len(links)
	lg.Info().Int("links", len(links)).Int("limit", limit).Int64("concurrency", p.concurrency).Msg("ingestion start")

	// One batch at most per link: the buffer makes every push non-blocking.
	queue := make(chan models.Batch, len(links))

	var consumeErr error
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		stats.Consumed, consumeErr = p.consumer.Consume(ctx, queue)
	}()

	sem := semaphore.NewWeighted(p.concurrency)
	outcomes := make([]Outcome, len(links))
	var g errgroup.Group
	for i, url := range links {
		g.Go(func() error {
			outcomes[i] = p.downloader.DownloadOne(ctx, url, i+1, sem, queue)
			return nil
		})
	}
	_ = g.Wait()

	close(queue)
	<-consumerDone

	for _, o := range outcomes {
		stats.Outcomes[o]++
	}
	stats.Elapsed = time.Since(start)
	metrics.RecordRun(consumeErr, stats.Elapsed)

	level := zerolog.InfoLevel
	if consumeErr != nil {
		level = zerolog.ErrorLevel
	}
	lg.WithLevel(level).Err(consumeErr).
		Int("enqueued", stats.Outcomes[OutcomeEnqueued]).
		Int("empty", stats.Outcomes[OutcomeEmpty]).
		Int("discarded", stats.Outcomes[OutcomeDiscarded]).
		Int("failed", stats.Outcomes[OutcomeFailed]).
		Int("inserted", stats.Consumed.Inserted).
		Int("skipped", stats.Consumed.Skipped).
		Dur("elapsed", stats.Elapsed).
		Msg("ingestion done")

	if consumeErr != nil {
		return stats, consumeErr
	}
	return stats, nil
}

// WriteElapsed records the wall-clock duration of a run in the timing sidecar at path.
func WriteElapsed(path string, elapsed time.Duration) error {
	line := fmt.Sprintf("ingestion run took %.2f seconds\n", elapsed.Seconds())
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("write timing file %s: %w", path, err)
	}
	return nil
}
