package service

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
	"github.com/guttosm/spimexpulse/internal/storage"
	"github.com/guttosm/spimexpulse/internal/storage/cache"
)

// ResultsService serves persisted bulletin data to the HTTP layer.
type ResultsService interface {
	GetTradingResults(ctx context.Context, date time.Time) ([]models.TradeRecord, error)
	GetTradingDates(ctx context.Context, limit int) ([]models.TradeDateSummary, error)
}

type resultsService struct {
	repo  storage.TradeResultsRepository
	cache cache.Cache
}

// NewResultsService returns a read-through service. c may be nil, in which case
// every call goes to the repository.
func NewResultsService(repo storage.TradeResultsRepository, c cache.Cache) ResultsService {
	return &resultsService{repo: repo, cache: c}
}

// GetTradingResults returns every record stored for the trade date of date.
// An unknown date yields an empty slice; empty answers are not cached, since a
// later run may still ingest that date.
func (s *resultsService) GetTradingResults(ctx context.Context, date time.Time) ([]models.TradeRecord, error) {
	day := models.TradeDate(date)
	key := cache.TradingResultsKey(day)

	var cached []models.TradeRecord
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	recs, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		s.store(ctx, key, recs)
	}
	return recs, nil
}

// GetTradingDates returns the newest limit per-date summaries.
func (s *resultsService) GetTradingDates(ctx context.Context, limit int) ([]models.TradeDateSummary, error) {
	key := cache.TradingDatesKey(limit)

	var cached []models.TradeDateSummary
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	dates, err := s.repo.ListDates(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, dates)
	return dates, nil
}

// lookup reports whether key was served from the cache. Cache failures degrade to a miss.
func (s *resultsService) lookup(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		metrics.RecordCache(true)
		return true
	}
	metrics.RecordCache(false)
	if !errors.Is(err, cache.ErrMiss) {
		lg := logger.With("results")
		lg.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return false
}

func (s *resultsService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		lg := logger.With("results")
		lg.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
