package qr

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/qrcall/internal/cache"
	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
)

const aggregateCacheKey = "qr:analytics:aggregate"

// AnalyticsService answers the per-code summary and the admin aggregate.
type AnalyticsService struct {
	analytics    repository.AnalyticsRepository
	verifier     *qrtoken.Verifier
	cache        cache.Client
	aggregateTTL time.Duration
}

func NewAnalyticsService(d Deps) *AnalyticsService {
	ttl := d.AggregateTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AnalyticsService{
		analytics:    d.Analytics,
		verifier:     d.Verifier,
		cache:        d.Cache,
		aggregateTTL: ttl,
	}
}

// Summary resolves a token to its code and returns that code's counters.
// Unverifiable tokens fail with repository.ErrInvalidCode; which identifiers
// exist stays unobservable because a verification miss and a malformed token
// answer identically.
func (s *AnalyticsService) Summary(ctx context.Context, token string) (*repository.QRAnalytics, error) {
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.analytics.GetByQRID(ctx, id)
}

// Aggregate returns service-wide totals, cached briefly since the admin
// dashboard polls it.
func (s *AnalyticsService) Aggregate(ctx context.Context) (*repository.AggregateAnalytics, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.analytics"),
		logger.Op("Aggregate"),
	)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, aggregateCacheKey); err == nil {
			var agg repository.AggregateAnalytics
			if err := json.Unmarshal([]byte(raw), &agg); err == nil {
				return &agg, nil
			}
			// corrupt entry, fall through to the store
			_ = s.cache.Delete(ctx, aggregateCacheKey)
		}
	}

	agg, err := s.analytics.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(agg); err == nil {
			if err := s.cache.Set(ctx, aggregateCacheKey, string(raw), s.aggregateTTL); err != nil {
				log.Debug("aggregate cache write failed", logger.Err(err))
			}
		}
	}

	return agg, nil
}
