package analytics

import (
	"context"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/tracing"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BalanceResult is the balance curve for a key.
type BalanceResult struct {
	Rows []types.CachedBalance `json:"rows"`
	// Hits counts the accounts served from the cache.
	Hits int `json:"hits"`
}

// Balance returns the daily balance curve of every account matching key.
// Trade rows are restricted by the key's symbol, direction, asset type,
// hour and weekday; seed and cash-flow rows are always kept. Curves are
// cached per account: a key without an account is resolved one account
// at a time. A windowed frame bypasses the cache entirely since its
// curve covers only part of the ledger.
func (s *Service) Balance(ctx context.Context, frame ledger.Frame, key types.BalanceKey) (BalanceResult, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.balance", attribute.String("key", key.String()))
	defer span.End()

	accounts := frame.Accounts()
	if key.AccountID.IsSome() {
		accounts = []string{key.AccountID.Unwrap()}
	}

	var result BalanceResult

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return BalanceResult{}, err
		}

		accountKey := key
		accountKey.AccountID = optional.Some(account)

		rows, hit, err := s.accountBalance(ctx, frame, accountKey)
		if err != nil {
			tracing.Fail(span, err)

			return BalanceResult{}, err
		}

		if hit {
			result.Hits++
		}

		result.Rows = append(result.Rows, rows...)
	}

	span.SetAttributes(attribute.Int("hits", result.Hits), attribute.Int("result_rows", len(result.Rows)))

	return result, nil
}

func (s *Service) accountBalance(ctx context.Context, frame ledger.Frame, key types.BalanceKey) ([]types.CachedBalance, bool, error) {
	cacheable := s.cache != nil && !frame.Windowed()

	if cacheable {
		// Load reports backend failures as a miss
		cached, _ := s.cache.Load(ctx, cache.ExactFilter(key))
		if len(cached) > 0 {
			return cached, true, nil
		}
	}

	points, err := metrics.BalanceCurves(frame.Filter(key.Matches))
	if err != nil {
		return nil, false, err
	}

	cachedAt := s.now()
	rows := make([]types.CachedBalance, 0, len(points))

	for _, point := range points {
		pct := 0.0
		if point.InitialBalance != 0 {
			pct = point.AbsoluteBalance / point.InitialBalance * 100
		}

		rows = append(rows, types.CachedBalance{
			BalanceKey:        key,
			ClosedAt:          point.Time,
			InitialBalance:    roundCell(point.InitialBalance),
			AbsoluteBalance:   roundCell(point.AbsoluteBalance),
			InitialBalancePct: roundCell(pct),
			RelativeBalance:   roundCell(point.PercentageGrowth()),
			CachedAt:          cachedAt,
		})
	}

	// a curve the cache would store with gaps is recomputed every time
	if cacheable && len(rows) > 0 && allStorable(rows) {
		if _, err := s.cache.Replace(ctx, key, rows); err != nil {
			// the cache is advisory
			s.log.Warn("Failed to cache balance curve", s.logFields(ctx,
				zap.String("key", key.String()),
				zap.Error(err),
			)...)
		}
	}

	return rows, false, nil
}

// InvalidateBalance drops cached balance rows matching filter.
func (s *Service) InvalidateBalance(ctx context.Context, filter cache.Filter) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}

	ctx, span := s.tracer.Start(ctx, "analytics.invalidate", attribute.String("key", filter.String()))
	defer span.End()

	deleted, err := s.cache.Invalidate(ctx, filter)
	if err != nil {
		tracing.Fail(span, err)

		return 0, err
	}

	s.log.Info("Balance cache invalidated", s.logFields(ctx,
		zap.String("key", filter.String()),
		zap.Int64("rows", deleted),
	)...)

	return deleted, nil
}

func allStorable(rows []types.CachedBalance) bool {
	return !slices.ContainsFunc(rows, func(row types.CachedBalance) bool { return !cache.Storable(row) })
}

func roundCell(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
