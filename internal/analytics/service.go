package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Service runs metrics over a ledger and fronts the balance cache.
// Metrics themselves are pure; the service adds spans, logging,
// instrumentation and caching around them.
type Service struct {
	catalogue *metrics.Catalogue
	cache     cache.Cache
	tracer    *tracing.Tracer
	log       *logger.Logger
	topN      int
	now       func() time.Time
	newID     func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the balance read-through cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithTracer records a span per operation and per metric run.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTopSymbols sets how many symbols summaries list.
func WithTopSymbols(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithClock overrides the time source used to stamp summaries and cache rows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(catalogue *metrics.Catalogue, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		catalogue: catalogue,
		tracer:    tracing.Disabled(),
		log:       log,
		topN:      metrics.DefaultTopSymbols,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Catalogue returns the metric registry the service runs.
func (s *Service) Catalogue() *metrics.Catalogue {
	return s.catalogue
}

// CacheEnabled reports whether balance requests go through the cache.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// Normalize validates raw ledger rows into a frame.
func (s *Service) Normalize(ctx context.Context, raw ledger.Raw) (ledger.Frame, error) {
	_, span := s.tracer.Start(ctx, "analytics.normalize", attribute.Int("rows", len(raw.Rows)))
	defer span.End()

	frame, err := ledger.Normalize(raw)
	if err != nil {
		tracing.Fail(span, err)
		s.log.Warn("Ledger rejected", zap.Error(err))

		return ledger.Frame{}, err
	}

	return frame, nil
}

// Load reads and normalizes a ledger from source.
func (s *Service) Load(ctx context.Context, source ledger.Source, filter ledger.Filter) (ledger.Frame, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.load", attribute.StringSlice("accounts", filter.AccountIDs))
	defer span.End()

	frame, err := ledger.Load(ctx, source, filter)
	if err != nil {
		tracing.Fail(span, err)
		s.log.Error("Failed to load ledger", zap.Error(err))

		return ledger.Frame{}, err
	}

	s.log.Info("Ledger loaded",
		zap.Int("rows", frame.Len()),
		zap.Strings("accounts", frame.Accounts()),
	)

	return frame, nil
}

func (s *Service) logFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	if traceID, spanID, ok := tracing.Fields(ctx); ok {
		fields = append(fields, zap.String("trace_id", traceID), zap.String("span_id", spanID))
	}

	return fields
}
