package analytics

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/tracing"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	modeGrouped   = "grouped"
	modeUngrouped = "ungrouped"
)

// Request selects how metrics are computed.
type Request struct {
	// Grouped computes one row set per group; otherwise groups are reduced.
	Grouped bool
	Group   metrics.GroupOptions
}

// DefaultRequest groups by account.
func DefaultRequest() Request {
	return Request{Grouped: true, Group: metrics.DefaultGroupOptions()}
}

// OnMetricStartCallback is called before a metric runs. Returning an error aborts the run.
type OnMetricStartCallback func(index int, name string, total int) error

// OnMetricEndCallback is called after a metric completes successfully.
type OnMetricEndCallback func(index int, name string, table types.Table)

// Callbacks receives progress notifications from ComputeAll.
// Nil fields are skipped.
type Callbacks struct {
	OnMetricStart *OnMetricStartCallback
	OnMetricEnd   *OnMetricEndCallback
}

// Compute runs the named metric.
func (s *Service) Compute(ctx context.Context, frame ledger.Frame, name string, req Request) (types.Table, error) {
	metric, err := s.catalogue.Get(name)
	if err != nil {
		return types.Table{}, err
	}

	return s.run(ctx, frame, metric, req)
}

// ComputeAll runs every metric in the catalogue in name order. The
// context is checked between metrics.
func (s *Service) ComputeAll(ctx context.Context, frame ledger.Frame, req Request, callbacks Callbacks) ([]types.Table, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.compute_all", attribute.Int("rows", frame.Len()))
	defer span.End()

	names := s.catalogue.Names()
	tables := make([]types.Table, 0, len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			tracing.Fail(span, err)

			return nil, err
		}

		if callbacks.OnMetricStart != nil {
			if err := (*callbacks.OnMetricStart)(i, name, len(names)); err != nil {
				return nil, err
			}
		}

		table, err := s.Compute(ctx, frame, name, req)
		if err != nil {
			tracing.Fail(span, err)

			return nil, err
		}

		if callbacks.OnMetricEnd != nil {
			(*callbacks.OnMetricEnd)(i, name, table)
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (s *Service) run(ctx context.Context, frame ledger.Frame, metric metrics.Tabular, req Request) (types.Table, error) {
	mode := modeUngrouped
	if req.Grouped {
		mode = modeGrouped
	}

	ctx, span := s.tracer.Start(ctx, "metric."+metric.Name(),
		attribute.String("metric", metric.Name()),
		attribute.String("mode", mode),
		attribute.Int("rows", frame.Len()),
	)
	defer span.End()

	start := time.Now()

	var (
		table types.Table
		err   error
	)

	if req.Grouped {
		table, err = metric.Grouped(frame, req.Group)
	} else {
		table, err = metric.Ungrouped(frame)
	}

	elapsed := time.Since(start)
	metricDuration.WithLabelValues(metric.Name(), mode).Observe(elapsed.Seconds())

	if err != nil {
		metricFailures.WithLabelValues(metric.Name()).Inc()
		tracing.Fail(span, err)
		s.log.Warn("Metric failed", s.logFields(ctx,
			zap.String("metric", metric.Name()),
			zap.Error(err),
		)...)

		return types.Table{}, err
	}

	span.SetAttributes(attribute.Int("result_rows", len(table.Rows)))
	s.log.Debug("Metric computed", s.logFields(ctx,
		zap.String("metric", metric.Name()),
		zap.String("mode", mode),
		zap.Int("rows", len(table.Rows)),
		zap.Duration("elapsed", elapsed),
	)...)

	return table, nil
}
