package analytics

import (
	"context"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"go.opentelemetry.io/otel/attribute"
)

// Summary reduces the frame into performance summaries stamped with an id
// and generation time. With perAccount set there is one summary per
// account; otherwise a single portfolio summary.
func (s *Service) Summary(ctx context.Context, frame ledger.Frame, perAccount bool) []types.PerformanceSummary {
	_, span := s.tracer.Start(ctx, "analytics.summary", attribute.Bool("per_account", perAccount))
	defer span.End()

	var summaries []types.PerformanceSummary
	if perAccount {
		summaries = metrics.SummarizeAccounts(frame, s.topN)
	} else {
		summaries = []types.PerformanceSummary{metrics.Summarize(frame, s.topN)}
	}

	generatedAt := s.now()
	for i := range summaries {
		summaries[i].ID = s.newID()
		summaries[i].GeneratedAt = generatedAt
	}

	return summaries
}
