package metrics

import (
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

const ColumnDrawdownPct = "drawdown_pct"

// MaxDrawdown emits the relative drawdown of the cumulative-profit equity
// curve at every distinct trade time. Fees are not part of the curve.
type MaxDrawdown struct{}

func NewMaxDrawdown() *MaxDrawdown {
	return &MaxDrawdown{}
}

func (m *MaxDrawdown) Name() string {
	return "max_drawdown_relative"
}

func (m *MaxDrawdown) ValueColumn() string {
	return ColumnDrawdownPct
}

func (m *MaxDrawdown) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SeriesRow], error) {
	result := Result[types.SeriesRow]{
		Name:    m.Name(),
		Columns: seriesColumns(opts, ColumnDrawdownPct),
		Rows:    make([]types.SeriesRow, 0),
	}

	if frame.IsEmpty() || !frame.HasAll(tradeColumns...) {
		return result, nil
	}

	for _, group := range frame.Trades().GroupBy(opts.ByAccount, opts.BySymbol) {
		for _, point := range drawdownCurve(group.Frame) {
			result.Rows = append(result.Rows, types.SeriesRow{
				Time:      point.time,
				AccountID: group.AccountID,
				Symbol:    group.Symbol,
				Value:     round(point.drawdownPct),
			})
		}
	}

	return result, nil
}

// CalculateUngrouped runs a single curve over the trades of every account.
func (m *MaxDrawdown) CalculateUngrouped(frame ledger.Frame) (Result[types.SeriesRow], error) {
	return m.CalculateGrouped(frame, ungroupedOptions())
}
