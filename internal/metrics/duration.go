package metrics

import (
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
)

// outcomes is the emission order of duration classes.
var outcomes = []types.TradeOutcome{types.TradeOutcomeWin, types.TradeOutcomeLoss}

// AvgTradeDuration emits the mean holding time of winning and of losing
// trades per window. Trades without a duration are ignored.
type AvgTradeDuration struct {
	engine window.Engine
}

func NewAvgTradeDuration(engine window.Engine) *AvgTradeDuration {
	return &AvgTradeDuration{engine: engine}
}

func (m *AvgTradeDuration) Name() string {
	return "avg_trade_duration"
}

func (m *AvgTradeDuration) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.DurationRow], error) {
	if !opts.ByAccount && !opts.BySymbol {
		return m.CalculateUngrouped(frame)
	}

	rows := m.rows(frame, opts)
	for i := range rows {
		rows[i].AvgDuration = round(rows[i].AvgDuration)
	}

	return Result[types.DurationRow]{
		Name:    m.Name(),
		Columns: seriesColumns(opts, types.ColumnResult, types.ColumnAvgDuration),
		Rows:    rows,
	}, nil
}

// CalculateUngrouped averages the per-account means.
func (m *AvgTradeDuration) CalculateUngrouped(frame ledger.Frame) (Result[types.DurationRow], error) {
	type key struct {
		at      timeKey
		outcome types.TradeOutcome
	}

	result := Result[types.DurationRow]{
		Name:    m.Name(),
		Columns: seriesColumns(ungroupedOptions(), types.ColumnResult, types.ColumnAvgDuration),
		Rows:    make([]types.DurationRow, 0),
	}

	values := newBucket[key]()
	for _, row := range m.rows(frame, DefaultGroupOptions()) {
		values.add(key{at: keyOf(row.Time), outcome: row.Result}, row.AvgDuration)
	}

	keys := values.sorted(func(a, b key) bool {
		if a.at != b.at {
			return a.at < b.at
		}

		return outcomeIndex(a.outcome) < outcomeIndex(b.outcome)
	})

	for _, k := range keys {
		result.Rows = append(result.Rows, types.DurationRow{
			Time:        k.at.time(),
			Result:      k.outcome,
			AvgDuration: round(mean(values.values[k])),
		})
	}

	return result, nil
}

func (m *AvgTradeDuration) rows(frame ledger.Frame, opts GroupOptions) []types.DurationRow {
	rows := make([]types.DurationRow, 0)
	if frame.IsEmpty() || !frame.HasAll(types.ColumnType, types.ColumnProfit, types.ColumnDuration) {
		return rows
	}

	for _, group := range frame.GroupBy(opts.ByAccount, opts.BySymbol) {
		for anchor, view := range m.engine.All(group.Frame) {
			partitions := map[types.TradeOutcome][]types.TradeEvent{}
			for _, row := range view.Trades().Rows() {
				partitions[row.Outcome()] = append(partitions[row.Outcome()], row)
			}

			for _, outcome := range outcomes {
				values := durations(partitions[outcome])
				if len(values) == 0 {
					continue
				}

				rows = append(rows, types.DurationRow{
					Time:        anchor,
					AccountID:   group.AccountID,
					Symbol:      group.Symbol,
					Result:      outcome,
					AvgDuration: mean(values),
				})
			}
		}
	}

	return rows
}

func outcomeIndex(outcome types.TradeOutcome) int {
	for i, o := range outcomes {
		if o == outcome {
			return i
		}
	}

	return len(outcomes)
}
