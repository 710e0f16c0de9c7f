package metrics

import (
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
)

// scope carries per-group context into a window reduction.
type scope struct {
	initialBalance float64
}

func newScope(group ledger.Group, balances ledger.Balances) scope {
	if group.AccountID.IsSome() {
		return scope{initialBalance: balances.OrDefault(group.AccountID.Unwrap())}
	}

	total := 0.0
	for _, account := range group.Frame.Accounts() {
		total += balances.OrDefault(account)
	}

	return scope{initialBalance: total}
}

// windowValue reduces the trade rows of one window to a single value.
// Returning false suppresses the row.
type windowValue func(trades ledger.Frame, s scope) (float64, bool)

// rollingSeries is the shared implementation of every metric that emits
// one value per anchor day per group.
type rollingSeries struct {
	name     string
	column   string
	engine   window.Engine
	requires []string
	reduce   reducer
	value    windowValue
}

func (m *rollingSeries) Name() string {
	return m.name
}

// ValueColumn is the name of the emitted value column.
func (m *rollingSeries) ValueColumn() string {
	return m.column
}

func (m *rollingSeries) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SeriesRow], error) {
	if !opts.ByAccount && !opts.BySymbol {
		return m.CalculateUngrouped(frame)
	}

	rows := m.series(frame, opts)
	for i := range rows {
		rows[i].Value = round(rows[i].Value)
	}

	return Result[types.SeriesRow]{Name: m.name, Columns: seriesColumns(opts, m.column), Rows: rows}, nil
}

func (m *rollingSeries) CalculateUngrouped(frame ledger.Frame) (Result[types.SeriesRow], error) {
	result := Result[types.SeriesRow]{
		Name:    m.name,
		Columns: seriesColumns(ungroupedOptions(), m.column),
		Rows:    make([]types.SeriesRow, 0),
	}

	grouped := newBucket[timeKey]()
	for _, row := range m.series(frame, DefaultGroupOptions()) {
		grouped.add(keyOf(row.Time), row.Value)
	}

	for _, key := range grouped.sorted(timeKeyLess) {
		result.Rows = append(result.Rows, types.SeriesRow{
			Time:  key.time(),
			Value: round(m.reduce(grouped.values[key])),
		})
	}

	return result, nil
}

// series computes unrounded rows, group-major and ascending by anchor.
func (m *rollingSeries) series(frame ledger.Frame, opts GroupOptions) []types.SeriesRow {
	rows := make([]types.SeriesRow, 0)
	if frame.IsEmpty() || !frame.HasAll(m.requires...) {
		return rows
	}

	balances := ledger.InitialBalances(frame)

	for _, group := range frame.GroupBy(opts.ByAccount, opts.BySymbol) {
		s := newScope(group, balances)

		for anchor, view := range m.engine.All(group.Frame) {
			trades := view.Trades()
			if trades.IsEmpty() {
				continue
			}

			value, ok := m.value(trades, s)
			if !ok {
				continue
			}

			rows = append(rows, types.SeriesRow{
				Time:      anchor,
				AccountID: group.AccountID,
				Symbol:    group.Symbol,
				Value:     value,
			})
		}
	}

	return rows
}
