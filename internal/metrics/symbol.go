package metrics

import (
	"sort"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

const (
	ColumnProfitPct = "profit_pct"
	// DefaultTopSymbols is the default N of TopSymbols.
	DefaultTopSymbols = 5
)

// symbolColumns returns time, account_id when grouped by account, symbol, then value.
func symbolColumns(opts GroupOptions, value string) []string {
	columns := []string{types.ColumnTime}
	if opts.ByAccount {
		columns = append(columns, types.ColumnAccountID)
	}

	return append(columns, types.ColumnSymbol, value)
}

// symbolSeries sums a per-trade value by (period, symbol). The relative
// variant divides each symbol by the period total of its group.
type symbolSeries struct {
	name     string
	column   string
	period   types.TimePeriod
	requires []string
	value    func(types.TradeEvent) float64
	relative bool
}

func (m *symbolSeries) Name() string {
	return m.name
}

// CalculateGrouped always splits by symbol; opts.BySymbol has no effect.
func (m *symbolSeries) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SymbolValueRow], error) {
	type key struct {
		at     timeKey
		symbol string
	}

	result := Result[types.SymbolValueRow]{
		Name:    m.name,
		Columns: symbolColumns(opts, m.column),
		Rows:    make([]types.SymbolValueRow, 0),
	}

	if frame.IsEmpty() || !frame.HasAll(m.requires...) {
		return result, nil
	}

	for _, group := range frame.Trades().GroupBy(opts.ByAccount, false) {
		sums := map[key]float64{}
		totals := map[timeKey]float64{}
		keys := make([]key, 0)

		for _, row := range group.Frame.Rows() {
			k := key{at: keyOf(m.period.Truncate(row.Time)), symbol: row.Symbol}
			if _, ok := sums[k]; !ok {
				keys = append(keys, k)
			}

			v := m.value(row)
			sums[k] += v
			totals[k.at] += v
		}

		sort.Slice(keys, func(i, j int) bool {
			if keys[i].at != keys[j].at {
				return keys[i].at < keys[j].at
			}

			return keys[i].symbol < keys[j].symbol
		})

		for _, k := range keys {
			value := sums[k]
			if m.relative {
				value = 0
				if total := totals[k.at]; total != 0 {
					value = sums[k] / total * 100
				}
			}

			result.Rows = append(result.Rows, types.SymbolValueRow{
				Time:      k.at.time(),
				AccountID: group.AccountID,
				Symbol:    k.symbol,
				Value:     round(value),
			})
		}
	}

	return result, nil
}

// CalculateUngrouped pools the trades of every account.
func (m *symbolSeries) CalculateUngrouped(frame ledger.Frame) (Result[types.SymbolValueRow], error) {
	return m.CalculateGrouped(frame, ungroupedOptions())
}

type ProfitPerSymbol struct{ symbolSeries }

// NewProfitPerSymbol sums trade profit per symbol and period.
func NewProfitPerSymbol(period types.TimePeriod) *ProfitPerSymbol {
	return &ProfitPerSymbol{symbolSeries{
		name:     "profit_per_symbol",
		column:   ColumnProfit,
		period:   period,
		requires: []string{types.ColumnType, types.ColumnProfit, types.ColumnSymbol},
		value:    func(e types.TradeEvent) float64 { return e.Profit },
	}}
}

type RelativeProfitPerSymbol struct{ symbolSeries }

// NewRelativeProfitPerSymbol emits each symbol's share of the period profit
// in percent, 0 when the period total is zero.
func NewRelativeProfitPerSymbol(period types.TimePeriod) *RelativeProfitPerSymbol {
	return &RelativeProfitPerSymbol{symbolSeries{
		name:     "profit_per_symbol_relative",
		column:   ColumnProfitPct,
		period:   period,
		requires: []string{types.ColumnType, types.ColumnProfit, types.ColumnSymbol},
		value:    func(e types.TradeEvent) float64 { return e.Profit },
		relative: true,
	}}
}

type FeesPerSymbol struct{ symbolSeries }

// NewFeesPerSymbol sums commission + swap per symbol and period.
func NewFeesPerSymbol(period types.TimePeriod) *FeesPerSymbol {
	return &FeesPerSymbol{symbolSeries{
		name:     "fees_per_symbol",
		column:   ColumnFees,
		period:   period,
		requires: []string{types.ColumnType, types.ColumnSymbol, types.ColumnCommission, types.ColumnSwap},
		value:    types.TradeEvent.Fees,
	}}
}

// TopSymbols counts trades per symbol and keeps the N most traded.
// Ties are broken by symbol name.
type TopSymbols struct {
	n int
}

func NewTopSymbols(n int) *TopSymbols {
	if n < 1 {
		n = DefaultTopSymbols
	}

	return &TopSymbols{n: n}
}

func (m *TopSymbols) Name() string {
	return "top_symbols"
}

func (m *TopSymbols) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SymbolCountRow], error) {
	columns := []string{types.ColumnSymbol, types.ColumnCount}
	if opts.ByAccount {
		columns = append([]string{types.ColumnAccountID}, columns...)
	}

	result := Result[types.SymbolCountRow]{
		Name:    m.Name(),
		Columns: columns,
		Rows:    make([]types.SymbolCountRow, 0),
	}

	if frame.IsEmpty() || !frame.HasAll(types.ColumnType, types.ColumnSymbol) {
		return result, nil
	}

	for _, group := range frame.Trades().GroupBy(opts.ByAccount, false) {
		for _, row := range topSymbols(group.Frame, m.n) {
			row.AccountID = group.AccountID
			result.Rows = append(result.Rows, row)
		}
	}

	return result, nil
}

func (m *TopSymbols) CalculateUngrouped(frame ledger.Frame) (Result[types.SymbolCountRow], error) {
	return m.CalculateGrouped(frame, ungroupedOptions())
}

func topSymbols(trades ledger.Frame, n int) []types.SymbolCountRow {
	counts := map[string]int{}
	for _, row := range trades.Rows() {
		counts[row.Symbol]++
	}

	rows := make([]types.SymbolCountRow, 0, len(counts))
	for symbol, count := range counts {
		rows = append(rows, types.SymbolCountRow{Symbol: symbol, Count: count})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}

		return rows[i].Symbol < rows[j].Symbol
	})

	if len(rows) > n {
		rows = rows[:n]
	}

	return rows
}
