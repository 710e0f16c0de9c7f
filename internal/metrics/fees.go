package metrics

import (
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

const (
	ColumnCommission         = types.ColumnCommission
	ColumnSwap               = types.ColumnSwap
	ColumnNetProfitAfterFees = "net_profit_after_fees"
	ColumnFeesPct            = "fees_pct"
	ColumnFees               = "fees"
)

// periodSeries sums per-trade components into time-period buckets and
// derives one value per bucket from the sums.
type periodSeries struct {
	name       string
	column     string
	period     types.TimePeriod
	requires   []string
	components func(types.TradeEvent) []float64
	value      func(sums []float64) float64
}

func (m *periodSeries) Name() string {
	return m.name
}

func (m *periodSeries) ValueColumn() string {
	return m.column
}

func (m *periodSeries) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SeriesRow], error) {
	result := Result[types.SeriesRow]{
		Name:    m.name,
		Columns: seriesColumns(opts, m.column),
		Rows:    make([]types.SeriesRow, 0),
	}

	if frame.IsEmpty() || !frame.HasAll(m.requires...) {
		return result, nil
	}

	for _, group := range frame.Trades().GroupBy(opts.ByAccount, opts.BySymbol) {
		sums := newBucket[timeKey]()

		for _, row := range group.Frame.Rows() {
			key := keyOf(m.period.Truncate(row.Time))
			if existing, ok := sums.values[key]; ok {
				for i, c := range m.components(row) {
					existing[i] += c
				}

				continue
			}

			sums.keys = append(sums.keys, key)
			sums.values[key] = m.components(row)
		}

		for _, key := range sums.sorted(timeKeyLess) {
			result.Rows = append(result.Rows, types.SeriesRow{
				Time:      key.time(),
				AccountID: group.AccountID,
				Symbol:    group.Symbol,
				Value:     round(m.value(sums.values[key])),
			})
		}
	}

	return result, nil
}

// CalculateUngrouped aggregates all accounts into one bucket series. Sums
// equal the per-account sums added up; ratios are derived from the totals.
func (m *periodSeries) CalculateUngrouped(frame ledger.Frame) (Result[types.SeriesRow], error) {
	return m.CalculateGrouped(frame, ungroupedOptions())
}

func first(sums []float64) float64 {
	return sums[0]
}

type Commission struct{ periodSeries }

// NewCommission sums commission per period.
func NewCommission(period types.TimePeriod) *Commission {
	return &Commission{periodSeries{
		name:       "commission",
		column:     ColumnCommission,
		period:     period,
		requires:   []string{types.ColumnType, types.ColumnCommission},
		components: func(e types.TradeEvent) []float64 { return []float64{e.Commission} },
		value:      first,
	}}
}

type Swap struct{ periodSeries }

// NewSwap sums swap per period.
func NewSwap(period types.TimePeriod) *Swap {
	return &Swap{periodSeries{
		name:       "swap",
		column:     ColumnSwap,
		period:     period,
		requires:   []string{types.ColumnType, types.ColumnSwap},
		components: func(e types.TradeEvent) []float64 { return []float64{e.Swap} },
		value:      first,
	}}
}

type NetProfitAfterFees struct{ periodSeries }

// NewNetProfitAfterFees sums profit - commission - swap per period.
func NewNetProfitAfterFees(period types.TimePeriod) *NetProfitAfterFees {
	return &NetProfitAfterFees{periodSeries{
		name:     "net_profit_after_fees",
		column:   ColumnNetProfitAfterFees,
		period:   period,
		requires: []string{types.ColumnType, types.ColumnProfit, types.ColumnCommission, types.ColumnSwap},
		components: func(e types.TradeEvent) []float64 {
			return []float64{e.Profit - e.Commission - e.Swap}
		},
		value: first,
	}}
}

type FeesPctOfProfit struct{ periodSeries }

// NewFeesPctOfProfit emits total fees in percent of total profit per
// period, 0 when the profit sums to zero.
func NewFeesPctOfProfit(period types.TimePeriod) *FeesPctOfProfit {
	return &FeesPctOfProfit{periodSeries{
		name:     "fees_pct_of_profit",
		column:   ColumnFeesPct,
		period:   period,
		requires: []string{types.ColumnType, types.ColumnProfit, types.ColumnCommission, types.ColumnSwap},
		components: func(e types.TradeEvent) []float64 {
			return []float64{e.Fees(), e.Profit}
		},
		value: func(sums []float64) float64 {
			if sums[1] == 0 {
				return 0
			}

			return sums[0] / sums[1] * 100
		},
	}}
}
