package metrics

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
)

const ColumnProfit = types.ColumnProfit

// slotProfit is the aggregated profit of one time-of-day slot inside a window.
type slotProfit struct {
	anchor    time.Time
	accountID optional.Option[string]
	symbol    optional.Option[string]
	slot      int
	value     float64
}

type slotKey struct {
	at   timeKey
	slot int
}

// slotSeries aggregates window trades by an integer slot such as the hour.
type slotSeries struct {
	engine    window.Engine
	slot      func(types.TradeEvent) int
	aggregate reducer
	reduce    reducer
}

func (s slotSeries) grouped(frame ledger.Frame, opts GroupOptions) []slotProfit {
	results := make([]slotProfit, 0)
	if frame.IsEmpty() || !frame.HasAll(tradeColumns...) {
		return results
	}

	for _, group := range frame.GroupBy(opts.ByAccount, opts.BySymbol) {
		for anchor, view := range s.engine.All(group.Frame) {
			slots := map[int][]float64{}
			for _, row := range view.Trades().Rows() {
				slot := s.slot(row)
				slots[slot] = append(slots[slot], row.Profit)
			}

			keys := make([]int, 0, len(slots))
			for slot := range slots {
				keys = append(keys, slot)
			}

			sort.Ints(keys)

			for _, slot := range keys {
				results = append(results, slotProfit{
					anchor:    anchor,
					accountID: group.AccountID,
					symbol:    group.Symbol,
					slot:      slot,
					value:     s.aggregate(slots[slot]),
				})
			}
		}
	}

	return results
}

// ungrouped reduces per-account slot values across accounts.
func (s slotSeries) ungrouped(frame ledger.Frame) []slotProfit {
	values := newBucket[slotKey]()
	for _, p := range s.grouped(frame, DefaultGroupOptions()) {
		values.add(slotKey{at: keyOf(p.anchor), slot: p.slot}, p.value)
	}

	keys := values.sorted(func(a, b slotKey) bool {
		if a.at != b.at {
			return a.at < b.at
		}

		return a.slot < b.slot
	})

	results := make([]slotProfit, 0, len(keys))
	for _, k := range keys {
		results = append(results, slotProfit{anchor: k.at.time(), slot: k.slot, value: s.reduce(values.values[k])})
	}

	return results
}

// ProfitByHour sums trade profit per UTC hour of day in each window.
type ProfitByHour struct {
	slots slotSeries
}

func NewProfitByHour(engine window.Engine) *ProfitByHour {
	return &ProfitByHour{slots: slotSeries{
		engine:    engine,
		slot:      func(e types.TradeEvent) int { return e.Time.UTC().Hour() },
		aggregate: sum,
		reduce:    sum,
	}}
}

func (m *ProfitByHour) Name() string {
	return "profit_by_hour"
}

func (m *ProfitByHour) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.HourProfitRow], error) {
	if !opts.ByAccount && !opts.BySymbol {
		return m.CalculateUngrouped(frame)
	}

	return m.result(opts, m.slots.grouped(frame, opts)), nil
}

func (m *ProfitByHour) CalculateUngrouped(frame ledger.Frame) (Result[types.HourProfitRow], error) {
	return m.result(ungroupedOptions(), m.slots.ungrouped(frame)), nil
}

func (m *ProfitByHour) result(opts GroupOptions, profits []slotProfit) Result[types.HourProfitRow] {
	result := Result[types.HourProfitRow]{
		Name:    m.Name(),
		Columns: seriesColumns(opts, types.ColumnHour, ColumnProfit),
		Rows:    make([]types.HourProfitRow, 0, len(profits)),
	}

	for _, p := range profits {
		result.Rows = append(result.Rows, types.HourProfitRow{
			Time:      p.anchor,
			AccountID: p.accountID,
			Symbol:    p.symbol,
			Hour:      p.slot,
			Profit:    round(p.value),
		})
	}

	return result
}

// ProfitByWeekday averages trade profit per weekday in each window.
// Weekdays are numbered Monday=0 through Sunday=6.
type ProfitByWeekday struct {
	slots slotSeries
}

func NewProfitByWeekday(engine window.Engine) *ProfitByWeekday {
	return &ProfitByWeekday{slots: slotSeries{
		engine:    engine,
		slot:      func(e types.TradeEvent) int { return types.MondayIndex(e.Time.UTC().Weekday()) },
		aggregate: mean,
		reduce:    mean,
	}}
}

func (m *ProfitByWeekday) Name() string {
	return "profit_by_weekday"
}

func (m *ProfitByWeekday) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.WeekdayProfitRow], error) {
	if !opts.ByAccount && !opts.BySymbol {
		return m.CalculateUngrouped(frame)
	}

	return m.result(opts, m.slots.grouped(frame, opts)), nil
}

func (m *ProfitByWeekday) CalculateUngrouped(frame ledger.Frame) (Result[types.WeekdayProfitRow], error) {
	return m.result(ungroupedOptions(), m.slots.ungrouped(frame)), nil
}

func (m *ProfitByWeekday) result(opts GroupOptions, profits []slotProfit) Result[types.WeekdayProfitRow] {
	result := Result[types.WeekdayProfitRow]{
		Name:    m.Name(),
		Columns: seriesColumns(opts, types.ColumnWeekday, types.ColumnDayName, ColumnProfit),
		Rows:    make([]types.WeekdayProfitRow, 0, len(profits)),
	}

	for _, p := range profits {
		result.Rows = append(result.Rows, types.WeekdayProfitRow{
			Time:      p.anchor,
			AccountID: p.accountID,
			Symbol:    p.symbol,
			Weekday:   p.slot,
			DayName:   time.Weekday((p.slot + 1) % 7).String(),
			Profit:    round(p.value),
		})
	}

	return result
}
