package metrics

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

const (
	ColumnAbsoluteBalance  = "absolute_balance"
	ColumnPercentageGrowth = "percentage_growth"
)

// BalancePoint is the end-of-day balance of one account.
type BalancePoint struct {
	Time            time.Time
	AccountID       string
	InitialBalance  float64
	AbsoluteBalance float64
}

// PercentageGrowth is the change against the initial balance in percent.
func (p BalancePoint) PercentageGrowth() float64 {
	if p.InitialBalance == 0 {
		return 0
	}

	return (p.AbsoluteBalance - p.InitialBalance) / p.InitialBalance * 100
}

// BalanceCurves returns, for every account, one point per calendar day from
// the account's first row to its last row. The balance is the initial
// balance plus the cumulative net of every non-seed row up to and including
// that day. Points are ordered by account, then by day.
//
// Every account must have a seed entry; otherwise a MissingSeedError is returned.
func BalanceCurves(frame ledger.Frame) ([]BalancePoint, error) {
	points := make([]BalancePoint, 0)
	if frame.IsEmpty() || !frame.HasAll(types.ColumnType, types.ColumnProfit) {
		return points, nil
	}

	balances := ledger.InitialBalances(frame)

	for _, group := range frame.GroupBy(true, false) {
		account := group.AccountID.Unwrap()

		initial, err := balances.Require(account)
		if err != nil {
			return nil, err
		}

		rows := group.Frame.Rows()
		first, last, _ := group.Frame.Span()
		cumulative := 0.0
		i := 0

		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			next := day.AddDate(0, 0, 1)

			for ; i < len(rows) && rows[i].Time.Before(next); i++ {
				if rows[i].Type != types.TradeEventInitialBalance {
					cumulative += rows[i].Net()
				}
			}

			points = append(points, BalancePoint{
				Time:            day,
				AccountID:       account,
				InitialBalance:  initial,
				AbsoluteBalance: initial + cumulative,
			})
		}
	}

	return points, nil
}

// balanceSeries emits one value per account per day derived from the balance curve.
// Balance metrics always group by account; the symbol axis does not apply.
type balanceSeries struct {
	name   string
	column string
	value  func(BalancePoint) float64
}

func (m *balanceSeries) Name() string {
	return m.name
}

func (m *balanceSeries) ValueColumn() string {
	return m.column
}

func (m *balanceSeries) CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[types.SeriesRow], error) {
	if !opts.ByAccount {
		return m.CalculateUngrouped(frame)
	}

	result := Result[types.SeriesRow]{
		Name:    m.name,
		Columns: seriesColumns(GroupOptions{ByAccount: true}, m.column),
		Rows:    make([]types.SeriesRow, 0),
	}

	points, err := BalanceCurves(frame)
	if err != nil {
		return result, err
	}

	for _, point := range points {
		result.Rows = append(result.Rows, types.SeriesRow{
			Time:      point.Time,
			AccountID: optional.Some(point.AccountID),
			Value:     round(m.value(point)),
		})
	}

	return result, nil
}

// CalculateUngrouped averages, per day, every account that has started.
// An account keeps its last balance until the end of the frame.
func (m *balanceSeries) CalculateUngrouped(frame ledger.Frame) (Result[types.SeriesRow], error) {
	result := Result[types.SeriesRow]{
		Name:    m.name,
		Columns: seriesColumns(ungroupedOptions(), m.column),
		Rows:    make([]types.SeriesRow, 0),
	}

	points, err := BalanceCurves(frame)
	if err != nil {
		return result, err
	}

	curves := make(map[string][]BalancePoint)
	accounts := make([]string, 0)

	for _, point := range points {
		if _, ok := curves[point.AccountID]; !ok {
			accounts = append(accounts, point.AccountID)
		}

		curves[point.AccountID] = append(curves[point.AccountID], point)
	}

	cursor := make(map[string]int, len(accounts))

	for _, day := range frame.Days() {
		values := make([]float64, 0, len(accounts))

		for _, account := range accounts {
			curve := curves[account]
			if day.Before(curve[0].Time) {
				continue
			}

			i := cursor[account]
			for i+1 < len(curve) && !curve[i+1].Time.After(day) {
				i++
			}

			cursor[account] = i
			values = append(values, m.value(curve[i]))
		}

		if len(values) == 0 {
			continue
		}

		result.Rows = append(result.Rows, types.SeriesRow{Time: day, Value: round(mean(values))})
	}

	return result, nil
}

type BalanceAbsolute struct{ balanceSeries }

// NewBalanceAbsolute emits the end-of-day account balance.
func NewBalanceAbsolute() *BalanceAbsolute {
	return &BalanceAbsolute{balanceSeries{
		name:   "balance_absolute",
		column: ColumnAbsoluteBalance,
		value:  func(p BalancePoint) float64 { return p.AbsoluteBalance },
	}}
}

type BalanceRelative struct{ balanceSeries }

// NewBalanceRelative emits the balance growth in percent of the initial balance.
func NewBalanceRelative() *BalanceRelative {
	return &BalanceRelative{balanceSeries{
		name:   "balance_relative",
		column: ColumnPercentageGrowth,
		value:  BalancePoint.PercentageGrowth,
	}}
}
