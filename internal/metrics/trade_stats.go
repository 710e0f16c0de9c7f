package metrics

import (
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
)

// Value columns of the rolling trade statistics.
const (
	ColumnExpectancy         = "expectancy"
	ColumnRelativeExpectancy = "relative_expectancy"
	ColumnProfitFactor       = "profit_factor"
	ColumnRiskReward         = "risk_reward"
	ColumnSharpeRatio        = "sharpe_ratio"
	ColumnSortinoRatio       = "sortino_ratio"
	ColumnWinRate            = "win_rate"
	ColumnAvgHoldTime        = "avg_hold_time"
	ColumnTradeCount         = "trade_count"
)

var tradeColumns = []string{types.ColumnType, types.ColumnProfit}

type Expectancy struct{ rollingSeries }

// NewExpectancy computes win_rate*avg_win - (1-win_rate)*avg_loss per window.
func NewExpectancy(engine window.Engine) *Expectancy {
	return &Expectancy{rollingSeries{
		name:     "expectancy",
		column:   ColumnExpectancy,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return newTradeStats(trades).expectancy(), true
		},
	}}
}

type RelativeExpectancy struct{ rollingSeries }

// NewRelativeExpectancy expresses expectancy in percent of the account's
// initial balance. Accounts without a seed entry use ledger.DefaultInitialBalance.
func NewRelativeExpectancy(engine window.Engine) *RelativeExpectancy {
	return &RelativeExpectancy{rollingSeries{
		name:     "expectancy_relative",
		column:   ColumnRelativeExpectancy,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, s scope) (float64, bool) {
			if s.initialBalance == 0 {
				return 0, true
			}

			return newTradeStats(trades).expectancy() / s.initialBalance * 100, true
		},
	}}
}

type ProfitFactor struct{ rollingSeries }

func NewProfitFactor(engine window.Engine) *ProfitFactor {
	return &ProfitFactor{rollingSeries{
		name:     "profit_factor",
		column:   ColumnProfitFactor,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return newTradeStats(trades).profitFactor(), true
		},
	}}
}

type RiskReward struct{ rollingSeries }

func NewRiskReward(engine window.Engine) *RiskReward {
	return &RiskReward{rollingSeries{
		name:     "risk_reward",
		column:   ColumnRiskReward,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return newTradeStats(trades).riskReward(), true
		},
	}}
}

type SharpeRatio struct{ rollingSeries }

// NewSharpeRatio uses the daily profit sums of each window as returns.
func NewSharpeRatio(engine window.Engine) *SharpeRatio {
	return &SharpeRatio{rollingSeries{
		name:     "sharpe_ratio",
		column:   ColumnSharpeRatio,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return sharpeRatio(dailyProfits(trades)), true
		},
	}}
}

type SortinoRatio struct{ rollingSeries }

func NewSortinoRatio(engine window.Engine) *SortinoRatio {
	return &SortinoRatio{rollingSeries{
		name:     "sortino_ratio",
		column:   ColumnSortinoRatio,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return sortinoRatio(dailyProfits(trades)), true
		},
	}}
}

type WinRate struct{ rollingSeries }

// NewWinRate emits the share of profitable trades in percent.
func NewWinRate(engine window.Engine) *WinRate {
	return &WinRate{rollingSeries{
		name:     "win_rate",
		column:   ColumnWinRate,
		engine:   engine,
		requires: tradeColumns,
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return newTradeStats(trades).winRate() * 100, true
		},
	}}
}

type AvgHoldTime struct{ rollingSeries }

// NewAvgHoldTime emits the mean holding time in minutes. Windows without
// any recorded duration emit nothing.
func NewAvgHoldTime(engine window.Engine) *AvgHoldTime {
	return &AvgHoldTime{rollingSeries{
		name:     "avg_hold_time",
		column:   ColumnAvgHoldTime,
		engine:   engine,
		requires: append([]string{types.ColumnDuration}, tradeColumns...),
		reduce:   mean,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			values := durations(trades.Rows())
			if len(values) == 0 {
				return 0, false
			}

			return mean(values), true
		},
	}}
}

type TradesPerDay struct{ rollingSeries }

// NewTradesPerDay counts the trades in each window.
func NewTradesPerDay(engine window.Engine) *TradesPerDay {
	return &TradesPerDay{rollingSeries{
		name:     "trades_per_day",
		column:   ColumnTradeCount,
		engine:   engine,
		requires: tradeColumns,
		reduce:   sum,
		value: func(trades ledger.Frame, _ scope) (float64, bool) {
			return float64(trades.Len()), true
		},
	}}
}
