package metrics

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// riskRewardFloor bounds the average loss from below in the risk-reward ratio.
const riskRewardFloor = 1e-6

// tradeStats is the win/loss breakdown of a set of trade rows.
type tradeStats struct {
	count      int
	wins       int
	losses     int
	grossWin   float64
	grossLoss  float64
	maxProfit  float64
	minProfit  float64
	commission float64
	swap       float64
	net        float64
}

func newTradeStats(trades ledger.Frame) tradeStats {
	var s tradeStats

	for i, row := range trades.Rows() {
		s.count++
		s.commission += row.Commission
		s.swap += row.Swap
		s.net += row.Net()

		if i == 0 || row.Profit > s.maxProfit {
			s.maxProfit = row.Profit
		}

		if i == 0 || row.Profit < s.minProfit {
			s.minProfit = row.Profit
		}

		switch {
		case row.IsWin():
			s.wins++
			s.grossWin += row.Profit
		case row.IsLoss():
			s.losses++
			s.grossLoss += row.Profit
		}
	}

	return s
}

// winRate is the fraction of trades with positive profit, in [0, 1].
func (s tradeStats) winRate() float64 {
	if s.count == 0 {
		return 0
	}

	return float64(s.wins) / float64(s.count)
}

func (s tradeStats) avgWin() float64 {
	if s.wins == 0 {
		return 0
	}

	return s.grossWin / float64(s.wins)
}

// avgLoss is the magnitude of the mean losing profit.
func (s tradeStats) avgLoss() float64 {
	if s.losses == 0 {
		return 0
	}

	return math.Abs(s.grossLoss / float64(s.losses))
}

func (s tradeStats) expectancy() float64 {
	winRate := s.winRate()

	return winRate*s.avgWin() - (1-winRate)*s.avgLoss()
}

// profitFactor is 0 when there are no losing trades.
func (s tradeStats) profitFactor() float64 {
	if s.grossLoss == 0 {
		return 0
	}

	return s.grossWin / math.Abs(s.grossLoss)
}

func (s tradeStats) riskReward() float64 {
	return s.avgWin() / math.Max(s.avgLoss(), riskRewardFloor)
}

// dailyProfits sums profit per UTC calendar day, in ascending day order.
func dailyProfits(trades ledger.Frame) []float64 {
	profits := make([]float64, 0)

	var current time.Time

	for _, row := range trades.Rows() {
		day := row.Day()
		if len(profits) == 0 || !day.Equal(current) {
			profits = append(profits, 0)
			current = day
		}

		profits[len(profits)-1] += row.Profit
	}

	return profits
}

func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	stddev := sampleStddev(returns)
	if stddev == 0 {
		return 0
	}

	return mean(returns) / stddev
}

func sortinoRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	negative := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}

	stddev := sampleStddev(negative)
	if stddev == 0 {
		return 0
	}

	return mean(returns) / stddev
}

// durations returns the non-null holding times of the rows.
func durations(rows []types.TradeEvent) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.Duration.IsSome() {
			values = append(values, row.Duration.Unwrap())
		}
	}

	return values
}

// drawdownPoint is the equity curve state after the last row at an instant.
type drawdownPoint struct {
	time        time.Time
	equity      float64
	peak        float64
	drawdownPct float64
}

// drawdownCurve walks the cumulative profit of the trade rows. Rows sharing
// a timestamp collapse into one point holding the state after the last of them.
func drawdownCurve(trades ledger.Frame) []drawdownPoint {
	points := make([]drawdownPoint, 0, trades.Len())

	equity := 0.0
	peak := math.Inf(-1)

	for _, row := range trades.Rows() {
		equity += row.Profit
		peak = math.Max(peak, equity)

		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - equity) / peak * 100
		}

		point := drawdownPoint{time: row.Time, equity: equity, peak: peak, drawdownPct: drawdown}

		if n := len(points); n > 0 && points[n-1].time.Equal(row.Time) {
			points[n-1] = point

			continue
		}

		points = append(points, point)
	}

	return points
}
