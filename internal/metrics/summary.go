package metrics

import (
	"slices"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Summarize reduces the whole frame into a point-in-time performance
// summary. ID and GeneratedAt are left for the caller to stamp.
func Summarize(frame ledger.Frame, topN int) types.PerformanceSummary {
	var summary types.PerformanceSummary

	if frame.IsEmpty() {
		summary.TopSymbols = []types.SymbolCountRow{}

		return summary
	}

	summary.Start = frame.At(0).Time
	summary.End = frame.At(frame.Len() - 1).Time

	trades := frame.Trades()
	stats := newTradeStats(trades)

	summary.TradeResult = types.TradeResult{
		NumberOfTrades:        stats.count,
		NumberOfWinningTrades: stats.wins,
		NumberOfLosingTrades:  stats.losses,
		WinRate:               round(stats.winRate() * 100),
		ProfitFactor:          round(stats.profitFactor()),
		Expectancy:            round(stats.expectancy()),
		RiskReward:            round(stats.riskReward()),
	}

	summary.TradePnl = types.TradePnl{
		GrossProfit:   round(stats.grossWin),
		GrossLoss:     round(stats.grossLoss),
		NetProfit:     round(stats.net),
		MaximumLoss:   round(stats.minProfit),
		MaximumProfit: round(stats.maxProfit),
	}

	maxDrawdown := 0.0
	for _, point := range drawdownCurve(trades) {
		maxDrawdown = max(maxDrawdown, point.drawdownPct)
	}

	returns := dailyProfits(trades)
	summary.TradeRisk = types.TradeRisk{
		SharpeRatio:    round(sharpeRatio(returns)),
		SortinoRatio:   round(sortinoRatio(returns)),
		MaxDrawdownPct: round(maxDrawdown),
	}

	summary.TradeFees = types.TradeFees{
		TotalCommission: round(stats.commission),
		TotalSwap:       round(stats.swap),
		TotalFees:       round(stats.commission + stats.swap),
	}

	if values := durations(trades.Rows()); len(values) > 0 {
		summary.TradeHoldingTime = types.TradeHoldingTime{
			Min: round(slices.Min(values)),
			Max: round(slices.Max(values)),
			Avg: round(mean(values)),
		}
	}

	if topN < 1 {
		topN = DefaultTopSymbols
	}

	summary.TopSymbols = topSymbols(trades, topN)

	return summary
}

// SummarizeAccounts returns one summary per account, ordered by account id.
func SummarizeAccounts(frame ledger.Frame, topN int) []types.PerformanceSummary {
	summaries := make([]types.PerformanceSummary, 0)

	for _, group := range frame.GroupBy(true, false) {
		summary := Summarize(group.Frame, topN)
		summary.AccountID = group.AccountID.Unwrap()
		summaries = append(summaries, summary)
	}

	return summaries
}
