package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in minutes
	Min float64 `yaml:"min" json:"min"`
	// Maximum holding time of a trade in minutes
	Max float64 `yaml:"max" json:"max"`
	// Average holding time of a trade in minutes
	Avg float64 `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Sum of all positive trade profits.
	GrossProfit float64 `yaml:"gross_profit" json:"gross_profit"`
	// Sum of all negative trade profits.
	GrossLoss float64 `yaml:"gross_loss" json:"gross_loss"`
	// Net of every trade row: profit + commission + swap.
	NetProfit float64 `yaml:"net_profit" json:"net_profit"`
	// Maximum loss. The smallest single trade profit.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. The largest single trade profit.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of winning trades that has positive profit.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of losing trades that has negative profit.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate in percent.
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	Expectancy   float64 `yaml:"expectancy" json:"expectancy"`
	RiskReward   float64 `yaml:"risk_reward" json:"risk_reward"`
}

type TradeRisk struct {
	SharpeRatio  float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio float64 `yaml:"sortino_ratio" json:"sortino_ratio"`
	// Maximum drawdown of the equity curve in percent of its peak.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
}

type TradeFees struct {
	TotalCommission float64 `yaml:"total_commission" json:"total_commission"`
	TotalSwap       float64 `yaml:"total_swap" json:"total_swap"`
	TotalFees       float64 `yaml:"total_fees" json:"total_fees"`
}

// PerformanceSummary is the point-in-time reduction of a ledger.
type PerformanceSummary struct {
	// ID is the unique identifier for this report.
	ID string `yaml:"id" json:"id"`
	// GeneratedAt is when the summary was computed.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	// AccountID is empty for a portfolio-wide summary.
	AccountID string `yaml:"account_id,omitempty" json:"account_id,omitempty"`
	// Start and End bound the ledger rows the summary covers.
	Start            time.Time        `yaml:"start" json:"start"`
	End              time.Time        `yaml:"end" json:"end"`
	TradeResult      TradeResult      `yaml:"trade_result" json:"trade_result"`
	TradePnl         TradePnl         `yaml:"trade_pnl" json:"trade_pnl"`
	TradeRisk        TradeRisk        `yaml:"trade_risk" json:"trade_risk"`
	TradeFees        TradeFees        `yaml:"trade_fees" json:"trade_fees"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
	TopSymbols       []SymbolCountRow `yaml:"top_symbols" json:"top_symbols"`
}

func WritePerformanceSummary(path string, summaries []PerformanceSummary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal performance summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance summary to file: %w", err)
	}

	return nil
}

func ReadPerformanceSummary(path string) ([]PerformanceSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read performance summary: %w", err)
	}

	var summaries []PerformanceSummary
	if err := yaml.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal performance summary: %w", err)
	}

	return summaries, nil
}
