package analytics

import (
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

func seed(account string, at time.Time, balance float64) types.TradeEvent {
	return types.TradeEvent{
		AccountID: account,
		Time:      at,
		Type:      types.TradeEventInitialBalance,
		Profit:    balance,
		AssetType: types.AssetTypeUnknown,
	}
}

func trade(account, symbol string, at time.Time, eventType types.TradeEventType, profit, commission, swap float64) types.TradeEvent {
	return types.TradeEvent{
		AccountID:  account,
		Symbol:     symbol,
		Time:       at,
		Type:       eventType,
		Profit:     profit,
		Commission: commission,
		Swap:       swap,
		AssetType:  types.AssetTypeForex,
	}
}

// singleAccountFrame is account A with a 1000 seed, two wins and one loss.
func singleAccountFrame() ledger.Frame {
	return ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 50, -1, 0),
		trade("A", "EURUSD", day(2), types.TradeEventShort, 100, -1, -2),
		trade("A", "GBPUSD", day(3), types.TradeEventLong, -30, -1, 0),
	})
}

func twoAccountFrame() ledger.Frame {
	return ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		seed("B", day(0), 2000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 500, 0, 0),
		trade("B", "BTC", day(1).Add(time.Hour), types.TradeEventShort, -200, 0, 0),
	})
}
