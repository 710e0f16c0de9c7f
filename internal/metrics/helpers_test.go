package metrics

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
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

func withDuration(e types.TradeEvent, minutes float64) types.TradeEvent {
	e.Duration = optional.Some(minutes)

	return e
}

// seedOneFrame is a single account with one seed entry, two wins and one loss.
func seedOneFrame() ledger.Frame {
	return ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 50, -1, 0),
		trade("A", "EURUSD", day(2), types.TradeEventShort, 100, -1, -2),
		trade("A", "GBPUSD", day(3), types.TradeEventLong, -30, -1, 0),
	})
}

// seedTwoFrame holds two accounts: A gains 500 net, B loses 200 net.
func seedTwoFrame() ledger.Frame {
	return ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		seed("B", day(0), 2000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 500, 0, 0),
		trade("B", "BTC", day(1).Add(time.Hour), types.TradeEventShort, -200, 0, 0),
	})
}

func fullEngine() window.Engine {
	return window.NewRollingEngine(30, false)
}

func lastValue(rows []types.SeriesRow) float64 {
	return rows[len(rows)-1].Value
}

// sortedFrame orders rows by time the way Normalize does.
func sortedFrame(rows ...types.TradeEvent) ledger.Frame {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	return ledger.NewFrame(rows)
}
