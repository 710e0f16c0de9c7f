package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Ledger column names.
const (
	ColumnID         = "id"
	ColumnAccountID  = "account_id"
	ColumnSymbol     = "symbol"
	ColumnTime       = "time"
	ColumnType       = "type"
	ColumnProfit     = "profit"
	ColumnCommission = "commission"
	ColumnSwap       = "swap"
	ColumnSize       = "size"
	ColumnPrice      = "price"
	ColumnDuration   = "duration"
	ColumnAssetType  = "asset_type"
)

// LedgerColumns lists every ledger column in canonical order.
var LedgerColumns = []string{
	ColumnAccountID, ColumnSymbol, ColumnTime, ColumnType, ColumnProfit, ColumnCommission,
	ColumnSwap, ColumnSize, ColumnPrice, ColumnDuration, ColumnAssetType,
}

// RequiredLedgerColumns must be present in every raw ledger.
var RequiredLedgerColumns = []string{ColumnAccountID, ColumnTime, ColumnProfit}

// TradeEvent is one normalized ledger row.
type TradeEvent struct {
	// ID is the optional primary key of the row in the source table.
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	AccountID string         `json:"account_id" yaml:"account_id"`
	Symbol    string         `json:"symbol" yaml:"symbol"`
	Time      time.Time      `json:"time" yaml:"time"`
	Type      TradeEventType `json:"type" yaml:"type"`
	// Profit is the P/L contribution. For seed rows it carries the initial balance.
	Profit float64 `json:"profit" yaml:"profit"`
	// Commission is negative when it is a cost.
	Commission float64 `json:"commission" yaml:"commission"`
	Swap       float64 `json:"swap" yaml:"swap"`
	Size       float64 `json:"size" yaml:"size"`
	Price      float64 `json:"price" yaml:"price"`
	// Duration is the holding time in minutes, only set on closed positions.
	Duration  optional.Option[float64] `json:"duration" yaml:"duration"`
	AssetType AssetType                `json:"asset_type" yaml:"asset_type"`
}

// Net is profit + commission + swap.
func (e TradeEvent) Net() float64 {
	return e.Profit + e.Commission + e.Swap
}

// Fees is commission + swap.
func (e TradeEvent) Fees() float64 {
	return e.Commission + e.Swap
}

// IsWin reports whether the row closed in profit.
func (e TradeEvent) IsWin() bool {
	return e.Profit > 0
}

// IsLoss reports whether the row closed at a loss.
func (e TradeEvent) IsLoss() bool {
	return e.Profit < 0
}

// Outcome returns win for profitable rows and loss otherwise.
func (e TradeEvent) Outcome() TradeOutcome {
	if e.IsWin() {
		return TradeOutcomeWin
	}

	return TradeOutcomeLoss
}

// Day returns the UTC calendar day of the event.
func (e TradeEvent) Day() time.Time {
	return StartOfDay(e.Time)
}

// RawTradeEvent is a ledger row as delivered by ingestion, before normalization.
// Nullable numeric columns are optional; the timestamp is unparsed text.
type RawTradeEvent struct {
	ID         string
	AccountID  string
	Symbol     string
	Time       string
	Type       int
	Profit     optional.Option[float64]
	Commission optional.Option[float64]
	Swap       optional.Option[float64]
	Size       float64
	Price      float64
	Duration   optional.Option[float64]
	AssetType  string
}
