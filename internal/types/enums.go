package types

import (
	"strconv"
	"strings"
	"time"
)

// TradeEventType is the kind of a ledger row. The integer codes are the
// ledger's on-disk form; String returns the persisted label.
type TradeEventType int

const (
	TradeEventDeposit        TradeEventType = 0
	TradeEventWithdraw       TradeEventType = 1
	TradeEventInitialBalance TradeEventType = 2
	TradeEventLong           TradeEventType = 3
	TradeEventShort          TradeEventType = 4
)

var tradeEventLabels = map[TradeEventType]string{
	TradeEventDeposit:        "DEPOSIT",
	TradeEventWithdraw:       "WITHDRAW",
	TradeEventInitialBalance: "INITIAL_BALANCE",
	TradeEventLong:           "LONG",
	TradeEventShort:          "SHORT",
}

// String returns the persisted label of the event type.
func (t TradeEventType) String() string {
	if label, ok := tradeEventLabels[t]; ok {
		return label
	}

	return "TradeEventType(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the known event codes.
func (t TradeEventType) Valid() bool {
	_, ok := tradeEventLabels[t]

	return ok
}

// IsTrade reports whether the row is a market position (long or short).
func (t TradeEventType) IsTrade() bool {
	return t == TradeEventLong || t == TradeEventShort
}

// Direction returns the position direction of a trade row.
// Cash-flow and seed rows have no direction.
func (t TradeEventType) Direction() (Direction, bool) {
	switch t {
	case TradeEventLong:
		return DirectionLong, true
	case TradeEventShort:
		return DirectionShort, true
	default:
		return "", false
	}
}

// ParseTradeEventType accepts either the integer code or the label.
func ParseTradeEventType(value string) (TradeEventType, bool) {
	value = strings.TrimSpace(value)
	if code, err := strconv.Atoi(value); err == nil {
		t := TradeEventType(code)

		return t, t.Valid()
	}

	for t, label := range tradeEventLabels {
		if strings.EqualFold(label, value) {
			return t, true
		}
	}

	return 0, false
}

// Direction is the side of a trade row.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// AssetType classifies the traded instrument.
type AssetType string

const (
	AssetTypeStock   AssetType = "STOCK"
	AssetTypeCrypto  AssetType = "CRYPTO"
	AssetTypeForex   AssetType = "FOREX"
	AssetTypeIndices AssetType = "INDICES"
	AssetTypeUnknown AssetType = "UNKNOWN"
)

// AllAssetTypes lists every asset type label.
var AllAssetTypes = []any{
	string(AssetTypeStock),
	string(AssetTypeCrypto),
	string(AssetTypeForex),
	string(AssetTypeIndices),
	string(AssetTypeUnknown),
}

// ParseAssetType maps a label to an AssetType, case-insensitively.
// Empty and unrecognised labels map to AssetTypeUnknown.
func ParseAssetType(value string) AssetType {
	switch AssetType(strings.ToUpper(strings.TrimSpace(value))) {
	case AssetTypeStock:
		return AssetTypeStock
	case AssetTypeCrypto:
		return AssetTypeCrypto
	case AssetTypeForex:
		return AssetTypeForex
	case AssetTypeIndices:
		return AssetTypeIndices
	default:
		return AssetTypeUnknown
	}
}

// TimePeriod is the bucket width used by day-aggregated metrics.
type TimePeriod string

const (
	TimePeriodDay   TimePeriod = "1d"
	TimePeriodWeek  TimePeriod = "1w"
	TimePeriodMonth TimePeriod = "1M"
)

// AllTimePeriods lists every time period label.
var AllTimePeriods = []any{
	string(TimePeriodDay),
	string(TimePeriodWeek),
	string(TimePeriodMonth),
}

// Valid reports whether p is a known period.
func (p TimePeriod) Valid() bool {
	switch p {
	case TimePeriodDay, TimePeriodWeek, TimePeriodMonth:
		return true
	default:
		return false
	}
}

// Truncate returns the UTC start of the bucket containing t.
// Weeks start on Monday.
func (p TimePeriod) Truncate(t time.Time) time.Time {
	day := StartOfDay(t)

	switch p {
	case TimePeriodWeek:
		return day.AddDate(0, 0, -MondayIndex(day.Weekday()))
	case TimePeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// TradeOutcome partitions trades into wins and losses.
type TradeOutcome string

const (
	TradeOutcomeWin  TradeOutcome = "win"
	TradeOutcomeLoss TradeOutcome = "loss"
)

// StartOfDay returns UTC midnight of the calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayIndex converts a time.Weekday to Monday=0 … Sunday=6 numbering.
func MondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}
