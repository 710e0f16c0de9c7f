package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
)

// BalanceKey identifies a cached balance curve. Every component is optional;
// an absent component means the curve was computed without that filter.
type BalanceKey struct {
	AccountID optional.Option[string]    `json:"account_id"`
	Symbol    optional.Option[string]    `json:"symbol"`
	Direction optional.Option[Direction] `json:"direction"`
	AssetType optional.Option[AssetType] `json:"asset_type"`
	Hour      optional.Option[int]       `json:"hour"`
	Weekday   optional.Option[int]       `json:"weekday"`
}

// String renders the key as a stable identifier, used to serialize writers.
func (k BalanceKey) String() string {
	parts := []string{
		keyPart(k.AccountID, func(v string) string { return v }),
		keyPart(k.Symbol, func(v string) string { return v }),
		keyPart(k.Direction, func(v Direction) string { return string(v) }),
		keyPart(k.AssetType, func(v AssetType) string { return string(v) }),
		keyPart(k.Hour, strconv.Itoa),
		keyPart(k.Weekday, strconv.Itoa),
	}

	return strings.Join(parts, "|")
}

// Matches reports whether a trade row passes every filter in the key.
// Seed rows are matched on the account only.
func (k BalanceKey) Matches(e TradeEvent) bool {
	if k.AccountID.IsSome() && k.AccountID.Unwrap() != e.AccountID {
		return false
	}

	if !e.Type.IsTrade() {
		return true
	}

	if k.Symbol.IsSome() && k.Symbol.Unwrap() != e.Symbol {
		return false
	}

	if k.Direction.IsSome() {
		direction, _ := e.Type.Direction()
		if direction != k.Direction.Unwrap() {
			return false
		}
	}

	if k.AssetType.IsSome() && k.AssetType.Unwrap() != e.AssetType {
		return false
	}

	if k.Hour.IsSome() && k.Hour.Unwrap() != e.Time.UTC().Hour() {
		return false
	}

	if k.Weekday.IsSome() && k.Weekday.Unwrap() != MondayIndex(e.Time.UTC().Weekday()) {
		return false
	}

	return true
}

// CachedBalance is one persisted balance-over-time row.
type CachedBalance struct {
	ID int64 `json:"id"`
	BalanceKey
	// ClosedAt is the anchor day the balance refers to.
	ClosedAt          time.Time `json:"closed_at"`
	InitialBalance    float64   `json:"initial_balance"`
	AbsoluteBalance   float64   `json:"absolute_balance"`
	InitialBalancePct float64   `json:"initial_balance_pct"`
	RelativeBalance   float64   `json:"relative_balance"`
	CachedAt          time.Time `json:"cached_at"`
}

func keyPart[T any](o optional.Option[T], format func(T) string) string {
	if o.IsNone() {
		return "*"
	}

	return format(o.Unwrap())
}
