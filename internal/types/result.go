package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Result column names shared by several metrics.
const (
	ColumnResult      = "result"
	ColumnAvgDuration = "avg_duration"
	ColumnHour        = "hour"
	ColumnWeekday     = "weekday"
	ColumnDayName     = "day_name"
	ColumnCount       = "count"
)

// Row is one record of a metric result. Field returns the value stored
// under a declared column name, nil for absent optional columns.
type Row interface {
	Field(column string) any
}

// Table is the column-oriented projection of a metric result used by
// writers and the HTTP API.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// SeriesRow is a single numeric value at an anchor time, optionally
// attributed to an account and symbol. The value column name is declared
// by the metric that produced it.
type SeriesRow struct {
	Time      time.Time               `json:"time"`
	AccountID optional.Option[string] `json:"account_id"`
	Symbol    optional.Option[string] `json:"symbol"`
	Value     float64                 `json:"value"`
}

// Field implements Row.
func (r SeriesRow) Field(column string) any {
	switch column {
	case ColumnTime:
		return r.Time
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return optionValue(r.Symbol)
	default:
		return r.Value
	}
}

// DurationRow is the mean holding time of one trade outcome class.
type DurationRow struct {
	Time        time.Time               `json:"time"`
	AccountID   optional.Option[string] `json:"account_id"`
	Symbol      optional.Option[string] `json:"symbol"`
	Result      TradeOutcome            `json:"result"`
	AvgDuration float64                 `json:"avg_duration"`
}

// Field implements Row.
func (r DurationRow) Field(column string) any {
	switch column {
	case ColumnTime:
		return r.Time
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return optionValue(r.Symbol)
	case ColumnResult:
		return string(r.Result)
	default:
		return r.AvgDuration
	}
}

// HourProfitRow is the profit booked during one hour of the day.
type HourProfitRow struct {
	Time      time.Time               `json:"time"`
	AccountID optional.Option[string] `json:"account_id"`
	Symbol    optional.Option[string] `json:"symbol"`
	Hour      int                     `json:"hour"`
	Profit    float64                 `json:"profit"`
}

// Field implements Row.
func (r HourProfitRow) Field(column string) any {
	switch column {
	case ColumnTime:
		return r.Time
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return optionValue(r.Symbol)
	case ColumnHour:
		return r.Hour
	default:
		return r.Profit
	}
}

// WeekdayProfitRow is the mean profit of trades closed on one weekday.
// Weekday uses Monday=0 … Sunday=6.
type WeekdayProfitRow struct {
	Time      time.Time               `json:"time"`
	AccountID optional.Option[string] `json:"account_id"`
	Symbol    optional.Option[string] `json:"symbol"`
	Weekday   int                     `json:"weekday"`
	DayName   string                  `json:"day_name"`
	Profit    float64                 `json:"profit"`
}

// Field implements Row.
func (r WeekdayProfitRow) Field(column string) any {
	switch column {
	case ColumnTime:
		return r.Time
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return optionValue(r.Symbol)
	case ColumnWeekday:
		return r.Weekday
	case ColumnDayName:
		return r.DayName
	default:
		return r.Profit
	}
}

// SymbolValueRow is a per-symbol value inside one time bucket.
type SymbolValueRow struct {
	Time      time.Time               `json:"time"`
	AccountID optional.Option[string] `json:"account_id"`
	Symbol    string                  `json:"symbol"`
	Value     float64                 `json:"value"`
}

// Field implements Row.
func (r SymbolValueRow) Field(column string) any {
	switch column {
	case ColumnTime:
		return r.Time
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return r.Symbol
	default:
		return r.Value
	}
}

// SymbolCountRow is the number of trades on one symbol.
type SymbolCountRow struct {
	AccountID optional.Option[string] `json:"account_id" yaml:"account_id,omitempty"`
	Symbol    string                  `json:"symbol" yaml:"symbol"`
	Count     int                     `json:"count" yaml:"count"`
}

// Field implements Row.
func (r SymbolCountRow) Field(column string) any {
	switch column {
	case ColumnAccountID:
		return optionValue(r.AccountID)
	case ColumnSymbol:
		return r.Symbol
	default:
		return r.Count
	}
}

func optionValue[T any](o optional.Option[T]) any {
	if o.IsNone() {
		return nil
	}

	return o.Unwrap()
}
