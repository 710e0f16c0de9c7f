package ledger

import (
	"slices"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Frame is a normalized, time-ordered ledger. A Frame is immutable: every
// method returns either a view over the same rows or a fresh copy.
type Frame struct {
	rows []types.TradeEvent
	// columns is the set of ledger columns present in the source.
	// A nil set means every canonical column is present.
	columns map[string]struct{}
	// windowed is set when the rows were read through a time-bounded filter.
	windowed bool
}

// Group is the slice of a frame belonging to one grouping key.
type Group struct {
	AccountID optional.Option[string]
	Symbol    optional.Option[string]
	Frame     Frame
}

// NewFrame wraps already-normalized rows. When columns is empty every
// canonical ledger column is considered present.
func NewFrame(rows []types.TradeEvent, columns ...string) Frame {
	var set map[string]struct{}
	if len(columns) > 0 {
		set = make(map[string]struct{}, len(columns))
		for _, column := range columns {
			set[column] = struct{}{}
		}
	}

	return Frame{rows: rows, columns: set}
}

// Rows returns the underlying rows. Callers must not modify them.
func (f Frame) Rows() []types.TradeEvent {
	return f.rows
}

func (f Frame) Len() int {
	return len(f.rows)
}

func (f Frame) IsEmpty() bool {
	return len(f.rows) == 0
}

// Windowed reports whether the frame holds only the part of the ledger
// inside a start or end bound.
func (f Frame) Windowed() bool {
	return f.windowed
}

// At returns the i-th row.
func (f Frame) At(i int) types.TradeEvent {
	return f.rows[i]
}

// Has reports whether the source delivered the given column.
func (f Frame) Has(column string) bool {
	if f.columns == nil {
		return true
	}

	_, ok := f.columns[column]

	return ok
}

// HasAll reports whether every given column is present.
func (f Frame) HasAll(columns ...string) bool {
	for _, column := range columns {
		if !f.Has(column) {
			return false
		}
	}

	return true
}

// Columns returns the present ledger columns in canonical order.
func (f Frame) Columns() []string {
	columns := make([]string, 0, len(types.LedgerColumns))
	for _, column := range types.LedgerColumns {
		if f.Has(column) {
			columns = append(columns, column)
		}
	}

	return columns
}

// Slice returns a view over rows [i, j).
func (f Frame) Slice(i, j int) Frame {
	return Frame{rows: f.rows[i:j:j], columns: f.columns, windowed: f.windowed}
}

// Filter returns a new frame holding the rows for which keep returns true,
// in their original order.
func (f Frame) Filter(keep func(types.TradeEvent) bool) Frame {
	rows := make([]types.TradeEvent, 0, len(f.rows))
	for _, row := range f.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	return Frame{rows: rows, columns: f.columns, windowed: f.windowed}
}

// Trades returns only long and short rows.
func (f Frame) Trades() Frame {
	return f.Filter(func(e types.TradeEvent) bool { return e.Type.IsTrade() })
}

// Accounts returns the distinct account ids, sorted.
func (f Frame) Accounts() []string {
	seen := make(map[string]struct{})
	accounts := make([]string, 0)

	for _, row := range f.rows {
		if _, ok := seen[row.AccountID]; ok {
			continue
		}

		seen[row.AccountID] = struct{}{}
		accounts = append(accounts, row.AccountID)
	}

	sort.Strings(accounts)

	return accounts
}

// Symbols returns the distinct non-empty symbols, sorted.
func (f Frame) Symbols() []string {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)

	for _, row := range f.rows {
		if row.Symbol == "" {
			continue
		}

		if _, ok := seen[row.Symbol]; ok {
			continue
		}

		seen[row.Symbol] = struct{}{}
		symbols = append(symbols, row.Symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// GroupBy partitions the frame by account and, optionally, by symbol.
// Groups are ordered by account then symbol. With neither axis set the
// whole frame is returned as a single group.
func (f Frame) GroupBy(byAccount, bySymbol bool) []Group {
	if !byAccount && !bySymbol {
		return []Group{{Frame: f}}
	}

	type groupKey struct {
		account string
		symbol  string
	}

	index := make(map[groupKey][]types.TradeEvent)
	keys := make([]groupKey, 0)

	for _, row := range f.rows {
		var key groupKey
		if byAccount {
			key.account = row.AccountID
		}

		if bySymbol {
			key.symbol = row.Symbol
		}

		if _, ok := index[key]; !ok {
			keys = append(keys, key)
		}

		index[key] = append(index[key], row)
	}

	slices.SortFunc(keys, func(a, b groupKey) int {
		if a.account != b.account {
			if a.account < b.account {
				return -1
			}

			return 1
		}

		if a.symbol < b.symbol {
			return -1
		}

		if a.symbol > b.symbol {
			return 1
		}

		return 0
	})

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		group := Group{Frame: Frame{rows: index[key], columns: f.columns, windowed: f.windowed}}
		if byAccount {
			group.AccountID = optional.Some(key.account)
		}

		if bySymbol {
			group.Symbol = optional.Some(key.symbol)
		}

		groups = append(groups, group)
	}

	return groups
}

// Span returns the UTC calendar days of the first and last rows.
func (f Frame) Span() (first time.Time, last time.Time, ok bool) {
	if len(f.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}

	return f.rows[0].Day(), f.rows[len(f.rows)-1].Day(), true
}

// Days returns every UTC calendar day from the first to the last row, inclusive.
func (f Frame) Days() []time.Time {
	first, last, ok := f.Span()
	if !ok {
		return nil
	}

	days := make([]time.Time, 0, int(last.Sub(first).Hours()/24)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	return days
}
