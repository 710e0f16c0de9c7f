package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/shopspring/decimal"
)

// Metric reduces a normalized ledger into a result table.
//
// CalculateGrouped partitions the ledger by account and, optionally, by
// symbol. CalculateUngrouped reduces the grouped result across accounts
// into a single portfolio-wide result.
//
// Implementations never fail on empty input or on missing optional input
// columns; both yield an empty result with the declared columns.
type Metric[R types.Row] interface {
	Name() string
	CalculateGrouped(frame ledger.Frame, opts GroupOptions) (Result[R], error)
	CalculateUngrouped(frame ledger.Frame) (Result[R], error)
}

// GroupOptions selects the grouping axes of a grouped calculation.
type GroupOptions struct {
	ByAccount bool `json:"by_account" yaml:"by_account"`
	BySymbol  bool `json:"by_symbol" yaml:"by_symbol"`
}

// DefaultGroupOptions groups by account only.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{ByAccount: true}
}

// Result is the output of a metric.
type Result[R types.Row] struct {
	Name    string
	Columns []string
	Rows    []R
}

func (r Result[R]) IsEmpty() bool {
	return len(r.Rows) == 0
}

// Table projects the rows onto the declared columns.
func (r Result[R]) Table() types.Table {
	table := types.Table{
		Name:    r.Name,
		Columns: r.Columns,
		Rows:    make([][]any, 0, len(r.Rows)),
	}

	for _, row := range r.Rows {
		cells := make([]any, len(r.Columns))
		for i, column := range r.Columns {
			cells[i] = row.Field(column)
		}

		table.Rows = append(table.Rows, cells)
	}

	return table
}

// seriesColumns returns time, the enabled grouping columns, then the value columns.
func seriesColumns(opts GroupOptions, values ...string) []string {
	columns := []string{types.ColumnTime}
	if opts.ByAccount {
		columns = append(columns, types.ColumnAccountID)
	}

	if opts.BySymbol {
		columns = append(columns, types.ColumnSymbol)
	}

	return append(columns, values...)
}

func ungroupedOptions() GroupOptions {
	return GroupOptions{}
}

// round converts a value for emission: two decimals, NaN and Inf collapse to 0.
func round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// reducer folds the per-account values sharing one anchor.
type reducer func(values []float64) float64

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return sum(values) / float64(len(values))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return total
}

// sampleStddev is the n-1 standard deviation; 0 for fewer than two values.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	acc := 0.0

	for _, v := range values {
		acc += (v - m) * (v - m)
	}

	return math.Sqrt(acc / float64(len(values)-1))
}

// bucket accumulates values under a time key, keeping keys sorted on read.
type bucket[K comparable] struct {
	keys   []K
	values map[K][]float64
}

func newBucket[K comparable]() *bucket[K] {
	return &bucket[K]{values: make(map[K][]float64)}
}

func (b *bucket[K]) add(key K, value float64) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}

	b.values[key] = append(b.values[key], value)
}

func (b *bucket[K]) sorted(less func(a, b K) bool) []K {
	keys := append([]K(nil), b.keys...)
	sort.SliceStable(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	return keys
}

// timeKey is a comparable unix-nanosecond key for bucketing by instant.
type timeKey int64

func keyOf(t time.Time) timeKey {
	return timeKey(t.UnixNano())
}

func (k timeKey) time() time.Time {
	return time.Unix(0, int64(k)).UTC()
}

func timeKeyLess(a, b timeKey) bool {
	return a < b
}
