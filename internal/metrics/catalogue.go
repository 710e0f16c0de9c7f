package metrics

import (
	"sort"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Tabular is a metric with its row type erased, used by the registry and
// by every outer surface.
type Tabular interface {
	Name() string
	Grouped(frame ledger.Frame, opts GroupOptions) (types.Table, error)
	Ungrouped(frame ledger.Frame) (types.Table, error)
}

type tabular[R types.Row] struct {
	metric Metric[R]
}

// AsTabular wraps a typed metric.
func AsTabular[R types.Row](metric Metric[R]) Tabular {
	return tabular[R]{metric: metric}
}

func (t tabular[R]) Name() string {
	return t.metric.Name()
}

func (t tabular[R]) Grouped(frame ledger.Frame, opts GroupOptions) (types.Table, error) {
	result, err := t.metric.CalculateGrouped(frame, opts)
	if err != nil {
		return types.Table{}, err
	}

	return result.Table(), nil
}

func (t tabular[R]) Ungrouped(frame ledger.Frame) (types.Table, error) {
	result, err := t.metric.CalculateUngrouped(frame)
	if err != nil {
		return types.Table{}, err
	}

	return result.Table(), nil
}

// Options configures the metrics built by NewCatalogue.
type Options struct {
	Engine window.Engine
	Period types.TimePeriod
	TopN   int
}

// DefaultOptions uses a 30-day window with head skipping, daily buckets
// and the top 5 symbols.
func DefaultOptions() Options {
	return Options{
		Engine: window.NewRollingEngine(window.DefaultDays, true),
		Period: types.TimePeriodDay,
		TopN:   DefaultTopSymbols,
	}
}

// Catalogue is a name-indexed registry of metrics.
type Catalogue struct {
	metrics map[string]Tabular
}

// NewCatalogue registers every built-in metric.
func NewCatalogue(opts Options) *Catalogue {
	if opts.Engine == nil {
		opts.Engine = window.NewRollingEngine(window.DefaultDays, true)
	}

	if !opts.Period.Valid() {
		opts.Period = types.TimePeriodDay
	}

	c := &Catalogue{metrics: make(map[string]Tabular)}

	c.Register(AsTabular[types.SeriesRow](NewBalanceAbsolute()))
	c.Register(AsTabular[types.SeriesRow](NewBalanceRelative()))
	c.Register(AsTabular[types.SeriesRow](NewMaxDrawdown()))
	c.Register(AsTabular[types.SeriesRow](NewExpectancy(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewRelativeExpectancy(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewProfitFactor(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewRiskReward(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewSharpeRatio(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewSortinoRatio(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewWinRate(opts.Engine)))
	c.Register(AsTabular[types.DurationRow](NewAvgTradeDuration(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewAvgHoldTime(opts.Engine)))
	c.Register(AsTabular[types.SeriesRow](NewTradesPerDay(opts.Engine)))
	c.Register(AsTabular[types.HourProfitRow](NewProfitByHour(opts.Engine)))
	c.Register(AsTabular[types.WeekdayProfitRow](NewProfitByWeekday(opts.Engine)))
	c.Register(AsTabular[types.SymbolValueRow](NewProfitPerSymbol(opts.Period)))
	c.Register(AsTabular[types.SymbolValueRow](NewRelativeProfitPerSymbol(opts.Period)))
	c.Register(AsTabular[types.SeriesRow](NewCommission(opts.Period)))
	c.Register(AsTabular[types.SeriesRow](NewSwap(opts.Period)))
	c.Register(AsTabular[types.SeriesRow](NewNetProfitAfterFees(opts.Period)))
	c.Register(AsTabular[types.SeriesRow](NewFeesPctOfProfit(opts.Period)))
	c.Register(AsTabular[types.SymbolValueRow](NewFeesPerSymbol(opts.Period)))
	c.Register(AsTabular[types.SymbolCountRow](NewTopSymbols(opts.TopN)))

	return c
}

// Register adds or replaces a metric under its name.
func (c *Catalogue) Register(metric Tabular) {
	c.metrics[metric.Name()] = metric
}

// Get returns the metric registered under name.
func (c *Catalogue) Get(name string) (Tabular, error) {
	metric, ok := c.metrics[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMetricNotFound, "metric %q not found", name)
	}

	return metric, nil
}

// Names returns every registered metric name, sorted.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.metrics))
	for name := range c.metrics {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
