package mocks

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// LedgerGenerator generates realistic trade ledgers for testing and benchmarking.
type LedgerGenerator struct {
	rng *rand.Rand
}

// NewLedgerGenerator creates a new LedgerGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewLedgerGenerator(seed int64) *LedgerGenerator {
	return &LedgerGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a ledger is generated.
type GeneratorConfig struct {
	// Accounts receive one seed entry each, then independent trades
	Accounts []string
	// Symbols traded by every account
	Symbols []string
	// StartTime is the time of the seed entries
	StartTime time.Time
	// Days is the number of calendar days with trading activity after the seed day
	Days int
	// TradesPerDay is the average number of trades per account per day
	TradesPerDay int
	// InitialBalance is the seed amount of each account
	InitialBalance float64
	// WinProbability is the chance of a trade closing in profit
	WinProbability float64
	// ProfitScale is the average absolute profit of a trade
	ProfitScale float64
	// Commission is the fee charged per trade, booked as a negative number
	Commission float64
	AssetType  types.AssetType
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Accounts:       []string{"ACC-1"},
		Symbols:        []string{"EURUSD", "GBPUSD", "USDJPY"},
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:           60,
		TradesPerDay:   4,
		InitialBalance: 10000,
		WinProbability: 0.55,
		ProfitScale:    50,
		Commission:     1.5,
		AssetType:      types.AssetTypeForex,
	}
}

// Generate creates a time-ordered ledger based on the configuration.
func (g *LedgerGenerator) Generate(config GeneratorConfig) []types.TradeEvent {
	events := make([]types.TradeEvent, 0)
	id := 0

	nextID := func() string {
		id++

		return strconv.Itoa(id)
	}

	for _, account := range config.Accounts {
		events = append(events, types.TradeEvent{
			ID:        nextID(),
			AccountID: account,
			Time:      config.StartTime,
			Type:      types.TradeEventInitialBalance,
			Profit:    config.InitialBalance,
			AssetType: types.AssetTypeUnknown,
		})

		for day := 1; day <= config.Days; day++ {
			dayStart := config.StartTime.AddDate(0, 0, day)
			count := 0

			if config.TradesPerDay > 0 {
				count = g.rng.Intn(2*config.TradesPerDay + 1)
			}

			for i := 0; i < count; i++ {
				events = append(events, g.trade(config, account, dayStart, nextID()))
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	return events
}

func (g *LedgerGenerator) trade(config GeneratorConfig, account string, dayStart time.Time, id string) types.TradeEvent {
	eventType := types.TradeEventLong
	if g.rng.Intn(2) == 1 {
		eventType = types.TradeEventShort
	}

	profit := g.rng.ExpFloat64() * config.ProfitScale
	if g.rng.Float64() >= config.WinProbability {
		profit = -profit
	}

	swap := 0.0
	if g.rng.Intn(4) == 0 {
		swap = -roundToDecimals(g.rng.Float64()*2, 2)
	}

	symbol := ""
	if len(config.Symbols) > 0 {
		symbol = config.Symbols[g.rng.Intn(len(config.Symbols))]
	}

	return types.TradeEvent{
		ID:         id,
		AccountID:  account,
		Symbol:     symbol,
		Time:       dayStart.Add(time.Duration(g.rng.Intn(24*60)) * time.Minute),
		Type:       eventType,
		Profit:     roundToDecimals(profit, 2),
		Commission: -config.Commission,
		Swap:       swap,
		Size:       roundToDecimals(0.1+g.rng.Float64()*2, 2),
		Price:      roundToDecimals(1+g.rng.Float64(), 4),
		Duration:   optional.Some(float64(1 + g.rng.Intn(600))),
		AssetType:  config.AssetType,
	}
}

// GenerateFrame wraps Generate in a normalized frame.
func (g *LedgerGenerator) GenerateFrame(config GeneratorConfig) ledger.Frame {
	return ledger.NewFrame(g.Generate(config))
}

// GenerateRaw renders the generated ledger as raw ingestion rows in input
// order, with RFC3339 timestamps.
func (g *LedgerGenerator) GenerateRaw(config GeneratorConfig) ledger.Raw {
	events := g.Generate(config)
	raw := ledger.Raw{Rows: make([]types.RawTradeEvent, 0, len(events))}

	for _, e := range events {
		raw.Rows = append(raw.Rows, types.RawTradeEvent{
			ID:         e.ID,
			AccountID:  e.AccountID,
			Symbol:     e.Symbol,
			Time:       e.Time.Format(time.RFC3339Nano),
			Type:       int(e.Type),
			Profit:     optional.Some(e.Profit),
			Commission: optional.Some(e.Commission),
			Swap:       optional.Some(e.Swap),
			Size:       e.Size,
			Price:      e.Price,
			Duration:   e.Duration,
			AssetType:  string(e.AssetType),
		})
	}

	return raw
}

// GenerateMultiAccount generates one ledger holding the given accounts,
// each seeded with a slightly different initial balance.
func (g *LedgerGenerator) GenerateMultiAccount(accounts []string, baseConfig GeneratorConfig) []types.TradeEvent {
	var all []types.TradeEvent

	for _, account := range accounts {
		config := baseConfig
		config.Accounts = []string{account}
		config.InitialBalance = roundToDecimals(baseConfig.InitialBalance*(0.8+g.rng.Float64()*0.4), 2)

		all = append(all, g.Generate(config)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time.Before(all[j].Time)
	})

	for i := range all {
		all[i].ID = strconv.Itoa(i + 1)
	}

	return all
}

// Generate10K is a convenience function to generate roughly 10,000 trades
// across three accounts with default settings for benchmarking.
func Generate10K() ledger.Frame {
	gen := NewLedgerGenerator(42)
	config := DefaultConfig()
	config.Days = 420
	config.TradesPerDay = 8

	return ledger.NewFrame(gen.GenerateMultiAccount([]string{"ACC-1", "ACC-2", "ACC-3"}, config))
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
