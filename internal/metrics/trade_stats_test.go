package metrics

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
	"github.com/stretchr/testify/suite"
)

type TradeStatsTestSuite struct {
	suite.Suite
}

func TestTradeStatsSuite(t *testing.T) {
	suite.Run(t, new(TradeStatsTestSuite))
}

func (suite *TradeStatsTestSuite) TestWinRate() {
	result, err := NewWinRate(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)

	suite.Equal([]string{types.ColumnTime, types.ColumnAccountID, ColumnWinRate}, result.Columns)
	// day 0 holds only the seed entry and emits nothing
	suite.Require().Len(result.Rows, 3)
	suite.Equal(day(1), result.Rows[0].Time)
	suite.Equal(100.0, result.Rows[0].Value)
	suite.Equal(66.67, lastValue(result.Rows))
}

func (suite *TradeStatsTestSuite) TestSkipHeadSuppressesShortLedgers() {
	result, err := NewWinRate(window.NewRollingEngine(30, true)).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Empty(result.Rows)
	suite.Len(result.Columns, 3)
}

func (suite *TradeStatsTestSuite) TestExpectancy() {
	result, err := NewExpectancy(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	// 2/3*75 - 1/3*30
	suite.Equal(40.0, lastValue(result.Rows))

	relative, err := NewRelativeExpectancy(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Equal(ColumnRelativeExpectancy, relative.Columns[2])
	suite.Equal(4.0, lastValue(relative.Rows))
}

func (suite *TradeStatsTestSuite) TestRelativeExpectancyDefaultsBalance() {
	frame := ledger.NewFrame([]types.TradeEvent{
		trade("X", "EURUSD", day(0), types.TradeEventLong, 20, 0, 0),
		trade("X", "EURUSD", day(1), types.TradeEventLong, -10, 0, 0),
	})

	result, err := NewRelativeExpectancy(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	// 0.5*20 - 0.5*10 = 5 on the default 1000 balance
	suite.Equal(0.5, lastValue(result.Rows))
}

func (suite *TradeStatsTestSuite) TestProfitFactor() {
	result, err := NewProfitFactor(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Equal(5.0, lastValue(result.Rows))
}

func (suite *TradeStatsTestSuite) TestProfitFactorDegeneracy() {
	frame := ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 10, 0, 0),
		trade("A", "EURUSD", day(2), types.TradeEventLong, 25, 0, 0),
		trade("A", "EURUSD", day(3), types.TradeEventShort, 40, 0, 0),
	})

	result, err := NewProfitFactor(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Require().NotEmpty(result.Rows)

	for _, row := range result.Rows {
		suite.Equal(0.0, row.Value)
	}
}

func (suite *TradeStatsTestSuite) TestRiskReward() {
	result, err := NewRiskReward(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Equal(2.5, lastValue(result.Rows))

	noLosses := ledger.NewFrame([]types.TradeEvent{
		trade("A", "EURUSD", day(0), types.TradeEventLong, 10, 0, 0),
		trade("A", "EURUSD", day(0).Add(time.Hour), types.TradeEventLong, 20, 0, 0),
	})

	result, err = NewRiskReward(fullEngine()).CalculateGrouped(noLosses, DefaultGroupOptions())
	suite.Require().NoError(err)
	// 15 / 1e-6 rather than infinity
	suite.Equal(15000000.0, lastValue(result.Rows))
}

func (suite *TradeStatsTestSuite) TestSharpeAndSortino() {
	sharpe, err := NewSharpeRatio(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	// daily profits [50, 100, -30]: mean 40, sample stddev sqrt(4300)
	suite.Equal(0.61, lastValue(sharpe.Rows))
	// a single sample collapses to 0
	suite.Equal(0.0, sharpe.Rows[0].Value)

	sortino, err := NewSortinoRatio(fullEngine()).CalculateGrouped(seedOneFrame(), DefaultGroupOptions())
	suite.Require().NoError(err)
	// one negative day is not enough for a downside deviation
	suite.Equal(0.0, lastValue(sortino.Rows))
}

func (suite *TradeStatsTestSuite) TestSortinoWithDownside() {
	frame := ledger.NewFrame([]types.TradeEvent{
		trade("A", "EURUSD", day(0), types.TradeEventLong, 100, 0, 0),
		trade("A", "EURUSD", day(1), types.TradeEventLong, -10, 0, 0),
		trade("A", "EURUSD", day(2), types.TradeEventLong, -30, 0, 0),
	})

	result, err := NewSortinoRatio(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	// mean 20, downside stddev of [-10, -30] is sqrt(200)
	suite.Equal(1.41, lastValue(result.Rows))
}

func (suite *TradeStatsTestSuite) TestTradesPerDayAndHoldTime() {
	frame := ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		withDuration(trade("A", "EURUSD", day(1), types.TradeEventLong, 10, 0, 0), 30),
		trade("A", "EURUSD", day(1).Add(time.Hour), types.TradeEventLong, -5, 0, 0),
		withDuration(trade("A", "EURUSD", day(2), types.TradeEventLong, 15, 0, 0), 90),
	})

	count, err := NewTradesPerDay(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Require().Len(count.Rows, 2)
	suite.Equal(2.0, count.Rows[0].Value)
	suite.Equal(3.0, count.Rows[1].Value)

	hold, err := NewAvgHoldTime(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Require().Len(hold.Rows, 2)
	suite.Equal(30.0, hold.Rows[0].Value)
	suite.Equal(60.0, hold.Rows[1].Value)
}

func (suite *TradeStatsTestSuite) TestUngroupedReducers() {
	frame := sortedFrame(
		seed("A", day(0), 1000),
		seed("B", day(0), 1000),
		trade("A", "EURUSD", day(1), types.TradeEventLong, 10, 0, 0),
		trade("B", "EURUSD", day(1), types.TradeEventLong, -10, 0, 0),
		trade("B", "EURUSD", day(1).Add(time.Hour), types.TradeEventLong, 10, 0, 0),
	)

	winRate, err := NewWinRate(fullEngine()).CalculateUngrouped(frame)
	suite.Require().NoError(err)
	suite.Equal([]string{types.ColumnTime, ColumnWinRate}, winRate.Columns)
	suite.Require().Len(winRate.Rows, 1)
	// mean of 100 and 50
	suite.Equal(75.0, winRate.Rows[0].Value)

	count, err := NewTradesPerDay(fullEngine()).CalculateUngrouped(frame)
	suite.Require().NoError(err)
	suite.Equal(3.0, count.Rows[0].Value)
}

func (suite *TradeStatsTestSuite) TestGroupBySymbol() {
	opts := GroupOptions{ByAccount: true, BySymbol: true}

	result, err := NewTradesPerDay(fullEngine()).CalculateGrouped(seedOneFrame(), opts)
	suite.Require().NoError(err)
	suite.Equal([]string{types.ColumnTime, types.ColumnAccountID, types.ColumnSymbol, ColumnTradeCount}, result.Columns)

	perSymbol := map[string]float64{}
	for _, row := range result.Rows {
		perSymbol[row.Symbol.Unwrap()] = row.Value
	}

	suite.Equal(2.0, perSymbol["EURUSD"])
	suite.Equal(1.0, perSymbol["GBPUSD"])
}

func (suite *TradeStatsTestSuite) TestCashFlowsAreNotTrades() {
	frame := ledger.NewFrame([]types.TradeEvent{
		seed("A", day(0), 1000),
		{AccountID: "A", Time: day(1), Type: types.TradeEventDeposit, Profit: 500},
		{AccountID: "A", Time: day(2), Type: types.TradeEventWithdraw, Profit: -200},
	})

	result, err := NewWinRate(fullEngine()).CalculateGrouped(frame, DefaultGroupOptions())
	suite.Require().NoError(err)
	suite.Empty(result.Rows)
}
