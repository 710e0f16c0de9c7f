package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type ResultRowTestSuite struct {
	suite.Suite
}

func TestResultRowSuite(t *testing.T) {
	suite.Run(t, new(ResultRowTestSuite))
}

func (suite *ResultRowTestSuite) TestSeriesRowField() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	row := SeriesRow{Time: at, AccountID: optional.Some("A"), Value: 12.5}

	suite.Equal(at, row.Field(ColumnTime))
	suite.Equal("A", row.Field(ColumnAccountID))
	suite.Nil(row.Field(ColumnSymbol))
	suite.Equal(12.5, row.Field("win_rate"))
}

func (suite *ResultRowTestSuite) TestWeekdayProfitRowField() {
	row := WeekdayProfitRow{Weekday: 2, DayName: "Wednesday", Profit: 3}

	suite.Equal(2, row.Field(ColumnWeekday))
	suite.Equal("Wednesday", row.Field(ColumnDayName))
	suite.Equal(3.0, row.Field("profit"))
	suite.Nil(row.Field(ColumnAccountID))
}

func (suite *ResultRowTestSuite) TestSymbolCountRowField() {
	row := SymbolCountRow{Symbol: "ETH", Count: 4}

	suite.Equal("ETH", row.Field(ColumnSymbol))
	suite.Equal(4, row.Field(ColumnCount))
}
