package metrics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
	"github.com/rxtech-lab/argo-analytics/mocks"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// CatalogueTestSuite checks the properties every metric must hold.
type CatalogueTestSuite struct {
	suite.Suite
	catalogue *Catalogue
	frame     ledger.Frame
}

func TestCatalogueSuite(t *testing.T) {
	suite.Run(t, new(CatalogueTestSuite))
}

func (suite *CatalogueTestSuite) SetupTest() {
	suite.catalogue = NewCatalogue(Options{
		Engine: window.NewRollingEngine(7, true),
		Period: types.TimePeriodDay,
		TopN:   3,
	})

	config := mocks.DefaultConfig()
	config.Days = 30
	suite.frame = ledger.NewFrame(mocks.NewLedgerGenerator(42).GenerateMultiAccount([]string{"A", "B", "C"}, config))
}

func (suite *CatalogueTestSuite) TestRegistry() {
	names := suite.catalogue.Names()
	suite.Len(names, 23)
	suite.Contains(names, "balance_absolute")
	suite.Contains(names, "top_symbols")

	_, err := suite.catalogue.Get("nope")
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeMetricNotFound, errors.GetCode(err))
}

func (suite *CatalogueTestSuite) TestEmptyInEmptyOut() {
	for _, name := range suite.catalogue.Names() {
		metric, err := suite.catalogue.Get(name)
		suite.Require().NoError(err)

		grouped, err := metric.Grouped(ledger.Frame{}, DefaultGroupOptions())
		suite.NoError(err, name)
		suite.Empty(grouped.Rows, name)
		suite.NotEmpty(grouped.Columns, name)

		ungrouped, err := metric.Ungrouped(ledger.Frame{})
		suite.NoError(err, name)
		suite.Empty(ungrouped.Rows, name)
		suite.NotEmpty(ungrouped.Columns, name)
		suite.NotContains(ungrouped.Columns, types.ColumnAccountID, name)
	}
}

func (suite *CatalogueTestSuite) TestColumnContractAndFiniteness() {
	for _, name := range suite.catalogue.Names() {
		metric, _ := suite.catalogue.Get(name)

		for _, table := range suite.tables(metric) {
			suite.NotEmpty(table.Rows, name)

			for _, row := range table.Rows {
				suite.Len(row, len(table.Columns), name)

				for _, cell := range row {
					if v, ok := cell.(float64); ok {
						suite.False(math.IsNaN(v) || math.IsInf(v, 0), "%s produced %v", name, v)
						suite.Equal(math.Round(v*100)/100, v, "%s is not rounded", name)
					}
				}
			}
		}
	}
}

func (suite *CatalogueTestSuite) TestDeterminism() {
	for _, name := range suite.catalogue.Names() {
		metric, _ := suite.catalogue.Get(name)
		suite.Equal(suite.tables(metric), suite.tables(metric), name)
	}
}

func (suite *CatalogueTestSuite) TestAccountIsolation() {
	onlyA := suite.frame.Filter(func(e types.TradeEvent) bool { return e.AccountID == "A" })

	for _, name := range suite.catalogue.Names() {
		metric, _ := suite.catalogue.Get(name)

		all, err := metric.Grouped(suite.frame, DefaultGroupOptions())
		suite.Require().NoError(err, name)

		isolated, err := metric.Grouped(onlyA, DefaultGroupOptions())
		suite.Require().NoError(err, name)

		suite.Equal(isolated.Rows, rowsOf(all, "A"), name)
	}
}

func (suite *CatalogueTestSuite) TestAnchorsAscend() {
	for _, name := range suite.catalogue.Names() {
		metric, _ := suite.catalogue.Get(name)
		table, err := metric.Grouped(suite.frame, DefaultGroupOptions())
		suite.Require().NoError(err)

		timeIndex := indexOf(table.Columns, types.ColumnTime)
		if timeIndex < 0 {
			continue
		}

		// strictly ascending per key, where the key is every non-time,
		// non-numeric-value column
		last := map[string]time.Time{}

		for _, row := range table.Rows {
			key := ""

			for i, cell := range row {
				if i == timeIndex {
					continue
				}

				if _, isFloat := cell.(float64); isFloat {
					continue
				}

				if _, isInt := cell.(int); isInt && table.Columns[i] == types.ColumnCount {
					continue
				}

				key += fmt.Sprint(cell) + "|"
			}

			at := row[timeIndex].(time.Time)
			if previous, ok := last[key]; ok {
				suite.True(at.After(previous), "%s: %s not after %s", name, at, previous)
			}

			last[key] = at
		}
	}
}

func (suite *CatalogueTestSuite) TestBalanceLaw() {
	metric, _ := suite.catalogue.Get("balance_absolute")
	table, err := metric.Grouped(suite.frame, DefaultGroupOptions())
	suite.Require().NoError(err)

	balances := ledger.InitialBalances(suite.frame)

	for _, account := range suite.frame.Accounts() {
		expected := balances[account]
		for _, row := range suite.frame.Rows() {
			if row.AccountID == account && row.Type != types.TradeEventInitialBalance {
				expected += row.Net()
			}
		}

		rows := rowsOf(table, account)
		suite.Require().NotEmpty(rows)
		suite.InDelta(expected, rows[len(rows)-1][2].(float64), 0.005, account)
	}
}

func (suite *CatalogueTestSuite) tables(metric Tabular) []types.Table {
	grouped, err := metric.Grouped(suite.frame, DefaultGroupOptions())
	suite.Require().NoError(err)

	bySymbol, err := metric.Grouped(suite.frame, GroupOptions{ByAccount: true, BySymbol: true})
	suite.Require().NoError(err)

	ungrouped, err := metric.Ungrouped(suite.frame)
	suite.Require().NoError(err)

	return []types.Table{grouped, bySymbol, ungrouped}
}

func rowsOf(table types.Table, account string) [][]any {
	index := indexOf(table.Columns, types.ColumnAccountID)
	rows := make([][]any, 0)

	for _, row := range table.Rows {
		if row[index] == account {
			rows = append(rows, row)
		}
	}

	return rows
}

func indexOf(columns []string, column string) int {
	for i, c := range columns {
		if c == column {
			return i
		}
	}

	return -1
}

func BenchmarkCatalogue(b *testing.B) {
	frame := mocks.Generate10K()
	catalogue := NewCatalogue(DefaultOptions())

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for _, name := range catalogue.Names() {
			metric, _ := catalogue.Get(name)
			if _, err := metric.Grouped(frame, DefaultGroupOptions()); err != nil {
				b.Fatal(err)
			}
		}
	}
}
