package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ReportTestSuite struct {
	suite.Suite
	tempDir string
}

func (s *ReportTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "report_test_*")
	s.Require().NoError(err)
	s.tempDir = tempDir
}

func (s *ReportTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

func TestReportTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (s *ReportTestSuite) hourTable() types.Table {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	return types.Table{
		Name:    "profit_by_hour",
		Columns: []string{types.ColumnTime, types.ColumnAccountID, types.ColumnHour, "profit"},
		Rows: [][]any{
			{day, "acc-1", 9, 120.5},
			{day, nil, 10, -40.0},
		},
	}
}

// query runs q with every %s replaced by read_parquet of path.
func (s *ReportTestSuite) query(q string, path string) *sql.Row {
	db, err := sql.Open("duckdb", "")
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })

	return db.QueryRow(strings.ReplaceAll(q, "%s", fmt.Sprintf("read_parquet('%s')", path)))
}

// ============================================================================
// TableWriter
// ============================================================================

func (s *ReportTestSuite) TestTableWriter_Write_NotInitialized() {
	w := NewTableWriter()

	err := w.Write(s.hourTable(), filepath.Join(s.tempDir, "out.parquet"), FormatParquet)
	s.Error(err)
	s.Contains(err.Error(), "writer not initialized")
	s.True(errors.HasCode(err, errors.ErrCodeReportWriteFailed))
}

func (s *ReportTestSuite) TestTableWriter_Close_NotInitialized() {
	s.NoError(NewTableWriter().Close())
}

func (s *ReportTestSuite) TestTableWriter_UnsupportedFormat() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	err := w.Write(s.hourTable(), filepath.Join(s.tempDir, "out.xlsx"), Format("xlsx"))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *ReportTestSuite) TestTableWriter_Parquet() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	path := filepath.Join(s.tempDir, "nested", "profit_by_hour.parquet")
	s.Require().NoError(w.Write(s.hourTable(), path, FormatParquet))
	s.FileExists(path)

	var (
		count   int
		total   float64
		nulls   int
		maxHour int64
	)
	err := s.query(`SELECT count(*), sum(profit), count(*) - count(account_id), max(hour) FROM %s`, path).
		Scan(&count, &total, &nulls, &maxHour)
	s.Require().NoError(err)
	s.Equal(2, count)
	s.InDelta(80.5, total, 1e-9)
	s.Equal(1, nulls)
	s.Equal(int64(10), maxHour)
}

func (s *ReportTestSuite) TestTableWriter_CSVHeader() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	path := filepath.Join(s.tempDir, "profit_by_hour.csv")
	s.Require().NoError(w.Write(s.hourTable(), path, FormatCSV))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	s.Len(lines, 3)
	s.Equal("time,account_id,hour,profit", lines[0])
}

func (s *ReportTestSuite) TestTableWriter_ReusedAcrossTables() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	first := filepath.Join(s.tempDir, "a.parquet")
	s.Require().NoError(w.Write(s.hourTable(), first, FormatParquet))

	counts := types.Table{
		Name:    "top_symbols",
		Columns: []string{types.ColumnSymbol, types.ColumnCount},
		Rows:    [][]any{{"EURUSD", 4}, {"BTCUSD", 2}, {"AAPL", 1}},
	}
	second := filepath.Join(s.tempDir, "b.parquet")
	s.Require().NoError(w.Write(counts, second, FormatParquet))

	var total int64
	s.Require().NoError(s.query(`SELECT CAST(sum("count") AS BIGINT) FROM %s`, second).Scan(&total))
	s.Equal(int64(7), total)
}

func (s *ReportTestSuite) TestTableWriter_EmptyTable() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	table := types.Table{Name: "empty", Columns: []string{types.ColumnTime, "value"}}
	path := filepath.Join(s.tempDir, "empty.parquet")
	s.Require().NoError(w.Write(table, path, FormatParquet))

	var count int
	s.Require().NoError(s.query(`SELECT count(*) FROM %s`, path).Scan(&count))
	s.Zero(count)
}

func (s *ReportTestSuite) TestTableWriter_LargeTableBatches() {
	w := NewTableWriter()
	s.Require().NoError(w.Initialize())
	defer w.Close()

	table := types.Table{Name: "balance", Columns: []string{types.ColumnTime, "value"}}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 1234 {
		table.Rows = append(table.Rows, []any{start.AddDate(0, 0, i), float64(i)})
	}

	path := filepath.Join(s.tempDir, "balance.parquet")
	s.Require().NoError(w.Write(table, path, FormatParquet))

	var count int
	s.Require().NoError(s.query(`SELECT count(*) FROM %s`, path).Scan(&count))
	s.Equal(1234, count)
}

// ============================================================================
// Run
// ============================================================================

func (s *ReportTestSuite) TestRun_WritesFolder() {
	run, err := NewRun(s.tempDir, FormatParquet)
	s.Require().NoError(err)
	s.NotEmpty(run.ID)
	s.Equal(filepath.Join(s.tempDir, run.ID), run.Dir)

	tables, err := run.WriteTables([]types.Table{s.hourTable()})
	s.Require().NoError(err)
	s.Require().Len(tables, 1)
	s.FileExists(filepath.Join(run.Dir, "profit_by_hour.parquet"))

	generated := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	summaries := []types.PerformanceSummary{{
		ID:          "summary-1",
		GeneratedAt: generated,
		AccountID:   "acc-1",
		TradeResult: types.TradeResult{NumberOfTrades: 3, NumberOfWinningTrades: 2},
		TopSymbols:  []types.SymbolCountRow{{AccountID: optional.Some("acc-1"), Symbol: "EURUSD", Count: 3}},
	}}
	summaryPath, err := run.WriteSummaries(summaries)
	s.Require().NoError(err)

	s.Require().NoError(run.Finish(generated, tables, summaryPath))

	read, err := types.ReadPerformanceSummary(summaryPath)
	s.Require().NoError(err)
	s.Require().Len(read, 1)
	s.Equal(3, read[0].TradeResult.NumberOfTrades)

	data, err := os.ReadFile(filepath.Join(run.Dir, manifestFile))
	s.Require().NoError(err)

	var manifest Manifest
	s.Require().NoError(yaml.Unmarshal(data, &manifest))
	s.Equal(run.ID, manifest.RunID)
	s.Equal(FormatParquet, manifest.Format)
	s.Equal([]string{"profit_by_hour.parquet"}, manifest.Tables)
	s.Equal(summaryFile, manifest.Summary)
	s.True(generated.Equal(manifest.GeneratedAt))
}

func (s *ReportTestSuite) TestRun_DistinctIDs() {
	first, err := NewRun(s.tempDir, FormatCSV)
	s.Require().NoError(err)
	defer first.Finish(time.Now(), nil, "")

	second, err := NewRun(s.tempDir, FormatCSV)
	s.Require().NoError(err)
	defer second.Finish(time.Now(), nil, "")

	s.NotEqual(first.ID, second.ID)
}

func (s *ReportTestSuite) TestNewRun_InvalidFormat() {
	_, err := NewRun(s.tempDir, Format("json"))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *ReportTestSuite) TestWriteSummaryYAML_BadPath() {
	err := WriteSummaryYAML(filepath.Join(s.tempDir, "missing", "dir", "summary.yaml"), nil)
	s.True(errors.HasCode(err, errors.ErrCodeReportWriteFailed))
}

func (s *ReportTestSuite) TestFormatExtension() {
	s.Equal(".parquet", FormatParquet.Extension())
	s.Equal(".csv", FormatCSV.Extension())
}
