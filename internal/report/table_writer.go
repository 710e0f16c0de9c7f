package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Format is the on-disk format of an exported table.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) Valid() bool {
	return f == FormatParquet || f == FormatCSV
}

const (
	exportTable     = "metric_result"
	insertBatchSize = 500
)

// TableWriter exports metric tables through an in-memory DuckDB.
type TableWriter struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
	mu sync.Mutex
}

func NewTableWriter() *TableWriter {
	return &TableWriter{
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Initialize opens the DuckDB connection.
func (w *TableWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to open DuckDB connection", err)
	}

	w.db = db

	return nil
}

// Write exports table to path. Columns keep the table's order.
func (w *TableWriter) Write(table types.Table, path string, format Format) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeReportWriteFailed, "writer not initialized")
	}

	if !format.Valid() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported report format %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create report directory", err)
	}

	if _, err := w.db.Exec(`DROP TABLE IF EXISTS ` + exportTable); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to reset export table", err)
	}

	definitions := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		definitions[i] = fmt.Sprintf("%s %s", quoteIdent(column), columnType(column))
	}

	// Squirrel has no CREATE TABLE support
	if _, err := w.db.Exec(fmt.Sprintf(`CREATE TABLE %s (%s)`, exportTable, strings.Join(definitions, ", "))); err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create export table for %s", table.Name)
	}

	if err := w.insert(table); err != nil {
		return err
	}

	return w.export(path, format)
}

func (w *TableWriter) insert(table types.Table) error {
	columns := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		columns[i] = quoteIdent(column)
	}

	for start := 0; start < len(table.Rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(table.Rows))

		builder := w.sq.Insert(exportTable).Columns(columns...)
		for _, row := range table.Rows[start:end] {
			builder = builder.Values(cellValues(row)...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to build insert", err)
		}

		if _, err := w.db.Exec(query, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to insert rows of %s", table.Name)
		}
	}

	return nil
}

func (w *TableWriter) export(path string, format Format) error {
	options := "FORMAT PARQUET"
	if format == FormatCSV {
		options = "FORMAT CSV, HEADER"
	}

	// Squirrel doesn't support COPY
	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s) TO '%s' (%s)`,
		exportTable, strings.ReplaceAll(path, "'", "''"), options))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to export %s", path)
	}

	return nil
}

// Close releases database resources.
func (w *TableWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return err
		}

		w.db = nil
	}

	return nil
}

func columnType(column string) string {
	switch column {
	case types.ColumnTime:
		return "TIMESTAMP"
	case types.ColumnAccountID, types.ColumnSymbol, types.ColumnResult, types.ColumnDayName:
		return "VARCHAR"
	case types.ColumnHour, types.ColumnWeekday, types.ColumnCount:
		return "BIGINT"
	default:
		return "DOUBLE"
	}
}

func cellValues(row []any) []any {
	values := make([]any, len(row))

	for i, cell := range row {
		switch v := cell.(type) {
		case int:
			values[i] = int64(v)
		default:
			values[i] = v
		}
	}

	return values
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
