package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"go.uber.org/zap"
)

const ledgerView = "ledger"

// DuckDBSource reads a ledger from a parquet or CSV file through DuckDB.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	// columns present in the ledger view
	columns map[string]struct{}
}

// NewDuckDBSource opens a DuckDB database. An empty path opens an in-memory database.
func NewDuckDBSource(path string, logger *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize exposes the ledger file as a view. Files ending in .csv are
// read with read_csv_auto, everything else as parquet.
func (s *DuckDBSource) Initialize(path string) error {
	s.logger.Debug("Initializing DuckDB ledger source", zap.String("path", path))

	if _, err := s.db.Exec(`DROP VIEW IF EXISTS ` + ledgerView); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s('%s')`, ledgerView, reader,
		strings.ReplaceAll(path, "'", "''"))
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load ledger file %s", path)
	}

	columns, err := s.describe()
	if err != nil {
		return err
	}

	s.columns = columns

	return nil
}

func (s *DuckDBSource) describe() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT column_name FROM (DESCRIBE ` + ledgerView + `)`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe ledger view", err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns[strings.ToLower(name)] = struct{}{}
	}

	return columns, rows.Err()
}

// Read implements Source.
func (s *DuckDBSource) Read(ctx context.Context, filter Filter) (Raw, error) {
	if s.columns == nil {
		return Raw{}, errors.New(errors.ErrCodeDataSourceUnavailable, "ledger source not initialized")
	}

	declared := make([]string, 0, len(s.columns))
	selects := make([]string, 0, len(types.LedgerColumns)+1)

	for _, column := range append([]string{types.ColumnID}, types.LedgerColumns...) {
		if _, ok := s.columns[column]; !ok {
			selects = append(selects, "NULL AS "+column)

			continue
		}

		declared = append(declared, column)

		switch column {
		case types.ColumnType:
			selects = append(selects, "CAST(type AS INTEGER) AS type")
		case types.ColumnProfit, types.ColumnCommission, types.ColumnSwap, types.ColumnSize,
			types.ColumnPrice, types.ColumnDuration:
			selects = append(selects, fmt.Sprintf("CAST(%s AS DOUBLE) AS %s", column, column))
		default:
			selects = append(selects, fmt.Sprintf("CAST(%s AS VARCHAR) AS %s", column, column))
		}
	}

	query := s.sq.Select(selects...).From(ledgerView)

	if len(filter.AccountIDs) > 0 {
		query = query.Where(squirrel.Eq{types.ColumnAccountID: filter.AccountIDs})
	}

	if filter.Start.IsSome() {
		query = query.Where(squirrel.GtOrEq{types.ColumnTime: filter.Start.Unwrap()})
	}

	if filter.End.IsSome() {
		query = query.Where(squirrel.LtOrEq{types.ColumnTime: filter.End.Unwrap()})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return Raw{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build ledger query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return Raw{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query ledger", err)
	}
	defer rows.Close()

	raw := Raw{Columns: declared}

	for rows.Next() {
		var (
			id, accountID, symbol, at, assetType  sql.NullString
			eventType                             sql.NullInt64
			profit, commission, swap, size, price sql.NullFloat64
			duration                              sql.NullFloat64
		)

		if err := rows.Scan(&id, &accountID, &symbol, &at, &eventType, &profit, &commission, &swap,
			&size, &price, &duration, &assetType); err != nil {
			return Raw{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan ledger row", err)
		}

		raw.Rows = append(raw.Rows, types.RawTradeEvent{
			ID:         id.String,
			AccountID:  accountID.String,
			Symbol:     symbol.String,
			Time:       at.String,
			Type:       int(eventType.Int64),
			Profit:     nullFloat(profit),
			Commission: nullFloat(commission),
			Swap:       nullFloat(swap),
			Size:       size.Float64,
			Price:      price.Float64,
			Duration:   nullFloat(duration),
			AssetType:  assetType.String,
		})
	}

	if err := rows.Err(); err != nil {
		return Raw{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate ledger rows", err)
	}

	s.logger.Debug("Loaded ledger rows", zap.Int("rows", len(raw.Rows)))

	return raw, nil
}

func (s *DuckDBSource) Close() error {
	return s.db.Close()
}

func nullFloat(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
