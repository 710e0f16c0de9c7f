package cache

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/version"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"go.uber.org/zap"
)

const insertBatchSize = 500

var balanceColumns = []string{
	"account_id", "symbol", "direction", "asset_type", "hour", "weekday", "closed_at",
	"initial_balance", "absolute_balance", "initial_balance_pct", "relative_balance", "cached_at",
}

// SQLCache is a Cache backed by DuckDB, SQLite or PostgreSQL.
type SQLCache struct {
	db      *sql.DB
	driver  Driver
	dialect dialect
	sq      squirrel.StatementBuilderType
	logger  *logger.Logger
	writers *keyedMutex
	now     func() time.Time
}

var _ Cache = (*SQLCache)(nil)

// Open connects to the backend identified by driver and dsn and prepares
// the cache tables. An empty DuckDB dsn opens an in-memory database.
func Open(ctx context.Context, driver Driver, dsn string, logger *logger.Logger) (*SQLCache, error) {
	if !driver.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported cache driver %q", driver)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCacheUnavailable, err, "failed to open %s cache", driver)
	}

	// sqlite allows a single writer
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	cache, err := NewSQLCache(db, driver, logger)
	if err != nil {
		db.Close()

		return nil, err
	}

	if err := cache.Initialize(ctx); err != nil {
		db.Close()

		return nil, err
	}

	return cache, nil
}

// NewSQLCache wraps an open database. Call Initialize before first use
// unless the tables already exist.
func NewSQLCache(db *sql.DB, driver Driver, logger *logger.Logger) (*SQLCache, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	return &SQLCache{
		db:      db,
		driver:  driver,
		dialect: d,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(d.placeholder),
		logger:  logger,
		writers: newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Initialize creates the cache tables. A cache written under an
// incompatible schema version is dropped and recreated.
func (c *SQLCache) Initialize(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createMetaTable); err != nil {
		return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to create cache meta table", err)
	}

	stored, err := c.storedSchemaVersion(ctx)
	if err != nil {
		return err
	}

	if stored.IsSome() {
		if err := version.CheckSchemaCompatibility(stored.Unwrap(), version.CacheSchemaVersion); err != nil {
			c.logger.Warn("Dropping incompatible balance cache",
				zap.String("stored_version", stored.Unwrap()),
				zap.String("current_version", version.CacheSchemaVersion),
				zap.Error(err),
			)

			if _, err := c.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+balanceTable); err != nil {
				return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to drop balance cache table", err)
			}
		}
	}

	statements := append(append([]string{}, c.dialect.createTable...), createIndexes...)
	for _, statement := range statements {
		if _, err := c.db.ExecContext(ctx, statement); err != nil {
			return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to create balance cache table", err)
		}
	}

	return c.writeSchemaVersion(ctx)
}

func (c *SQLCache) storedSchemaVersion(ctx context.Context) (optional.Option[string], error) {
	query, args, err := c.sq.Select("value").From(metaTable).Where(squirrel.Eq{"key": schemaVersionKey}).ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build schema version query", err)
	}

	var value string

	err = c.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return optional.None[string](), nil
	}

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to read cache schema version", err)
	}

	return optional.Some(value), nil
}

func (c *SQLCache) writeSchemaVersion(ctx context.Context) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		deleteQuery, deleteArgs, err := c.sq.Delete(metaTable).Where(squirrel.Eq{"key": schemaVersionKey}).ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return err
		}

		insertQuery, insertArgs, err := c.sq.Insert(metaTable).Columns("key", "value").
			Values(schemaVersionKey, version.CacheSchemaVersion).ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)

		return err
	})
}

// Store implements Cache. Writers are serialized per key carried by rows.
func (c *SQLCache) Store(ctx context.Context, rows []types.CachedBalance) (int, error) {
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.BalanceKey.String()
	}

	defer c.writers.LockAll(keys)()

	var stored int

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		n, err := c.insert(ctx, tx, rows)
		stored = n

		return err
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to store balance rows", err)
	}

	return stored, nil
}

// Load implements Cache.
func (c *SQLCache) Load(ctx context.Context, filter Filter) ([]types.CachedBalance, error) {
	builder := c.sq.Select(append([]string{"id"}, balanceColumns...)...).From(balanceTable)
	for _, pred := range predicates(filter) {
		builder = builder.Where(pred)
	}

	query, args, err := builder.OrderBy("closed_at", "id").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build cache query", err)
	}

	rows, err := c.query(ctx, query, args)
	if err != nil {
		lookups.WithLabelValues(resultUnavailable).Inc()
		c.logger.Warn("Balance cache unavailable, treating as miss",
			zap.String("key", filter.String()),
			zap.Error(err),
		)

		return nil, nil
	}

	if len(rows) == 0 {
		lookups.WithLabelValues(resultMiss).Inc()
	} else {
		lookups.WithLabelValues(resultHit).Inc()
	}

	return rows, nil
}

func (c *SQLCache) query(ctx context.Context, query string, args []any) ([]types.CachedBalance, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []types.CachedBalance

	for rows.Next() {
		var (
			row                                     types.CachedBalance
			accountID, symbol, direction, assetType sql.NullString
			hour, weekday                           sql.NullInt64
		)

		if err := rows.Scan(&row.ID, &accountID, &symbol, &direction, &assetType, &hour, &weekday,
			&row.ClosedAt, &row.InitialBalance, &row.AbsoluteBalance, &row.InitialBalancePct,
			&row.RelativeBalance, &row.CachedAt); err != nil {
			return nil, err
		}

		row.AccountID = nullString(accountID)
		row.Symbol = nullString(symbol)
		row.Direction = optional.Map(nullString(direction), func(v string) types.Direction { return types.Direction(v) })
		row.AssetType = optional.Map(nullString(assetType), func(v string) types.AssetType { return types.AssetType(v) })
		row.Hour = nullInt(hour)
		row.Weekday = nullInt(weekday)
		row.ClosedAt = row.ClosedAt.UTC()
		row.CachedAt = row.CachedAt.UTC()

		result = append(result, row)
	}

	return result, rows.Err()
}

// Invalidate implements Cache.
func (c *SQLCache) Invalidate(ctx context.Context, filter Filter) (int64, error) {
	if filter.Exact {
		defer c.writers.Lock(filter.String())()
	}

	var deleted int64

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		n, err := c.delete(ctx, tx, filter)
		deleted = n

		return err
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to invalidate balance rows", err)
	}

	c.logger.Debug("Invalidated balance cache",
		zap.String("key", filter.String()),
		zap.Int64("rows", deleted),
	)

	return deleted, nil
}

// Replace implements Cache. Every row is stored under key regardless of
// the key it carries.
func (c *SQLCache) Replace(ctx context.Context, key types.BalanceKey, rows []types.CachedBalance) (int, error) {
	defer c.writers.Lock(key.String())()

	keyed := make([]types.CachedBalance, len(rows))
	for i, row := range rows {
		row.BalanceKey = key
		keyed[i] = row
	}

	var stored int

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := c.delete(ctx, tx, ExactFilter(key)); err != nil {
			return err
		}

		n, err := c.insert(ctx, tx, keyed)
		stored = n

		return err
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to replace balance rows", err)
	}

	c.logger.Debug("Replaced balance cache",
		zap.String("key", key.String()),
		zap.Int("rows", stored),
	)

	return stored, nil
}

// Close implements Cache.
func (c *SQLCache) Close() error {
	return c.db.Close()
}

func (c *SQLCache) insert(ctx context.Context, tx *sql.Tx, rows []types.CachedBalance) (int, error) {
	cachedAt := c.now()
	stored := 0

	builder := c.sq.Insert(balanceTable).Columns(balanceColumns...)
	pending := 0

	flush := func() error {
		if pending == 0 {
			return nil
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		stored += pending
		pending = 0
		builder = c.sq.Insert(balanceTable).Columns(balanceColumns...)

		return nil
	}

	for _, row := range rows {
		if !Storable(row) {
			continue
		}

		if row.CachedAt.IsZero() {
			row.CachedAt = cachedAt
		}

		builder = builder.Values(
			optionValue(row.AccountID),
			optionValue(row.Symbol),
			optionValue(optional.Map(row.Direction, func(v types.Direction) string { return string(v) })),
			optionValue(optional.Map(row.AssetType, func(v types.AssetType) string { return string(v) })),
			optionValue(row.Hour),
			optionValue(row.Weekday),
			row.ClosedAt.UTC(),
			row.InitialBalance,
			row.AbsoluteBalance,
			row.InitialBalancePct,
			row.RelativeBalance,
			row.CachedAt.UTC(),
		)
		pending++

		if pending == insertBatchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}

	if err := flush(); err != nil {
		return 0, err
	}

	rowsWritten.Add(float64(stored))

	return stored, nil
}

func (c *SQLCache) delete(ctx context.Context, tx *sql.Tx, filter Filter) (int64, error) {
	builder := c.sq.Delete(balanceTable)
	for _, pred := range predicates(filter) {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	rowsInvalidated.Add(float64(deleted))

	return deleted, nil
}

func (c *SQLCache) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

// Storable reports whether the cache keeps row. Rows with a zero or NaN
// absolute balance are skipped on write.
func Storable(row types.CachedBalance) bool {
	return row.AbsoluteBalance != 0 && !math.IsNaN(row.AbsoluteBalance)
}

// predicates renders filter as one predicate per constrained column.
func predicates(filter Filter) []squirrel.Sqlizer {
	var preds []squirrel.Sqlizer

	add := func(column string, value optional.Option[any]) {
		switch {
		case value.IsSome():
			preds = append(preds, squirrel.Eq{column: value.Unwrap()})
		case filter.Exact:
			preds = append(preds, squirrel.Eq{column: nil})
		}
	}

	add("account_id", anyOption(filter.AccountID))
	add("symbol", anyOption(filter.Symbol))
	add("direction", optional.Map(filter.Direction, func(v types.Direction) any { return string(v) }))
	add("asset_type", optional.Map(filter.AssetType, func(v types.AssetType) any { return string(v) }))
	add("hour", anyOption(filter.Hour))
	add("weekday", anyOption(filter.Weekday))

	if filter.Since.IsSome() {
		preds = append(preds, squirrel.GtOrEq{"closed_at": filter.Since.Unwrap().UTC()})
	}

	if filter.Until.IsSome() {
		preds = append(preds, squirrel.LtOrEq{"closed_at": filter.Until.Unwrap().UTC()})
	}

	return preds
}

func anyOption[T any](o optional.Option[T]) optional.Option[any] {
	return optional.Map(o, func(v T) any { return v })
}

func optionValue[T any](o optional.Option[T]) any {
	if o.IsNone() {
		return nil
	}

	return o.Unwrap()
}

func nullString(v sql.NullString) optional.Option[string] {
	if !v.Valid {
		return optional.None[string]()
	}

	return optional.Some(v.String)
}

func nullInt(v sql.NullInt64) optional.Option[int] {
	if !v.Valid {
		return optional.None[int]()
	}

	return optional.Some(int(v.Int64))
}
