package cache

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Driver names a supported cache backend. The value doubles as the
// database/sql driver name.
type Driver string

const (
	DriverDuckDB   Driver = "duckdb"
	DriverSQLite   Driver = "sqlite3"
	DriverPostgres Driver = "postgres"
)

const (
	balanceTable = "cache_balance_over_time"
	metaTable    = "cache_meta"

	schemaVersionKey = "schema_version"
)

type dialect struct {
	placeholder squirrel.PlaceholderFormat
	createTable []string
}

var dialects = map[Driver]dialect{
	DriverDuckDB: {
		placeholder: squirrel.Dollar,
		createTable: []string{
			`CREATE SEQUENCE IF NOT EXISTS cache_balance_over_time_id_seq`,
			`CREATE TABLE IF NOT EXISTS cache_balance_over_time (
				id BIGINT PRIMARY KEY DEFAULT nextval('cache_balance_over_time_id_seq'),
				account_id VARCHAR,
				symbol VARCHAR,
				direction VARCHAR,
				asset_type VARCHAR,
				hour INTEGER,
				weekday INTEGER,
				closed_at TIMESTAMP NOT NULL,
				initial_balance DOUBLE NOT NULL,
				absolute_balance DOUBLE NOT NULL,
				initial_balance_pct DOUBLE NOT NULL,
				relative_balance DOUBLE NOT NULL,
				cached_at TIMESTAMP NOT NULL
			)`,
		},
	},
	DriverSQLite: {
		placeholder: squirrel.Question,
		createTable: []string{
			`CREATE TABLE IF NOT EXISTS cache_balance_over_time (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				account_id TEXT,
				symbol TEXT,
				direction TEXT,
				asset_type TEXT,
				hour INTEGER,
				weekday INTEGER,
				closed_at TIMESTAMP NOT NULL,
				initial_balance REAL NOT NULL,
				absolute_balance REAL NOT NULL,
				initial_balance_pct REAL NOT NULL,
				relative_balance REAL NOT NULL,
				cached_at TIMESTAMP NOT NULL
			)`,
		},
	},
	DriverPostgres: {
		placeholder: squirrel.Dollar,
		createTable: []string{
			`CREATE TABLE IF NOT EXISTS cache_balance_over_time (
				id BIGSERIAL PRIMARY KEY,
				account_id TEXT,
				symbol TEXT,
				direction TEXT,
				asset_type TEXT,
				hour INTEGER,
				weekday INTEGER,
				closed_at TIMESTAMPTZ NOT NULL,
				initial_balance DOUBLE PRECISION NOT NULL,
				absolute_balance DOUBLE PRECISION NOT NULL,
				initial_balance_pct DOUBLE PRECISION NOT NULL,
				relative_balance DOUBLE PRECISION NOT NULL,
				cached_at TIMESTAMPTZ NOT NULL
			)`,
		},
	},
}

// Shared by every dialect.
var createIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_cache_balance_key ON cache_balance_over_time (account_id, symbol, asset_type, hour, weekday)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_balance_closed_at ON cache_balance_over_time (closed_at)`,
}

const createMetaTable = `CREATE TABLE IF NOT EXISTS cache_meta (key VARCHAR PRIMARY KEY, value VARCHAR NOT NULL)`

func dialectFor(driver Driver) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, errors.New(errors.ErrCodeInvalidConfiguration, fmt.Sprintf("unsupported cache driver %q", driver))
	}

	return d, nil
}

// Valid reports whether d is a supported driver.
func (d Driver) Valid() bool {
	_, ok := dialects[d]

	return ok
}
