package cache

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/stretchr/testify/suite"
)

// SQLCacheTestSuite runs against a real embedded backend.
type SQLCacheTestSuite struct {
	suite.Suite
	driver Driver
	cache  *SQLCache
	ctx    context.Context
}

func TestDuckDBCacheSuite(t *testing.T) {
	suite.Run(t, &SQLCacheTestSuite{driver: DriverDuckDB})
}

func TestSQLiteCacheSuite(t *testing.T) {
	suite.Run(t, &SQLCacheTestSuite{driver: DriverSQLite})
}

func (suite *SQLCacheTestSuite) SetupTest() {
	suite.ctx = context.Background()

	dsn := ""
	if suite.driver == DriverSQLite {
		dsn = filepath.Join(suite.T().TempDir(), "cache.db")
	}

	cache, err := Open(suite.ctx, suite.driver, dsn, logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.cache = cache
}

func (suite *SQLCacheTestSuite) TearDownTest() {
	if suite.cache != nil {
		suite.cache.Close()
	}
}

var cacheStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func balanceRows(key types.BalanceKey, n int) []types.CachedBalance {
	rows := make([]types.CachedBalance, n)

	for i := range rows {
		absolute := 1000 + float64(i)*10
		rows[i] = types.CachedBalance{
			BalanceKey:        key,
			ClosedAt:          cacheStart.AddDate(0, 0, i),
			InitialBalance:    1000,
			AbsoluteBalance:   absolute,
			InitialBalancePct: absolute / 1000 * 100,
			RelativeBalance:   (absolute - 1000) / 1000 * 100,
		}
	}

	return rows
}

func accountKey(id string) types.BalanceKey {
	return types.BalanceKey{AccountID: optional.Some(id)}
}

func (suite *SQLCacheTestSuite) TestStoreLoadInvalidateRoundTrip() {
	keyA := accountKey("A")
	keyB := accountKey("B")

	rows := append(balanceRows(keyA, 60), balanceRows(keyB, 40)...)

	stored, err := suite.cache.Store(suite.ctx, rows)
	suite.Require().NoError(err)
	suite.Equal(100, stored)

	loaded, err := suite.cache.Load(suite.ctx, Filter{BalanceKey: keyA})
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 60)

	for i, row := range loaded {
		suite.Equal("A", row.AccountID.Unwrap())
		suite.True(row.Symbol.IsNone())
		suite.True(row.ClosedAt.Equal(rows[i].ClosedAt))
		suite.InDelta(rows[i].AbsoluteBalance, row.AbsoluteBalance, 1e-9)
		suite.InDelta(rows[i].RelativeBalance, row.RelativeBalance, 1e-9)
		suite.False(row.CachedAt.IsZero())
		suite.NotZero(row.ID)
	}

	deleted, err := suite.cache.Invalidate(suite.ctx, Filter{BalanceKey: keyA})
	suite.Require().NoError(err)
	suite.Equal(int64(60), deleted)

	loaded, err = suite.cache.Load(suite.ctx, Filter{BalanceKey: keyA})
	suite.Require().NoError(err)
	suite.Empty(loaded)

	loaded, err = suite.cache.Load(suite.ctx, Filter{BalanceKey: keyB})
	suite.Require().NoError(err)
	suite.Len(loaded, 40)
}

func (suite *SQLCacheTestSuite) TestStoreSkipsZeroAndNaNBalances() {
	rows := balanceRows(accountKey("A"), 3)
	rows[0].AbsoluteBalance = 0
	rows[1].AbsoluteBalance = math.NaN()

	stored, err := suite.cache.Store(suite.ctx, rows)
	suite.Require().NoError(err)
	suite.Equal(1, stored)

	loaded, err := suite.cache.Load(suite.ctx, Filter{})
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 1)
	suite.True(loaded[0].ClosedAt.Equal(rows[2].ClosedAt))
}

func (suite *SQLCacheTestSuite) TestExactFilterMatchesNullComponents() {
	keyA := accountKey("A")
	keyAB := types.BalanceKey{
		AccountID: optional.Some("A"),
		Symbol:    optional.Some("AAPL"),
		Direction: optional.Some(types.DirectionLong),
		AssetType: optional.Some(types.AssetTypeStock),
		Hour:      optional.Some(14),
		Weekday:   optional.Some(2),
	}

	_, err := suite.cache.Store(suite.ctx, append(balanceRows(keyA, 5), balanceRows(keyAB, 3)...))
	suite.Require().NoError(err)

	loose, err := suite.cache.Load(suite.ctx, Filter{BalanceKey: keyA})
	suite.Require().NoError(err)
	suite.Len(loose, 8)

	exact, err := suite.cache.Load(suite.ctx, ExactFilter(keyA))
	suite.Require().NoError(err)
	suite.Len(exact, 5)

	full, err := suite.cache.Load(suite.ctx, ExactFilter(keyAB))
	suite.Require().NoError(err)
	suite.Require().Len(full, 3)
	suite.Equal(keyAB, full[0].BalanceKey)
}

func (suite *SQLCacheTestSuite) TestLoadTimeRange() {
	_, err := suite.cache.Store(suite.ctx, balanceRows(accountKey("A"), 10))
	suite.Require().NoError(err)

	loaded, err := suite.cache.Load(suite.ctx, Filter{
		BalanceKey: accountKey("A"),
		Since:      optional.Some(cacheStart.AddDate(0, 0, 2)),
		Until:      optional.Some(cacheStart.AddDate(0, 0, 5)),
	})
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 4)
	suite.True(loaded[0].ClosedAt.Equal(cacheStart.AddDate(0, 0, 2)))
	suite.True(loaded[3].ClosedAt.Equal(cacheStart.AddDate(0, 0, 5)))
}

func (suite *SQLCacheTestSuite) TestReplaceSwapsRowsUnderKey() {
	keyA := accountKey("A")
	keyB := accountKey("B")

	_, err := suite.cache.Store(suite.ctx, append(balanceRows(keyA, 10), balanceRows(keyB, 4)...))
	suite.Require().NoError(err)

	// rows carrying another key are stored under the replaced key
	stored, err := suite.cache.Replace(suite.ctx, keyA, balanceRows(keyB, 3))
	suite.Require().NoError(err)
	suite.Equal(3, stored)

	loaded, err := suite.cache.Load(suite.ctx, ExactFilter(keyA))
	suite.Require().NoError(err)
	suite.Len(loaded, 3)

	loaded, err = suite.cache.Load(suite.ctx, ExactFilter(keyB))
	suite.Require().NoError(err)
	suite.Len(loaded, 4)
}

func (suite *SQLCacheTestSuite) TestConcurrentReplaceLeavesOneWriterResult() {
	key := accountKey("A")

	var wg sync.WaitGroup

	for _, n := range []int{5, 7, 11} {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			_, err := suite.cache.Replace(suite.ctx, key, balanceRows(key, n))
			suite.NoError(err)
		}(n)
	}

	wg.Wait()

	loaded, err := suite.cache.Load(suite.ctx, ExactFilter(key))
	suite.Require().NoError(err)
	suite.Contains([]int{5, 7, 11}, len(loaded))
	suite.Equal(0, suite.cache.writers.size())
}

func (suite *SQLCacheTestSuite) TestIncompatibleSchemaIsRecreated() {
	_, err := suite.cache.Store(suite.ctx, balanceRows(accountKey("A"), 5))
	suite.Require().NoError(err)

	suite.setStoredVersion("0.1.0")
	suite.Require().NoError(suite.cache.Initialize(suite.ctx))

	loaded, err := suite.cache.Load(suite.ctx, Filter{})
	suite.Require().NoError(err)
	suite.Empty(loaded)

	stored, err := suite.cache.storedSchemaVersion(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("1.0.0", stored.Unwrap())
}

func (suite *SQLCacheTestSuite) TestCompatibleSchemaKeepsRows() {
	_, err := suite.cache.Store(suite.ctx, balanceRows(accountKey("A"), 5))
	suite.Require().NoError(err)

	suite.setStoredVersion("1.0.9")
	suite.Require().NoError(suite.cache.Initialize(suite.ctx))

	loaded, err := suite.cache.Load(suite.ctx, Filter{})
	suite.Require().NoError(err)
	suite.Len(loaded, 5)
}

func (suite *SQLCacheTestSuite) TestLoadAfterCloseIsMiss() {
	suite.Require().NoError(suite.cache.Close())

	loaded, err := suite.cache.Load(suite.ctx, Filter{})
	suite.NoError(err)
	suite.Empty(loaded)

	suite.cache = nil
}

func (suite *SQLCacheTestSuite) setStoredVersion(value string) {
	query, args, err := suite.cache.sq.Update(metaTable).Set("value", value).
		Where("key = ?", schemaVersionKey).ToSql()
	suite.Require().NoError(err)

	var result sql.Result

	result, err = suite.cache.db.ExecContext(suite.ctx, query, args...)
	suite.Require().NoError(err)

	affected, err := result.RowsAffected()
	suite.Require().NoError(err)
	suite.Equal(int64(1), affected)
}
