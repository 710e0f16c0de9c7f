package cache

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Cache persists balance-over-time rows keyed by types.BalanceKey.
// Reads never fail on backend errors: they log and report a miss.
type Cache interface {
	// Store inserts rows, skipping rows that are not Storable.
	// Returns the number of rows written.
	Store(ctx context.Context, rows []types.CachedBalance) (int, error)
	// Load returns the rows matching filter ordered by closed_at.
	Load(ctx context.Context, filter Filter) ([]types.CachedBalance, error)
	// Invalidate deletes the rows matching filter.
	Invalidate(ctx context.Context, filter Filter) (int64, error)
	// Replace atomically swaps every row stored under key for rows.
	// Rows that are not Storable are skipped like in Store, so a curve
	// containing them loads back with missing days.
	Replace(ctx context.Context, key types.BalanceKey, rows []types.CachedBalance) (int, error)
	Close() error
}

// Filter selects cached rows. Key components that are set must match.
// Unset components are unconstrained unless Exact is true, in which case
// they must be NULL.
type Filter struct {
	types.BalanceKey
	Exact bool
	Since optional.Option[time.Time]
	Until optional.Option[time.Time]
}

// ExactFilter selects exactly the rows stored under key.
func ExactFilter(key types.BalanceKey) Filter {
	return Filter{BalanceKey: key, Exact: true}
}
