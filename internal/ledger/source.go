package ledger

import (
	"context"
	"slices"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Source loads a raw ledger from storage.
type Source interface {
	// Read returns the raw rows matching the filter. The returned Raw must
	// declare the columns the storage actually provides.
	Read(ctx context.Context, filter Filter) (Raw, error)
	Close() error
}

// Filter narrows the rows a Source returns.
type Filter struct {
	// AccountIDs restricts the ledger to these accounts. Empty means all.
	AccountIDs []string
	// Start and End bound the event time, both inclusive.
	Start optional.Option[time.Time]
	End   optional.Option[time.Time]
}

// matches reports whether a raw row passes the filter. Rows whose time
// cannot be parsed are kept so Normalize can report them.
func (f Filter) matches(r types.RawTradeEvent) bool {
	if len(f.AccountIDs) > 0 && !slices.Contains(f.AccountIDs, r.AccountID) {
		return false
	}

	if f.Start.IsNone() && f.End.IsNone() {
		return true
	}

	at, err := ParseTime(r.Time)
	if err != nil {
		return true
	}

	if f.Start.IsSome() && at.Before(f.Start.Unwrap()) {
		return false
	}

	if f.End.IsSome() && at.After(f.End.Unwrap()) {
		return false
	}

	return true
}

// Load reads from the source and normalizes the result.
func Load(ctx context.Context, source Source, filter Filter) (Frame, error) {
	raw, err := source.Read(ctx, filter)
	if err != nil {
		return Frame{}, err
	}

	frame, err := Normalize(raw)
	if err != nil {
		return Frame{}, err
	}

	frame.windowed = filter.Start.IsSome() || filter.End.IsSome()

	return frame, nil
}
