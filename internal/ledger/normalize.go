package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Raw is a ledger as delivered by ingestion.
type Raw struct {
	// Columns is the column set declared by the source. Nil means the
	// source carries every canonical column.
	Columns []string
	Rows    []types.RawTradeEvent
}

// unixMillisThreshold separates unix seconds from unix milliseconds.
const unixMillisThreshold = 1_000_000_000_000

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize validates raw rows and converts them into a Frame sorted
// ascending by time. Rows with equal timestamps keep their input order.
// Null commission and swap become 0.
func Normalize(raw Raw) (Frame, error) {
	var columns []string

	if raw.Columns != nil {
		declared := make(map[string]struct{}, len(raw.Columns))
		for _, column := range raw.Columns {
			declared[strings.ToLower(strings.TrimSpace(column))] = struct{}{}
		}

		for _, column := range types.RequiredLedgerColumns {
			if _, ok := declared[column]; !ok {
				return Frame{}, errors.NewLedgerSchemaErrorf(errors.ErrCodeMissingColumn, errors.NoRow, column,
					"required column %q is missing", column)
			}
		}

		for _, column := range types.LedgerColumns {
			if _, ok := declared[column]; ok {
				columns = append(columns, column)
			}
		}
	}

	rows := make([]types.TradeEvent, 0, len(raw.Rows))
	ids := make(map[string]int)

	for i, r := range raw.Rows {
		event, err := normalizeRow(i, r)
		if err != nil {
			return Frame{}, err
		}

		if event.ID != "" {
			if first, ok := ids[event.ID]; ok {
				return Frame{}, errors.NewLedgerSchemaErrorf(errors.ErrCodeDuplicateRow, i, types.ColumnID,
					"duplicate row id %q, first seen at row %d", event.ID, first)
			}

			ids[event.ID] = i
		}

		rows = append(rows, event)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.Before(rows[j].Time)
	})

	return NewFrame(rows, columns...), nil
}

func normalizeRow(i int, r types.RawTradeEvent) (types.TradeEvent, error) {
	if strings.TrimSpace(r.AccountID) == "" {
		return types.TradeEvent{}, errors.NewLedgerSchemaError(errors.ErrCodeLedgerSchema, i, types.ColumnAccountID,
			"account_id is required")
	}

	if strings.TrimSpace(r.Time) == "" {
		return types.TradeEvent{}, errors.NewLedgerSchemaError(errors.ErrCodeLedgerSchema, i, types.ColumnTime,
			"time is required")
	}

	if r.Profit.IsNone() {
		return types.TradeEvent{}, errors.NewLedgerSchemaError(errors.ErrCodeLedgerSchema, i, types.ColumnProfit,
			"profit is required")
	}

	at, err := ParseTime(r.Time)
	if err != nil {
		return types.TradeEvent{}, errors.NewLedgerSchemaErrorf(errors.ErrCodeInvalidTimestamp, i, types.ColumnTime,
			"cannot parse time %q", r.Time)
	}

	eventType := types.TradeEventType(r.Type)
	if !eventType.Valid() {
		return types.TradeEvent{}, errors.NewLedgerSchemaErrorf(errors.ErrCodeInvalidType, i, types.ColumnType,
			"unknown event type %d", r.Type)
	}

	return types.TradeEvent{
		ID:         strings.TrimSpace(r.ID),
		AccountID:  r.AccountID,
		Symbol:     r.Symbol,
		Time:       at,
		Type:       eventType,
		Profit:     r.Profit.Unwrap(),
		Commission: r.Commission.TakeOr(0),
		Swap:       r.Swap.TakeOr(0),
		Size:       r.Size,
		Price:      r.Price,
		Duration:   r.Duration,
		AssetType:  types.ParseAssetType(r.AssetType),
	}, nil
}

// ParseTime parses a ledger timestamp and returns it in UTC. Timestamps
// without a zone are read as UTC. Integers are unix seconds, or unix
// milliseconds from 1e12 upwards.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n >= unixMillisThreshold || n <= -unixMillisThreshold {
			return time.UnixMilli(n).UTC(), nil
		}

		return time.Unix(n, 0).UTC(), nil
	}

	var lastErr error

	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}
