package ledger

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// csvRecord mirrors one CSV ledger line. Every field is read as text so
// empty cells can be told apart from zeros.
type csvRecord struct {
	ID         string `csv:"id"`
	AccountID  string `csv:"account_id"`
	Symbol     string `csv:"symbol"`
	Time       string `csv:"time"`
	Type       string `csv:"type"`
	Profit     string `csv:"profit"`
	Commission string `csv:"commission"`
	Swap       string `csv:"swap"`
	Size       string `csv:"size"`
	Price      string `csv:"price"`
	Duration   string `csv:"duration"`
	AssetType  string `csv:"asset_type"`
}

// CSVSource reads a ledger from a CSV file with a header line.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Read implements Source.
func (s *CSVSource) Read(ctx context.Context, filter Filter) (Raw, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return Raw{}, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open ledger file %s", s.path)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err != nil {
		return Raw{}, errors.Wrapf(errors.ErrCodeLedgerSchema, err, "failed to read header of %s", s.path)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Raw{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to rewind ledger file", err)
	}

	var records []csvRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return Raw{}, errors.Wrapf(errors.ErrCodeLedgerSchema, err, "failed to parse ledger file %s", s.path)
	}

	columns := make([]string, 0, len(header))
	for _, column := range header {
		columns = append(columns, strings.ToLower(strings.TrimSpace(column)))
	}

	raw := Raw{Columns: columns, Rows: make([]types.RawTradeEvent, 0, len(records))}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return Raw{}, err
		}

		row, err := record.toRaw(i)
		if err != nil {
			return Raw{}, err
		}

		if filter.matches(row) {
			raw.Rows = append(raw.Rows, row)
		}
	}

	return raw, nil
}

func (s *CSVSource) Close() error {
	return nil
}

func (r csvRecord) toRaw(i int) (types.RawTradeEvent, error) {
	row := types.RawTradeEvent{
		ID:        r.ID,
		AccountID: r.AccountID,
		Symbol:    r.Symbol,
		Time:      r.Time,
		AssetType: r.AssetType,
	}

	row.Type = -1
	if strings.TrimSpace(r.Type) == "" {
		row.Type = int(types.TradeEventDeposit)
	} else if t, ok := types.ParseTradeEventType(r.Type); ok {
		row.Type = int(t)
	}

	var err error

	if row.Profit, err = parseOptionalFloat(i, types.ColumnProfit, r.Profit); err != nil {
		return row, err
	}

	if row.Commission, err = parseOptionalFloat(i, types.ColumnCommission, r.Commission); err != nil {
		return row, err
	}

	if row.Swap, err = parseOptionalFloat(i, types.ColumnSwap, r.Swap); err != nil {
		return row, err
	}

	if row.Duration, err = parseOptionalFloat(i, types.ColumnDuration, r.Duration); err != nil {
		return row, err
	}

	size, err := parseOptionalFloat(i, types.ColumnSize, r.Size)
	if err != nil {
		return row, err
	}

	price, err := parseOptionalFloat(i, types.ColumnPrice, r.Price)
	if err != nil {
		return row, err
	}

	row.Size = size.TakeOr(0)
	row.Price = price.TakeOr(0)

	return row, nil
}

func parseOptionalFloat(row int, column, value string) (optional.Option[float64], error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "null") || strings.EqualFold(value, "nan") {
		return optional.None[float64](), nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return optional.None[float64](), errors.NewLedgerSchemaErrorf(errors.ErrCodeLedgerSchema, row, column,
			"cannot parse %s value %q", column, value)
	}

	return optional.Some(f), nil
}
