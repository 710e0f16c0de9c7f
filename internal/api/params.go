package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/analytics"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// ledgerFilter reads ?account=A&account=B&start=...&end=...
func ledgerFilter(query url.Values) (ledger.Filter, error) {
	filter := ledger.Filter{AccountIDs: query["account"]}

	for _, bound := range []struct {
		name   string
		target *optional.Option[time.Time]
	}{
		{"start", &filter.Start},
		{"end", &filter.End},
	} {
		value := query.Get(bound.name)
		if value == "" {
			continue
		}

		at, err := ledger.ParseTime(value)
		if err != nil {
			return ledger.Filter{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid %s %q", bound.name, value)
		}

		*bound.target = optional.Some(at)
	}

	return filter, nil
}

// computeRequest reads ?grouped=false&by_account=true&by_symbol=true.
func computeRequest(query url.Values) (analytics.Request, error) {
	req := analytics.DefaultRequest()

	var err error

	if req.Grouped, err = boolParam(query, "grouped", req.Grouped); err != nil {
		return req, err
	}

	if req.Group.ByAccount, err = boolParam(query, "by_account", req.Group.ByAccount); err != nil {
		return req, err
	}

	if req.Group.BySymbol, err = boolParam(query, "by_symbol", req.Group.BySymbol); err != nil {
		return req, err
	}

	return req, nil
}

// balanceKey reads the key components. Only the first account is used.
func balanceKey(query url.Values) (types.BalanceKey, error) {
	var key types.BalanceKey

	if account := query.Get("account"); account != "" {
		key.AccountID = optional.Some(account)
	}

	if symbol := query.Get("symbol"); symbol != "" {
		key.Symbol = optional.Some(symbol)
	}

	if direction := strings.ToUpper(query.Get("direction")); direction != "" {
		switch types.Direction(direction) {
		case types.DirectionLong, types.DirectionShort:
			key.Direction = optional.Some(types.Direction(direction))
		default:
			return key, errors.Newf(errors.ErrCodeInvalidParameter, "invalid direction %q", direction)
		}
	}

	if assetType := query.Get("asset_type"); assetType != "" {
		key.AssetType = optional.Some(types.ParseAssetType(assetType))
	}

	hour, err := intParam(query, "hour", 0, 23)
	if err != nil {
		return key, err
	}

	weekday, err := intParam(query, "weekday", 0, 6)
	if err != nil {
		return key, err
	}

	if hour.IsSome() {
		key.Hour = hour
	}

	if weekday.IsSome() {
		key.Weekday = weekday
	}

	return key, nil
}

func cacheFilter(query url.Values) (cache.Filter, error) {
	key, err := balanceKey(query)
	if err != nil {
		return cache.Filter{}, err
	}

	exact, err := boolParam(query, "exact", false)
	if err != nil {
		return cache.Filter{}, err
	}

	return cache.Filter{BalanceKey: key, Exact: exact}, nil
}

func boolParam(query url.Values, name string, fallback bool) (bool, error) {
	value := query.Get(name)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, errors.Newf(errors.ErrCodeInvalidParameter, "invalid %s %q", name, value)
	}

	return parsed, nil
}

func intParam(query url.Values, name string, lo, hi int) (optional.Option[int], error) {
	value := query.Get(name)
	if value == "" {
		return optional.None[int](), nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < lo || parsed > hi {
		return optional.None[int](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be between %d and %d", name, lo, hi)
	}

	return optional.Some(parsed), nil
}
