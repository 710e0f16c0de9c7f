package ledger

import (
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DefaultInitialBalance substitutes a missing seed entry. Only relative
// expectancy is allowed to use it.
const DefaultInitialBalance = 1000.0

// Balances maps an account id to its initial balance.
type Balances map[string]float64

// InitialBalances returns, per account, the maximum profit over its seed
// (type=2) rows. Accounts without a seed row are absent from the result.
func InitialBalances(frame Frame) Balances {
	balances := make(Balances)

	for _, row := range frame.Rows() {
		if row.Type != types.TradeEventInitialBalance {
			continue
		}

		current, ok := balances[row.AccountID]
		if !ok || row.Profit > current {
			balances[row.AccountID] = row.Profit
		}
	}

	return balances
}

// Require returns the initial balance of the account or a MissingSeedError.
func (b Balances) Require(accountID string) (float64, error) {
	balance, ok := b[accountID]
	if !ok {
		return 0, errors.NewMissingSeedError(accountID)
	}

	return balance, nil
}

// OrDefault returns the initial balance of the account, or DefaultInitialBalance.
func (b Balances) OrDefault(accountID string) float64 {
	if balance, ok := b[accountID]; ok {
		return balance
	}

	return DefaultInitialBalance
}
