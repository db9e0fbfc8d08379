package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"hearth/internal/models"
	"hearth/internal/money"
)

// Balances maps member ID to signed balance. Positive means the member is owed.
type Balances map[string]decimal.Decimal

// Total returns the sum of all balances. For a closed household it is zero.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Get returns the balance for memberID, zero if absent.
func (b Balances) Get(memberID string) decimal.Decimal {
	if v, ok := b[memberID]; ok {
		return v
	}
	return decimal.Zero
}

// MemberIDs returns the member IDs in sorted order.
func (b Balances) MemberIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b Balances) apply(impacts []MemberImpact) {
	for _, imp := range impacts {
		b[imp.MemberID] = b.Get(imp.MemberID).Add(imp.Net)
	}
}

// Aggregate folds every balance-impacting transaction into per-member
// balances, starting from zero. An impacting expense without split data is
// skipped here even though ImpactsBalance includes it for display: it cannot
// be summed without knowing who paid and owed what.
func Aggregate(transactions []models.Transaction, index SplitIndex, approvedMemberCount int) Balances {
	balances := make(Balances)
	for i := range transactions {
		tx := &transactions[i]
		if !ImpactsBalance(tx, index, approvedMemberCount) {
			continue
		}
		impacts, ok := TransactionImpacts(tx, index)
		if !ok {
			continue
		}
		balances.apply(impacts)
	}
	return balances
}

// BalanceImpactingTransactions filters transactions down to those that impact
// balances, preserving input order.
func BalanceImpactingTransactions(transactions []models.Transaction, index SplitIndex, approvedMemberCount int) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for i := range transactions {
		if ImpactsBalance(&transactions[i], index, approvedMemberCount) {
			out = append(out, transactions[i])
		}
	}
	return out
}

// Preview returns at most limit leading transactions and how many were left
// out. A non-positive limit returns everything.
func Preview(transactions []models.Transaction, limit int) (head []models.Transaction, more int) {
	if limit <= 0 || len(transactions) <= limit {
		return transactions, 0
	}
	return transactions[:limit], len(transactions) - limit
}

// roundForDisplay keeps two decimal places on values sent to clients; internal
// sums stay exact.
func roundForDisplay(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToMemberBalances turns balances into a row per member, in the order of
// members, rounded to cents. Members with no activity get a zero balance.
func ToMemberBalances(householdID string, members []models.Member, balances Balances) []models.MemberBalance {
	rows := make([]models.MemberBalance, 0, len(members))
	for _, m := range members {
		rows = append(rows, models.MemberBalance{
			HouseholdID: householdID,
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
			Balance:     roundForDisplay(balances.Get(m.ID)),
		})
	}
	return rows
}

// ZeroSum reports whether balances sum to zero within the reconcile tolerance.
func ZeroSum(b Balances) bool {
	return money.ApproxEqual(b.Total(), decimal.Zero, money.ReconcileTolerance())
}
