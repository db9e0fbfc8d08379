package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"hearth/internal/models"
	"hearth/internal/money"
)

// MemberImpact is the signed amount one transaction moves a member's balance.
// Positive means the member paid more than their share.
type MemberImpact struct {
	MemberID string          `json:"member_id"`
	Net      decimal.Decimal `json:"net"`
}

// PerMemberImpacts returns paid minus owed for each split, dropping entries
// that are effectively zero, largest absolute value first.
func PerMemberImpacts(splits []models.TransactionSplit) []MemberImpact {
	impacts := make([]MemberImpact, 0, len(splits))
	for _, s := range splits {
		net := s.Net()
		if money.IsEffectivelyZero(net) {
			continue
		}
		impacts = append(impacts, MemberImpact{MemberID: s.MemberID, Net: net})
	}
	sortByMagnitude(impacts)
	return impacts
}

// ReimbursementImpacts returns the balance deltas caused by reimbursement,
// derived from the splits of the expense it pays back. The reimbursement's
// payer is the recipient: the member who originally paid the expense.
//
// Every member's owed share shrinks by their percentage of the reimbursed
// amount; the recipient's paid share also shrinks by the whole amount. Splits
// without an owed percentage are skipped.
func ReimbursementImpacts(reimbursement *models.Transaction, linkedSplits []models.TransactionSplit) []MemberImpact {
	impacts := rawReimbursementImpacts(reimbursement, linkedSplits)
	kept := impacts[:0]
	for _, imp := range impacts {
		if money.ExceedsEpsilon(imp.Net) {
			kept = append(kept, imp)
		}
	}
	sortByMagnitude(kept)
	return kept
}

// rawReimbursementImpacts computes the undropped, unsorted deltas, one per
// split that carries an owed percentage.
func rawReimbursementImpacts(reimbursement *models.Transaction, linkedSplits []models.TransactionSplit) []MemberImpact {
	if reimbursement == nil {
		return nil
	}

	recipient := ""
	if reimbursement.PaidByMemberID != nil {
		recipient = *reimbursement.PaidByMemberID
	}
	amount := reimbursement.Amount

	impacts := make([]MemberImpact, 0, len(linkedSplits))
	for _, s := range linkedSplits {
		if !s.OwedPercentage.Valid {
			continue
		}
		owedReduction := money.ShareOf(amount, s.OwedPercentage.Decimal)
		net := owedReduction
		if s.MemberID == recipient {
			net = owedReduction.Sub(amount)
		}
		impacts = append(impacts, MemberImpact{MemberID: s.MemberID, Net: net})
	}
	return impacts
}

// SettlementImpacts returns the direct transfer a settlement makes: the payer
// gains the amount and the payee loses it. Missing parties yield nothing.
func SettlementImpacts(settlement *models.Transaction) []MemberImpact {
	if settlement == nil || settlement.PaidByMemberID == nil || settlement.PaidToMemberID == nil {
		return nil
	}
	return []MemberImpact{
		{MemberID: *settlement.PaidByMemberID, Net: settlement.Amount},
		{MemberID: *settlement.PaidToMemberID, Net: settlement.Amount.Neg()},
	}
}

// TransactionImpacts returns the per-member deltas tx contributes to balances.
// ok is false when the deltas cannot be computed because split data for tx
// (or for the expense a reimbursement references) is not in the index.
// Callers decide separately, via ImpactsBalance, whether tx counts at all.
func TransactionImpacts(tx *models.Transaction, index SplitIndex) (impacts []MemberImpact, ok bool) {
	if tx == nil {
		return nil, false
	}

	switch tx.Type {
	case models.TransactionTypeSettlement:
		return SettlementImpacts(tx), true
	case models.TransactionTypeReimbursement:
		if !tx.IsLinkedReimbursement() {
			return nil, true
		}
		linked, found := index.Lookup(*tx.ReimbursesTransactionID)
		if !found {
			return nil, false
		}
		return ReimbursementImpacts(tx, linked), true
	case models.TransactionTypeExpense:
		splits, found := index.Lookup(tx.ID)
		if !found {
			return nil, false
		}
		return PerMemberImpacts(splits), true
	case models.TransactionTypeIncome:
		return nil, true
	}
	return nil, false
}

func sortByMagnitude(impacts []MemberImpact) {
	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].Net.Abs().GreaterThan(impacts[j].Net.Abs())
	})
}
