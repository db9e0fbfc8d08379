// Package balance computes how household transactions move member balances.
//
// Everything here is a pure function over already-loaded records: nothing
// performs I/O, mutates its inputs or keeps state between calls. A refresh
// simply calls these functions again on a new snapshot.
package balance

import (
	"hearth/internal/models"
	"hearth/internal/money"
)

// SplitIndex maps a transaction ID to its splits. It is supplied by the caller
// and only ever read.
type SplitIndex map[string][]models.TransactionSplit

// BuildSplitIndex groups splits by transaction ID.
func BuildSplitIndex(splits []models.TransactionSplit) SplitIndex {
	index := make(SplitIndex)
	for _, s := range splits {
		index[s.TransactionID] = append(index[s.TransactionID], s)
	}
	return index
}

// Lookup returns the splits for transactionID and whether any were loaded.
func (idx SplitIndex) Lookup(transactionID string) ([]models.TransactionSplit, bool) {
	splits, ok := idx[transactionID]
	return splits, ok && len(splits) > 0
}

// ImpactsBalance reports whether tx moves money between household members.
// Rules are evaluated in order and the first match wins. When the data needed
// to decide is missing the answer is true, so a transaction is never hidden
// just because its splits have not been loaded yet.
func ImpactsBalance(tx *models.Transaction, index SplitIndex, approvedMemberCount int) bool {
	if tx == nil {
		return true
	}

	switch tx.Type {
	case models.TransactionTypeSettlement:
		return true
	case models.TransactionTypeReimbursement:
		return tx.IsLinkedReimbursement()
	case models.TransactionTypeIncome:
		return false
	case models.TransactionTypeExpense:
		return expenseImpactsBalance(tx, index, approvedMemberCount)
	}
	return true
}

func expenseImpactsBalance(tx *models.Transaction, index SplitIndex, approvedMemberCount int) bool {
	switch tx.SplitType {
	case models.SplitTypePayerOnly:
		return false
	case models.SplitTypeMemberOnly:
		if tx.PaidByType == models.PaidByTypeSingle {
			if tx.SplitMemberID == nil || *tx.SplitMemberID == "" {
				return false
			}
			return tx.PaidByMemberID == nil || *tx.PaidByMemberID != *tx.SplitMemberID
		}
	case models.SplitTypeEqual:
		switch tx.PaidByType {
		case models.PaidByTypeShared:
			return false
		case models.PaidByTypeSingle:
			return approvedMemberCount > 1
		}
	case models.SplitTypeCustom:
	}

	splits, ok := index.Lookup(tx.ID)
	if !ok {
		return true
	}
	for _, s := range splits {
		if money.ExceedsEpsilon(s.Net()) {
			return true
		}
	}
	return false
}
