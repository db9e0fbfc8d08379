// Package splits builds and validates the per-member paid/owed records that
// accompany a new expense or income.
package splits

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/money"
)

// Share is a caller-supplied split line for custom splits.
type Share struct {
	MemberID       string
	Paid           decimal.Decimal
	Owed           decimal.Decimal
	OwedPercentage *decimal.Decimal
}

// Request describes the transaction the splits are built for. Members lists
// the approved household members in a stable order.
type Request struct {
	Amount         decimal.Decimal
	SplitType      models.SplitType
	PaidByType     models.PaidByType
	PaidByMemberID string
	SplitMemberID  string
	Members        []string
	Custom         []Share
}

// Build returns one split per participating member. TransactionID is left
// empty for the caller to fill in once the transaction has an ID.
func Build(req Request) ([]models.TransactionSplit, error) {
	if !money.IsPositive(req.Amount) {
		return nil, invalid("amount must be greater than zero")
	}
	if len(req.Members) == 0 {
		return nil, invalid("household has no approved members")
	}
	if !req.PaidByType.Valid() {
		return nil, invalid(fmt.Sprintf("unknown paid_by_type %q", req.PaidByType))
	}
	if req.PaidByType == models.PaidByTypeSingle && !contains(req.Members, req.PaidByMemberID) {
		return nil, invalid("payer must be an approved member")
	}

	switch req.SplitType {
	case models.SplitTypeEqual:
		return buildLines(req, paidLines(req), money.SplitEvenly(req.Amount, len(req.Members))), nil
	case models.SplitTypePayerOnly:
		if req.PaidByType != models.PaidByTypeSingle {
			return nil, invalid("payerOnly splits need a single payer")
		}
		return buildLines(req, paidLines(req), ownerLines(req, req.PaidByMemberID)), nil
	case models.SplitTypeMemberOnly:
		if !contains(req.Members, req.SplitMemberID) {
			return nil, invalid("split member must be an approved member")
		}
		return buildLines(req, paidLines(req), ownerLines(req, req.SplitMemberID)), nil
	case models.SplitTypeCustom:
		return buildCustom(req)
	}
	return nil, invalid(fmt.Sprintf("unknown split_type %q", req.SplitType))
}

// paidLines returns how much each member paid, aligned with req.Members.
func paidLines(req Request) []decimal.Decimal {
	if req.PaidByType == models.PaidByTypeShared {
		return money.SplitEvenly(req.Amount, len(req.Members))
	}
	return ownerLines(req, req.PaidByMemberID)
}

// ownerLines assigns the full amount to one member and zero to the rest.
func ownerLines(req Request, owner string) []decimal.Decimal {
	lines := make([]decimal.Decimal, len(req.Members))
	for i, m := range req.Members {
		lines[i] = decimal.Zero
		if m == owner {
			lines[i] = req.Amount
		}
	}
	return lines
}

func buildLines(req Request, paid, owed []decimal.Decimal) []models.TransactionSplit {
	pcts := money.Percentages(owed, req.Amount)
	out := make([]models.TransactionSplit, len(req.Members))
	for i, m := range req.Members {
		out[i] = models.TransactionSplit{
			MemberID:       m,
			PaidAmount:     paid[i],
			OwedAmount:     owed[i],
			OwedPercentage: decimal.NewNullDecimal(pcts[i]),
		}
	}
	return out
}

func buildCustom(req Request) ([]models.TransactionSplit, error) {
	if len(req.Custom) == 0 {
		return nil, invalid("custom splits require at least one share")
	}

	seen := make(map[string]bool, len(req.Custom))
	owed := make([]decimal.Decimal, len(req.Custom))
	for i, sh := range req.Custom {
		if !contains(req.Members, sh.MemberID) {
			return nil, invalid(fmt.Sprintf("member %s is not an approved member", sh.MemberID))
		}
		if seen[sh.MemberID] {
			return nil, invalid(fmt.Sprintf("member %s appears more than once", sh.MemberID))
		}
		seen[sh.MemberID] = true
		owed[i] = sh.Owed
	}

	pcts := money.Percentages(owed, req.Amount)
	out := make([]models.TransactionSplit, len(req.Custom))
	for i, sh := range req.Custom {
		// An explicit percentage must agree with the owed amount.
		p := pcts[i]
		if sh.OwedPercentage != nil {
			want := money.Percent(sh.Owed, req.Amount)
			if !money.ApproxEqual(*sh.OwedPercentage, want, money.Epsilon()) {
				return nil, invalid(fmt.Sprintf("member %s owes %s but owed_percentage is %s, expected %s",
					sh.MemberID, sh.Owed.String(), sh.OwedPercentage.String(), want.String()))
			}
			p = *sh.OwedPercentage
		}
		out[i] = models.TransactionSplit{
			MemberID:       sh.MemberID,
			PaidAmount:     sh.Paid,
			OwedAmount:     sh.Owed,
			OwedPercentage: decimal.NewNullDecimal(p),
		}
	}

	if err := Validate(models.TransactionTypeExpense, req.Amount, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks split invariants against the transaction amount: amounts are
// non-negative, paid and owed each add up to the amount, and percentages,
// when present, add up to 100. Settlements and reimbursements carry no
// splits and always pass.
func Validate(txType models.TransactionType, amount decimal.Decimal, lines []models.TransactionSplit) error {
	switch txType {
	case models.TransactionTypeSettlement, models.TransactionTypeReimbursement:
		return nil
	case models.TransactionTypeExpense, models.TransactionTypeIncome:
	default:
		return invalid(fmt.Sprintf("unknown transaction type %q", txType))
	}

	paid, owed, pct := decimal.Zero, decimal.Zero, decimal.Zero
	withPct := 0
	for _, l := range lines {
		if l.PaidAmount.IsNegative() || l.OwedAmount.IsNegative() {
			return invalid("split amounts cannot be negative")
		}
		paid = paid.Add(l.PaidAmount)
		owed = owed.Add(l.OwedAmount)
		if l.OwedPercentage.Valid {
			p := l.OwedPercentage.Decimal
			if p.IsNegative() || p.GreaterThan(money.Hundred()) {
				return invalid("owed percentage must be between 0 and 100")
			}
			pct = pct.Add(p)
			withPct++
		}
	}

	if !money.ApproxEqual(paid, amount, money.Epsilon()) {
		return invalid(fmt.Sprintf("paid amounts add up to %s, expected %s", paid.String(), amount.String()))
	}
	if !money.ApproxEqual(owed, amount, money.Epsilon()) {
		return invalid(fmt.Sprintf("owed amounts add up to %s, expected %s", owed.String(), amount.String()))
	}
	if withPct > 0 && !money.ApproxEqual(pct, money.Hundred(), money.Epsilon()) {
		return invalid(fmt.Sprintf("owed percentages add up to %s, expected 100", pct.String()))
	}
	return nil
}

func invalid(msg string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidSplit, msg)
}

func contains(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, m := range ids {
		if m == id {
			return true
		}
	}
	return false
}
